package bridge

import (
	"context"

	"github.com/vk/taskbridge/internal/tasktree"
)

// Sequence runs tasks one after another. After the first failure the
// remaining steps are skipped and Err reports that failure.
//
//	err := b.Chain(ctx, "delete", del).Chain("mkdir", mk).Chain("junit", junit).Err()
type Sequence struct {
	bridge *Bridge
	ctx    context.Context
	err    error
	ran    int
}

// Chain performs taskName and returns a sequence for further steps.
func (b *Bridge) Chain(ctx context.Context, taskName string, spec tasktree.Spec) *Sequence {
	s := &Sequence{bridge: b, ctx: ctx}
	return s.Chain(taskName, spec)
}

// Chain performs the next task unless an earlier one failed.
func (s *Sequence) Chain(taskName string, spec tasktree.Spec) *Sequence {
	if s.err != nil {
		return s
	}
	s.err = s.bridge.guard.Run(s.ctx, "chain", func(ctx context.Context) error {
		return s.bridge.perform(ctx, taskName, spec)
	})
	if s.err == nil {
		s.ran++
	}
	return s
}

// Err returns the first failure of the sequence.
func (s *Sequence) Err() error { return s.err }

// Completed returns how many tasks finished successfully.
func (s *Sequence) Completed() int { return s.ran }
