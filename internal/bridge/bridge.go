// Package bridge is the surface build scripts call: perform tasks, register
// task types, read and write properties, build structured values, and log
// through the host.
//
// Every operation except Log and ReportError is guarded by a
// reentrancy.Guard, so a failure is echoed to the host log exactly once, by
// the outermost bridge call of the chain, and then returned unchanged.
package bridge

import (
	"context"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/property"
	"github.com/vk/taskbridge/internal/reentrancy"
	"github.com/vk/taskbridge/internal/tasktree"
	"github.com/vk/taskbridge/internal/typebridge"
)

// Bridge drives a host engine.
type Bridge struct {
	engine host.Engine
	types  *typebridge.Reflector
	tree   *tasktree.Builder
	props  *property.Facade
	guard  *reentrancy.Guard
}

// New creates a bridge over engine.
func New(engine host.Engine) *Bridge {
	b := &Bridge{
		engine: engine,
		types:  typebridge.New(engine.Types()),
		tree:   tasktree.NewBuilder(engine.Tasks()),
		props:  property.New(engine.Properties()),
	}
	b.guard = reentrancy.NewGuard(b.report)
	return b
}

// Types exposes the type bridge used for coercion.
func (b *Bridge) Types() *typebridge.Reflector { return b.types }

// report echoes an outermost failure through the host's error log.
func (b *Bridge) report(ctx context.Context, op string, err error) {
	logger := ctxlog.FromContext(ctx)
	chainID := ""
	if c, ok := reentrancy.FromContext(ctx); ok {
		chainID = c.ID
	}
	logger.Error("Bridge operation failed.", "op", op, "chain", chainID, "error", err)
	if rerr := b.ReportError(ctx, reentrancy.Describe(op, err)); rerr != nil {
		logger.Error("Failed to echo error report through host.", "op", op, "error", rerr)
	}
}

// Perform builds taskName from spec and executes it. Execution failures are
// returned as the host produced them.
func (b *Bridge) Perform(ctx context.Context, taskName string, spec tasktree.Spec) error {
	return b.guard.Run(ctx, "perform", func(ctx context.Context) error {
		return b.perform(ctx, taskName, spec)
	})
}

// Build assembles taskName from spec without executing it.
func (b *Bridge) Build(ctx context.Context, taskName string, spec tasktree.Spec) (*tasktree.Node, error) {
	return reentrancy.Call(ctx, b.guard, "build", func(ctx context.Context) (*tasktree.Node, error) {
		return b.tree.Build(ctx, taskName, spec, nil)
	})
}

func (b *Bridge) perform(ctx context.Context, taskName string, spec tasktree.Spec) error {
	ctx, logger := ctxlog.With(ctx, "task", taskName)
	root, err := b.tree.Build(ctx, taskName, spec, nil)
	if err != nil {
		return err
	}
	nodes := 0
	root.Walk(func(*tasktree.Node) { nodes++ })
	logger.Debug("Executing task.", "children", len(root.Children), "nodes", nodes)
	if err := root.Element.Perform(ctx); err != nil {
		return err
	}
	logger.Debug("Task finished.")
	return nil
}

// Log echoes msg through the host's echo task. An empty level leaves the
// level attribute unset.
func (b *Bridge) Log(ctx context.Context, msg string, level host.LogLevel) error {
	var spec tasktree.Spec
	spec.Set("message", msg)
	if level != "" {
		spec.Set("level", string(level))
	}
	return b.perform(ctx, "echo", spec)
}

// ReportError logs msg at error level.
func (b *Bridge) ReportError(ctx context.Context, msg string) error {
	return b.Log(ctx, msg, host.LevelError)
}
