// Package reentrancy makes sure a failure is reported once per call chain.
//
// Every public bridge operation runs through Guard.Run. Bridge operations
// call each other, so one failure unwinds through several guarded frames;
// only the outermost frame of a chain reports it. Inner frames return the
// error untouched.
//
// The depth of a chain travels in the context. A call on a context without a
// chain starts a new one, so independent callers never share a counter.
package reentrancy

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/taskbridge/internal/ctxlog"
)

type chainKey struct{}

// Chain is the nesting state of one logical call chain. It is not safe for
// concurrent use; a chain belongs to a single goroutine.
type Chain struct {
	ID    string
	depth int
}

// NewChain creates an idle chain with a fresh ID.
func NewChain() *Chain {
	return &Chain{ID: uuid.NewString()}
}

// Depth returns the number of guarded calls currently active on c.
func (c *Chain) Depth() int { return c.depth }

// WithChain returns a context carrying c.
func WithChain(ctx context.Context, c *Chain) context.Context {
	return context.WithValue(ctx, chainKey{}, c)
}

// FromContext returns the chain carried by ctx, if any.
func FromContext(ctx context.Context) (*Chain, bool) {
	c, ok := ctx.Value(chainKey{}).(*Chain)
	return c, ok
}

// Reporter is told about a failure at the outermost frame of a chain.
type Reporter func(ctx context.Context, op string, err error)

// Guard wraps operations with chain accounting and one-time reporting.
type Guard struct {
	report Reporter
}

// NewGuard creates a guard that hands outermost failures to report.
func NewGuard(report Reporter) *Guard {
	return &Guard{report: report}
}

// Run executes fn as the guarded operation op. The context passed to fn
// carries the chain, so guarded calls made by fn are nested frames.
func (g *Guard) Run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	chain, ok := FromContext(ctx)
	if !ok {
		chain = NewChain()
		ctx = WithChain(ctx, chain)
	}

	chain.depth++
	defer func() { chain.depth-- }()

	if chain.depth > 1 {
		return fn(ctx)
	}

	err := fn(ctx)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Guarded operation failed at outermost frame.", "op", op, "chain", chain.ID, "error", err)
		if g.report != nil {
			g.report(ctx, op, err)
		}
	}
	return err
}

// Call is Run for operations that produce a value.
func Call[T any](ctx context.Context, g *Guard, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.Run(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

type detailer interface {
	Detail() string
}

// Describe formats a failure report: "op: message" followed by the Detail
// of every error in the chain that provides one, one per line.
func Describe(op string, err error) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteString(": ")
	b.WriteString(err.Error())
	for e := err; e != nil; e = errors.Unwrap(e) {
		if d, ok := e.(detailer); ok {
			if detail := d.Detail(); detail != "" {
				b.WriteString("\n")
				b.WriteString(detail)
			}
		}
	}
	return b.String()
}
