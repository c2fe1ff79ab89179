package bridge

import (
	"context"
	"fmt"

	"github.com/vk/taskbridge/internal/reentrancy"
	"github.com/vk/taskbridge/internal/tasktree"
)

// Property returns a build property and whether it is defined.
func (b *Bridge) Property(name string) (string, bool) {
	return b.props.Get(name)
}

// SetProperty announces the definition through the host log, then stores
// the literal form of value. It returns the stored literal. Nil values are
// rejected before anything is logged.
func (b *Bridge) SetProperty(ctx context.Context, name string, value any) (string, error) {
	return reentrancy.Call(ctx, b.guard, "prop", func(ctx context.Context) (string, error) {
		literal, err := tasktree.Render(value)
		if err != nil {
			return "", fmt.Errorf("property %q: %w", name, err)
		}
		if err := b.Log(ctx, fmt.Sprintf("define property: %s = %s", name, literal), ""); err != nil {
			return "", err
		}
		return b.props.Set(ctx, name, value)
	})
}
