// Package property is a thin accessor over the host's build-property store.
package property

import (
	"context"
	"fmt"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/tasktree"
)

// Facade reads and writes host build properties.
type Facade struct {
	store host.PropertyStore
}

// New creates a facade over store.
func New(store host.PropertyStore) *Facade {
	return &Facade{store: store}
}

// Get returns the value of a property and whether it is defined.
func (f *Facade) Get(name string) (string, bool) {
	return f.store.Property(name)
}

// Set renders value to its literal string form and stores it under name.
func (f *Facade) Set(ctx context.Context, name string, value any) (string, error) {
	if name == "" {
		return "", fmt.Errorf("property name is empty")
	}
	if value == nil {
		return "", fmt.Errorf("property %q: value is nil", name)
	}
	literal, err := tasktree.Render(value)
	if err != nil {
		return "", fmt.Errorf("property %q: %w", name, err)
	}
	f.store.SetProperty(name, literal)
	ctxlog.FromContext(ctx).Debug("Property defined.", "name", name, "value", literal)
	return literal, nil
}
