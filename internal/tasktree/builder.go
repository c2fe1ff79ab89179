package tasktree

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
)

// Builder assembles Spec trees into host elements.
type Builder struct {
	registry host.TaskRegistry
}

// NewBuilder creates a builder creating elements through registry.
func NewBuilder(registry host.TaskRegistry) *Builder {
	return &Builder{registry: registry}
}

// Build constructs the element name from spec. Registered task names get a
// concrete task from the registry; any other name gets an unknown-element
// placeholder that the host resolves when the tree is configured. Non-nil
// attributes are rendered to strings and set on the element's wrapper.
// Children are built in order and attached to the new node. When parent is
// non-nil the new node is attached to it.
func (b *Builder) Build(ctx context.Context, name string, spec Spec, parent *Node) (*Node, error) {
	logger := ctxlog.FromContext(ctx).With("element", name)
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: element name is empty", ErrInvalidSpec)
	}

	el, err := b.newElement(ctx, name)
	if err != nil {
		return nil, err
	}
	node := &Node{Name: name, Element: el}

	wrapper := el.Wrapper()
	for _, a := range spec.Attrs {
		if IsChildKey(a.Name) {
			return nil, fmt.Errorf("%w: %q is reserved for children and cannot name an attribute of %q", ErrInvalidSpec, a.Name, name)
		}
		if isUnset(a.Value) {
			logger.Debug("Skipping unset attribute.", "attribute", a.Name)
			continue
		}
		literal, err := Render(a.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q of %q: %w", a.Name, name, err)
		}
		wrapper.SetAttribute(a.Name, literal)
		node.Attrs = append(node.Attrs, Literal{Name: a.Name, Value: literal})
	}

	if parent != nil {
		attach(parent, node)
	}

	for _, group := range spec.Children {
		for i, child := range group.Specs {
			if _, err := b.Build(ctx, group.Name, child, node); err != nil {
				return nil, fmt.Errorf("in %q child %q[%d]: %w", name, group.Name, i, err)
			}
		}
	}

	logger.Debug("Element built.", "attributes", len(node.Attrs), "children", len(node.Children))
	return node, nil
}

func (b *Builder) newElement(ctx context.Context, name string) (host.Element, error) {
	if b.registry.IsTaskRegistered(name) {
		el, err := b.registry.CreateTask(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to create task %q: %w", name, err)
		}
		return el, nil
	}
	return b.registry.NewUnknownElement(name), nil
}
