package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/reentrancy"
	"github.com/vk/taskbridge/internal/tasktree"
	"github.com/vk/taskbridge/internal/typebridge"
)

// ResolveType maps a type name, descriptor, reflect.Type or self-naming
// value to its descriptor.
func (b *Bridge) ResolveType(ctx context.Context, ref any) (typebridge.Descriptor, error) {
	return reentrancy.Call(ctx, b.guard, "resolveType", func(context.Context) (typebridge.Descriptor, error) {
		return b.types.ResolveType(ref)
	})
}

// TypeIsRegistered reports whether name resolves to a host type.
func (b *Bridge) TypeIsRegistered(name string) bool {
	_, err := b.types.ResolveType(name)
	return err == nil
}

// Construct builds a new instance of the referenced type from value.
func (b *Bridge) Construct(ctx context.Context, ref any, value any) (any, error) {
	return reentrancy.Call(ctx, b.guard, "construct", func(ctx context.Context) (any, error) {
		d, err := b.ResolveType(ctx, ref)
		if err != nil {
			return nil, err
		}
		return b.types.Construct(d, value)
	})
}

// RegisterTaskType binds name to the task implementation impl through the
// host's taskdef task. impl is any type reference ResolveType accepts.
// extra adds attributes and children to the taskdef; it cannot override
// name or classname.
func (b *Bridge) RegisterTaskType(ctx context.Context, name string, impl any, extra tasktree.Spec) error {
	return b.guard.Run(ctx, "taskdef", func(ctx context.Context) error {
		d, err := b.ResolveType(ctx, impl)
		if err != nil {
			return err
		}

		var spec tasktree.Spec
		spec.Set("name", name).Set("classname", b.types.NameOf(d))
		for _, a := range extra.Attrs {
			if a.Name == "name" || a.Name == "classname" {
				ctxlog.FromContext(ctx).Debug("Ignoring taskdef attribute that would override the binding.", "attribute", a.Name)
				continue
			}
			spec.Attrs = append(spec.Attrs, a)
		}
		spec.Children = append(spec.Children, extra.Children...)
		return b.Perform(ctx, "taskdef", spec)
	})
}

// Configurator populates a freshly created data type by hand.
type Configurator func(data any) error

// GetStructuredValue builds a host value. The "file" and "url" kinds coerce
// attrs into the host's path and locator types. Any other kind creates the
// host data type of that name and populates it from attrs, which may be a
// map of attribute values or a Configurator.
func (b *Bridge) GetStructuredValue(ctx context.Context, kind string, attrs any) (any, error) {
	return reentrancy.Call(ctx, b.guard, "struct", func(ctx context.Context) (any, error) {
		switch kind {
		case "file", "File":
			return b.coerceTo(ctx, host.FileType, attrs)
		case "url", "URL":
			return b.coerceTo(ctx, host.URLType, attrs)
		}

		data, err := b.engine.Tasks().CreateDataType(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to create data type %q: %w", kind, err)
		}

		switch a := attrs.(type) {
		case nil:
		case Configurator:
			if err := a(data); err != nil {
				return nil, err
			}
		case func(any) error:
			if err := a(data); err != nil {
				return nil, err
			}
		case map[string]any:
			skipped, err := b.types.Populate(data, a, b.engine.Strict())
			if err != nil {
				return nil, err
			}
			if len(skipped) > 0 {
				ctxlog.FromContext(ctx).Debug("Data type ignored unknown attributes.", "kind", kind, "attributes", skipped)
			}
		default:
			return nil, &typebridge.ConstructionError{
				Target: typebridge.DescriptorOf(data),
				Value:  attrs,
				Cause:  errors.New("attributes must be a map or a configuration function"),
			}
		}
		return data, nil
	})
}

func (b *Bridge) coerceTo(ctx context.Context, typeName string, v any) (any, error) {
	d, err := b.ResolveType(ctx, typeName)
	if err != nil {
		return nil, err
	}
	return b.types.Coerce(d, v)
}
