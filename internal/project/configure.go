package project

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/typebridge"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// configure applies the attributes of el to obj, then resolves the nested
// elements of el against obj.
func (p *Project) configure(ctx context.Context, obj any, el *element) error {
	logger := ctxlog.FromContext(ctx)

	for _, name := range el.wrapper.order {
		value := p.ExpandProperties(el.wrapper.attrs[name])
		if err := p.reflector.Set(obj, name, value); err != nil {
			var unknown *typebridge.UnknownAttributeError
			if !p.strict && errors.As(err, &unknown) {
				logger.Warn("Ignoring unsupported attribute.", "element", el.name, "attribute", name)
				continue
			}
			return err
		}
	}

	for _, c := range el.children {
		child, ok := c.(*element)
		if !ok {
			return fmt.Errorf("nested element %q was not created by this project", c.Name())
		}
		if err := p.nest(ctx, obj, el.name, child); err != nil {
			return fmt.Errorf("<%s> in <%s>: %w", child.name, el.name, err)
		}
	}
	return nil
}

// nest hands child to parent through, in order of preference,
// Create<Name>() *T, Add<Name>(T) or TaskContainer.AddTask.
func (p *Project) nest(ctx context.Context, parent any, parentName string, child *element) error {
	pv := reflect.ValueOf(parent)

	if m, ok := findMethod(pv, "Create", child.name); ok && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
		out := m.Call(nil)[0]
		if out.Kind() != reflect.Pointer || out.IsNil() {
			return fmt.Errorf("%s.Create%s returned no object", parentName, child.name)
		}
		obj := p.bind(out.Interface())
		child.setProxy(obj)
		child.configured = true
		return p.configure(ctx, obj, child)
	}

	if m, ok := findMethod(pv, "Add", child.name); ok && m.Type().NumIn() == 1 {
		in := m.Type().In(0)
		var ptr reflect.Value
		switch {
		case in.Kind() == reflect.Pointer && in.Elem().Kind() == reflect.Struct:
			ptr = reflect.New(in.Elem())
		case in.Kind() == reflect.Struct:
			ptr = reflect.New(in)
		default:
			return fmt.Errorf("%s.Add%s takes unsupported %s", parentName, child.name, in)
		}
		obj := p.bind(ptr.Interface())
		child.setProxy(obj)
		child.configured = true
		if err := p.configure(ctx, obj, child); err != nil {
			return err
		}
		arg := ptr
		if in.Kind() == reflect.Struct {
			arg = ptr.Elem()
		}
		return callError(m.Call([]reflect.Value{arg}))
	}

	if c, ok := parent.(TaskContainer); ok {
		if _, isTask := p.registry.Task(child.name); isTask {
			c.AddTask(child)
			return nil
		}
	}

	return &UnsupportedElementError{Parent: parentName, Child: child.name}
}

// findMethod looks up prefix+name on v, ignoring case and the '-', '.'
// and '_' separators of element names.
func findMethod(v reflect.Value, prefix, name string) (reflect.Value, bool) {
	want := prefix + strings.NewReplacer("-", "", ".", "", "_", "").Replace(name)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if strings.EqualFold(t.Method(i).Name, want) {
			return v.Method(i), true
		}
	}
	return reflect.Value{}, false
}

func callError(out []reflect.Value) error {
	if len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(errorType) && !last.IsNil() {
		return last.Interface().(error)
	}
	return nil
}
