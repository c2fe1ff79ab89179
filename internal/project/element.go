package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/registry"
)

// element is the runtime element of a project. An element created through
// NewUnknownElement has no proxy until it is configured.
type element struct {
	project    *Project
	name       string
	proxy      any
	children   []host.Element
	wrapper    *wrapper
	configured bool
}

var _ host.Element = (*element)(nil)

func newElement(p *Project, name string) *element {
	return &element{
		project: p,
		name:    name,
		wrapper: &wrapper{name: name, attrs: make(map[string]string)},
	}
}

func (e *element) Name() string          { return e.name }
func (e *element) Proxy() any            { return e.proxy }
func (e *element) SetProxy(obj any)      { e.proxy = obj }
func (e *element) Wrapper() host.Wrapper { return e.wrapper }

func (e *element) AddChild(child host.Element) { e.children = append(e.children, child) }

func (e *element) Children() []host.Element { return e.children }

func (e *element) setProxy(obj any) {
	e.proxy = obj
	e.wrapper.proxy = obj
}

// Perform configures the element on first use, then executes it. Every
// failure comes back as a *host.TaskExecutionFailure.
func (e *element) Perform(ctx context.Context) error {
	ctx, logger := ctxlog.With(ctx, "element", e.name)

	if err := e.configure(ctx); err != nil {
		return e.fail(err)
	}
	task, ok := e.proxy.(registry.Task)
	if !ok {
		return e.fail(&NotATaskError{Name: e.name, Type: fmt.Sprintf("%T", e.proxy)})
	}

	logger.Debug("Executing element.")
	if err := task.Execute(ctx); err != nil {
		return e.fail(err)
	}
	logger.Debug("Element finished.")
	return nil
}

func (e *element) configure(ctx context.Context) error {
	if e.configured {
		return nil
	}
	if e.proxy == nil {
		obj, err := e.project.Instantiate(e.name)
		if err != nil {
			return err
		}
		e.setProxy(obj)
	}
	if err := e.project.configure(ctx, e.proxy, e); err != nil {
		return err
	}
	e.configured = true
	return nil
}

// fail keeps failures raised by nested elements intact.
func (e *element) fail(err error) error {
	var failure *host.TaskExecutionFailure
	if errors.As(err, &failure) {
		return err
	}
	return &host.TaskExecutionFailure{Task: e.name, Message: err.Error(), Cause: err}
}

// wrapper is the string attribute bag of an element.
type wrapper struct {
	name     string
	attrs    map[string]string
	order    []string
	children []host.Wrapper
	proxy    any
}

var _ host.Wrapper = (*wrapper)(nil)

func (w *wrapper) ElementName() string { return w.name }

func (w *wrapper) SetAttribute(name, value string) {
	if _, ok := w.attrs[name]; !ok {
		w.order = append(w.order, name)
	}
	w.attrs[name] = value
}

func (w *wrapper) Attribute(name string) (string, bool) {
	v, ok := w.attrs[name]
	return v, ok
}

func (w *wrapper) AttributeNames() []string    { return w.order }
func (w *wrapper) AddChild(child host.Wrapper) { w.children = append(w.children, child) }
func (w *wrapper) Children() []host.Wrapper    { return w.children }
func (w *wrapper) Proxy() any                  { return w.proxy }
func (w *wrapper) SetProxy(obj any)            { w.proxy = obj }
