package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/typebridge"
)

// Call is one interaction recorded by FakeEngine.
type Call struct {
	Op   string // "create", "unknown", "attr", "perform", "register", "datatype"
	Name string
	Arg  string
}

// Echo is a message received by the fake echo task.
type Echo struct {
	Message string
	Level   string
}

// FakeEngine is a recording host.Engine for bridge tests. Tasks never do
// real work: performing records the call, captures echo messages and
// returns the failure configured for the task name, if any.
type FakeEngine struct {
	Registered map[string]reflect.Type
	Props      map[string]string
	Table      *typebridge.Table
	StrictMode bool
	// Failures maps a task name to the cause its Perform reports.
	Failures map[string]error
	// DataTypes maps a data type name to its factory.
	DataTypes map[string]func() any

	Calls  []Call
	Echoes []Echo
}

var _ host.Engine = (*FakeEngine)(nil)

// NewFakeEngine returns an engine with "echo" and "taskdef" registered.
func NewFakeEngine(tasks ...string) *FakeEngine {
	e := &FakeEngine{
		Registered: make(map[string]reflect.Type),
		Props:      make(map[string]string),
		Table:      typebridge.NewTable(),
		Failures:   make(map[string]error),
		DataTypes:  make(map[string]func() any),
	}
	for _, name := range append([]string{"echo", "taskdef"}, tasks...) {
		e.Registered[name] = nil
	}
	return e
}

func (e *FakeEngine) Tasks() host.TaskRegistry       { return (*fakeRegistry)(e) }
func (e *FakeEngine) Properties() host.PropertyStore { return (*fakeProps)(e) }
func (e *FakeEngine) Types() host.TypeTable          { return e.Table }
func (e *FakeEngine) Strict() bool                   { return e.StrictMode }

// CallsOf returns the recorded calls with the given op.
func (e *FakeEngine) CallsOf(op string) []Call {
	var out []Call
	for _, c := range e.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls and echoes.
func (e *FakeEngine) Reset() {
	e.Calls = nil
	e.Echoes = nil
}

func (e *FakeEngine) record(op, name, arg string) {
	e.Calls = append(e.Calls, Call{Op: op, Name: name, Arg: arg})
}

type fakeRegistry FakeEngine

func (r *fakeRegistry) IsTaskRegistered(name string) bool {
	_, ok := r.Registered[name]
	return ok
}

func (r *fakeRegistry) CreateTask(_ context.Context, name string) (host.Element, error) {
	if !r.IsTaskRegistered(name) {
		return nil, fmt.Errorf("fake: task %q not registered", name)
	}
	(*FakeEngine)(r).record("create", name, "")
	return newFakeElement((*FakeEngine)(r), name), nil
}

func (r *fakeRegistry) NewUnknownElement(name string) host.Element {
	(*FakeEngine)(r).record("unknown", name, "")
	return newFakeElement((*FakeEngine)(r), name)
}

func (r *fakeRegistry) RegisterTaskType(name string, impl reflect.Type) error {
	(*FakeEngine)(r).record("register", name, fmt.Sprint(impl))
	r.Registered[name] = impl
	return nil
}

func (r *fakeRegistry) CreateDataType(_ context.Context, name string) (any, error) {
	factory, ok := r.DataTypes[name]
	if !ok {
		return nil, fmt.Errorf("fake: data type %q not registered", name)
	}
	(*FakeEngine)(r).record("datatype", name, "")
	return factory(), nil
}

func (r *fakeRegistry) TaskNames() []string {
	names := make([]string, 0, len(r.Registered))
	for name := range r.Registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fakeProps FakeEngine

func (p *fakeProps) Property(name string) (string, bool) {
	v, ok := p.Props[name]
	return v, ok
}

func (p *fakeProps) SetProperty(name, value string) {
	p.Props[name] = value
}

// FakeElement is the element produced by FakeEngine.
type FakeElement struct {
	engine   *FakeEngine
	name     string
	proxy    any
	children []host.Element
	wrapper  *FakeWrapper
}

func newFakeElement(e *FakeEngine, name string) *FakeElement {
	return &FakeElement{engine: e, name: name, wrapper: &FakeWrapper{engine: e, name: name, attrs: map[string]string{}}}
}

func (el *FakeElement) Name() string                { return el.name }
func (el *FakeElement) Proxy() any                  { return el.proxy }
func (el *FakeElement) SetProxy(obj any)            { el.proxy = obj }
func (el *FakeElement) AddChild(child host.Element) { el.children = append(el.children, child) }
func (el *FakeElement) Children() []host.Element    { return el.children }
func (el *FakeElement) Wrapper() host.Wrapper       { return el.wrapper }

// Perform implements host.Element.
func (el *FakeElement) Perform(_ context.Context) error {
	el.engine.record("perform", el.name, "")
	if el.name == "echo" {
		msg, _ := el.wrapper.Attribute("message")
		level, _ := el.wrapper.Attribute("level")
		el.engine.Echoes = append(el.engine.Echoes, Echo{Message: msg, Level: level})
	}
	if cause, ok := el.engine.Failures[el.name]; ok {
		return &host.TaskExecutionFailure{Task: el.name, Message: cause.Error(), Cause: cause}
	}
	return nil
}

// FakeWrapper is the configuration wrapper of a FakeElement.
type FakeWrapper struct {
	engine   *FakeEngine
	name     string
	attrs    map[string]string
	order    []string
	children []host.Wrapper
	proxy    any
}

func (w *FakeWrapper) ElementName() string { return w.name }

func (w *FakeWrapper) SetAttribute(name, value string) {
	w.engine.record("attr", name, value)
	if _, ok := w.attrs[name]; !ok {
		w.order = append(w.order, name)
	}
	w.attrs[name] = value
}

func (w *FakeWrapper) Attribute(name string) (string, bool) {
	v, ok := w.attrs[name]
	return v, ok
}

func (w *FakeWrapper) AttributeNames() []string    { return w.order }
func (w *FakeWrapper) AddChild(child host.Wrapper) { w.children = append(w.children, child) }
func (w *FakeWrapper) Children() []host.Wrapper    { return w.children }
func (w *FakeWrapper) Proxy() any                  { return w.proxy }
func (w *FakeWrapper) SetProxy(obj any)            { w.proxy = obj }
