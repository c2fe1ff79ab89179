// Package project is an in-process build engine in the manner of Ant. It
// implements the host interfaces the bridge drives: a task registry, a
// property store, a registered-type table, runtime elements and their
// configuration wrappers.
//
// A performed element is configured first. Wrapper attributes go through
// property expansion and are applied with the type bridge's setters; nested
// elements are resolved through the parent's Create<Name> or Add<Name>
// methods, or handed to a TaskContainer. Then the task executes.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/registry"
	"github.com/vk/taskbridge/internal/typebridge"
)

// Options configures a Project.
type Options struct {
	// BaseDir resolves relative file attributes. Defaults to the working directory.
	BaseDir string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Output receives echo output. Defaults to io.Discard.
	Output io.Writer
	// MessageLevel is the least severe echo level written to Output.
	MessageLevel host.LogLevel
	// Strict turns unsupported attributes into errors.
	Strict     bool
	Properties map[string]string
}

// Project is one build run.
type Project struct {
	basedir  string
	fs       afero.Fs
	out      io.Writer
	outMu    sync.Mutex
	msgLevel host.LogLevel
	strict   bool

	mu    sync.RWMutex
	props map[string]string

	registry  *registry.Registry
	types     *typebridge.Table
	reflector *typebridge.Reflector
}

var _ host.Engine = (*Project)(nil)

// New creates a project over the task and data types of reg.
func New(reg *registry.Registry, opts Options) (*Project, error) {
	if reg == nil {
		return nil, errors.New("project requires a registry")
	}
	basedir := opts.BaseDir
	if basedir == "" {
		basedir = "."
	}
	basedir, err := filepath.Abs(basedir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Project{
		basedir:  basedir,
		fs:       opts.Fs,
		out:      opts.Output,
		msgLevel: opts.MessageLevel,
		strict:   opts.Strict,
		props:    make(map[string]string, len(opts.Properties)+1),
		registry: reg,
		types:    typebridge.NewTable(),
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.out == nil {
		p.out = io.Discard
	}
	for k, v := range opts.Properties {
		p.props[k] = v
	}
	p.props["basedir"] = basedir

	if err := p.registerTypes(); err != nil {
		return nil, err
	}
	p.reflector = typebridge.New(p.types)
	return p, nil
}

func (p *Project) registerTypes() error {
	fileType := reflect.TypeOf(File{})
	if err := p.types.Register(fileType, host.FileType, "File"); err != nil {
		return err
	}
	p.types.RegisterConstructor(fileType, p.newFile)

	urlType := reflect.TypeOf(&url.URL{})
	if err := p.types.Register(urlType, host.URLType, "URL"); err != nil {
		return err
	}
	p.types.RegisterConstructor(urlType, parseURL)

	if err := p.types.Register(reflect.TypeOf(host.LevelInfo), "loglevel"); err != nil {
		return err
	}

	for _, name := range p.registry.TaskNames() {
		typ, _ := p.registry.Task(name)
		if err := p.registerImpl(typ); err != nil {
			return err
		}
	}
	for _, name := range p.registry.DataTypeNames() {
		typ, _ := p.registry.DataType(name)
		if err := p.registerImpl(typ); err != nil {
			return err
		}
	}
	return nil
}

// registerImpl makes an implementation type resolvable by its Go name, so
// taskdef classnames can refer to it.
func (p *Project) registerImpl(typ reflect.Type) error {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if err := p.types.Register(typ, typ.String()); err != nil {
		return err
	}
	return p.types.Register(reflect.PointerTo(typ), "*"+typ.String())
}

// BaseDir returns the absolute base directory.
func (p *Project) BaseDir() string { return p.basedir }

// TypeNames returns every name the project's type table resolves, sorted.
func (p *Project) TypeNames() []string { return p.types.Names() }

// Fs returns the project filesystem.
func (p *Project) Fs() afero.Fs { return p.fs }

// Reflector returns the type bridge used for configuration.
func (p *Project) Reflector() *typebridge.Reflector { return p.reflector }

// Tasks implements host.Engine.
func (p *Project) Tasks() host.TaskRegistry { return (*taskRegistry)(p) }

// Properties implements host.Engine.
func (p *Project) Properties() host.PropertyStore { return p }

// Types implements host.Engine.
func (p *Project) Types() host.TypeTable { return p.types }

// Strict implements host.Engine.
func (p *Project) Strict() bool { return p.strict }

// Property returns the value of a property.
func (p *Project) Property(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.props[name]
	return v, ok
}

// SetProperty defines or overwrites a property.
func (p *Project) SetProperty(name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.props[name] = value
}

// SetNewProperty defines a property unless it already exists. It reports
// whether the value was stored.
func (p *Project) SetNewProperty(ctx context.Context, name, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.props[name]; exists {
		ctxlog.FromContext(ctx).Debug("Override ignored for property.", "name", name)
		return false
	}
	p.props[name] = value
	return true
}

// PropertyNames returns every defined property name, sorted.
func (p *Project) PropertyNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.props))
	for name := range p.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Log writes msg to the project output when level is at least as severe as
// the project's message level.
func (p *Project) Log(ctx context.Context, msg string, level host.LogLevel) {
	ctxlog.FromContext(ctx).Debug("Project message.", "level", string(level), "message", msg)
	if level.Slog() < p.msgLevel.Slog() {
		return
	}
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintln(p.out, msg)
}

// DefineTask binds name to the implementation registered under classname.
func (p *Project) DefineTask(ctx context.Context, name, classname string) error {
	typ, ok := p.types.Lookup(classname)
	if !ok {
		return fmt.Errorf("taskdef class %s cannot be found", classname)
	}
	if err := p.Tasks().RegisterTaskType(name, typ); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Task defined.", "name", name, "classname", classname)
	return nil
}

// Instantiate creates a bound instance of the task or data type name.
func (p *Project) Instantiate(name string) (any, error) {
	if typ, ok := p.registry.Task(name); ok {
		return p.bind(reflect.New(typ).Interface()), nil
	}
	if typ, ok := p.registry.DataType(name); ok {
		return p.bind(reflect.New(typ).Interface()), nil
	}
	return nil, fmt.Errorf("problem: failed to create task or type %s", name)
}

func (p *Project) bind(obj any) any {
	if b, ok := obj.(binder); ok {
		b.Bind(p)
	}
	return obj
}

// taskRegistry is the host.TaskRegistry view of a Project.
type taskRegistry Project

func (r *taskRegistry) project() *Project { return (*Project)(r) }

func (r *taskRegistry) IsTaskRegistered(name string) bool {
	_, ok := r.registry.Task(name)
	return ok
}

func (r *taskRegistry) CreateTask(ctx context.Context, name string) (host.Element, error) {
	typ, ok := r.registry.Task(name)
	if !ok {
		return nil, fmt.Errorf("task %q is not registered", name)
	}
	p := r.project()
	el := newElement(p, name)
	el.setProxy(p.bind(reflect.New(typ).Interface()))
	ctxlog.FromContext(ctx).Debug("Task created.", "name", name, "type", typ.String())
	return el, nil
}

func (r *taskRegistry) NewUnknownElement(name string) host.Element {
	return newElement(r.project(), name)
}

func (r *taskRegistry) RegisterTaskType(name string, impl reflect.Type) error {
	if err := r.registry.Define(name, impl); err != nil {
		return err
	}
	typ, _ := r.registry.Task(name)
	return r.project().registerImpl(typ)
}

func (r *taskRegistry) CreateDataType(ctx context.Context, name string) (any, error) {
	typ, ok := r.registry.DataType(name)
	if !ok {
		return nil, fmt.Errorf("data type %q is not registered", name)
	}
	ctxlog.FromContext(ctx).Debug("Data type created.", "name", name)
	return r.project().bind(reflect.New(typ).Interface()), nil
}

func (r *taskRegistry) TaskNames() []string { return r.registry.TaskNames() }
