package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Task is implemented by the pointer of every registered task type.
type Task interface {
	Execute(ctx context.Context) error
}

// Module is the interface that all built-in modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the task and data types known to one project.
type Registry struct {
	mu        sync.RWMutex
	tasks     map[string]reflect.Type
	dataTypes map[string]reflect.Type
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tasks:     make(map[string]reflect.Type),
		dataTypes: make(map[string]reflect.Type),
	}
}

// RegisterTask binds name to the struct type of proto. proto may be a
// value or a pointer, e.g. (*Mkdir)(nil).
func (r *Registry) RegisterTask(name string, proto any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[name]; exists {
		panic(fmt.Sprintf("task with name '%s' already registered", name))
	}
	typ := structType(proto)
	slog.Debug("Registering task.", "name", name, "type", typ.String())
	r.tasks[name] = typ
}

// RegisterDataType binds name to the struct type of proto.
func (r *Registry) RegisterDataType(name string, proto any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.dataTypes[name]; exists {
		panic(fmt.Sprintf("data type with name '%s' already registered", name))
	}
	typ := structType(proto)
	slog.Debug("Registering data type.", "name", name, "type", typ.String())
	r.dataTypes[name] = typ
}

// Define binds name to typ at runtime. Rebinding a name to another type
// replaces the previous binding.
func (r *Registry) Define(name string, typ reflect.Type) error {
	if name == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if typ == nil {
		return fmt.Errorf("task %q: implementation type must not be nil", name)
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if !reflect.PointerTo(typ).Implements(taskType) {
		return fmt.Errorf("task %q: type %s does not implement Execute(context.Context) error", name, typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.tasks[name]; exists && prev != typ {
		slog.Debug("Task definition replaced.", "name", name, "previous", prev.String(), "type", typ.String())
	}
	r.tasks[name] = typ
	return nil
}

// Task returns the struct type bound to name.
func (r *Registry) Task(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// DataType returns the struct type bound to the data type name.
func (r *Registry) DataType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.dataTypes[name]
	return t, ok
}

// TaskNames returns the registered task names, sorted.
func (r *Registry) TaskNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedNames(r.tasks)
}

// DataTypeNames returns the registered data type names, sorted.
func (r *Registry) DataTypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedNames(r.dataTypes)
}

var taskType = reflect.TypeOf((*Task)(nil)).Elem()

func structType(proto any) reflect.Type {
	t := reflect.TypeOf(proto)
	if t == nil {
		panic("registry: nil prototype")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func sortedNames(m map[string]reflect.Type) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
