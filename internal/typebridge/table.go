package typebridge

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/vk/taskbridge/internal/host"
)

// Table is a registered-type table implementing host.TypeTable.
type Table struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	names  map[reflect.Type]string
	ctors  map[reflect.Type]host.Constructor
}

var _ host.TypeTable = (*Table)(nil)

// builtins are the Go kinds every table knows. The first name listed for a
// type is its canonical name.
var builtins = []struct {
	names []string
	typ   reflect.Type
}{
	{[]string{"bool", "boolean"}, reflect.TypeOf(false)},
	{[]string{"string"}, reflect.TypeOf("")},
	{[]string{"int"}, reflect.TypeOf(int(0))},
	{[]string{"int8"}, reflect.TypeOf(int8(0))},
	{[]string{"int16", "short"}, reflect.TypeOf(int16(0))},
	{[]string{"int32"}, reflect.TypeOf(int32(0))},
	{[]string{"int64", "long"}, reflect.TypeOf(int64(0))},
	{[]string{"uint"}, reflect.TypeOf(uint(0))},
	{[]string{"uint8", "byte"}, reflect.TypeOf(uint8(0))},
	{[]string{"uint16"}, reflect.TypeOf(uint16(0))},
	{[]string{"uint32"}, reflect.TypeOf(uint32(0))},
	{[]string{"uint64"}, reflect.TypeOf(uint64(0))},
	{[]string{"float32", "float"}, reflect.TypeOf(float32(0))},
	{[]string{"float64", "double"}, reflect.TypeOf(float64(0))},
	{[]string{"char"}, reflect.TypeOf(host.Char(0))},
}

// NewTable returns a table preloaded with the builtin primitive kinds.
func NewTable() *Table {
	t := &Table{
		byName: make(map[string]reflect.Type),
		names:  make(map[reflect.Type]string),
		ctors:  make(map[reflect.Type]host.Constructor),
	}
	for _, b := range builtins {
		if err := t.Register(b.typ, b.names...); err != nil {
			panic(err)
		}
	}
	return t
}

// Register binds typ to one or more names. The first name becomes the name
// reported by NameOf unless typ already has one.
func (t *Table) Register(typ reflect.Type, names ...string) error {
	if typ == nil {
		return fmt.Errorf("cannot register a nil type")
	}
	if len(names) == 0 {
		return fmt.Errorf("type %s registered without a name", typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		if existing, ok := t.byName[name]; ok && existing != typ {
			return fmt.Errorf("type name %q already registered for %s", name, existing)
		}
	}
	for _, name := range names {
		t.byName[name] = typ
	}
	if _, ok := t.names[typ]; !ok {
		t.names[typ] = names[0]
	}
	return nil
}

// RegisterConstructor installs the function used to construct typ from a
// single input value.
func (t *Table) RegisterConstructor(typ reflect.Type, ctor host.Constructor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctors[typ] = ctor
}

// Lookup implements host.TypeTable.
func (t *Table) Lookup(name string) (reflect.Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	typ, ok := t.byName[name]
	return typ, ok
}

// NameOf implements host.TypeTable.
func (t *Table) NameOf(typ reflect.Type) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	name, ok := t.names[typ]
	return name, ok
}

// Constructor implements host.TypeTable.
func (t *Table) Constructor(typ reflect.Type) (host.Constructor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ctor, ok := t.ctors[typ]
	return ctor, ok
}

// Names returns every registered name, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byName))
	for name := range t.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
