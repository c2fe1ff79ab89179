package typebridge

import (
	"reflect"
	"strings"

	"github.com/vk/taskbridge/internal/host"
)

// Descriptor is a handle to a type known to the host. Descriptors for the
// same type are equal however they were obtained.
type Descriptor struct {
	typ reflect.Type
}

// DescriptorOf returns the descriptor of v's dynamic type.
func DescriptorOf(v any) Descriptor {
	return Descriptor{typ: reflect.TypeOf(v)}
}

// DescriptorFor wraps a reflect.Type.
func DescriptorFor(t reflect.Type) Descriptor {
	return Descriptor{typ: t}
}

// Type returns the underlying reflect.Type, nil for the zero Descriptor.
func (d Descriptor) Type() reflect.Type { return d.typ }

// IsZero reports whether d refers to no type.
func (d Descriptor) IsZero() bool { return d.typ == nil }

func (d Descriptor) String() string {
	if d.typ == nil {
		return "<undetermined>"
	}
	return d.typ.String()
}

// TypeNamer is implemented by values that can name their own registered type.
type TypeNamer interface {
	TypeName() string
}

// TypeBridge is the closed set of reflective operations the bridge needs.
type TypeBridge interface {
	ResolveType(ref any) (Descriptor, error)
	IsInstanceOf(target Descriptor, v any) bool
	Coerce(target Descriptor, v any) (any, error)
	AttributeSetterType(owner Descriptor, attr string) (Descriptor, bool)
}

// Reflector implements TypeBridge over Go reflection and a host type table.
type Reflector struct {
	types host.TypeTable
}

var _ TypeBridge = (*Reflector)(nil)

// New creates a Reflector resolving names through types.
func New(types host.TypeTable) *Reflector {
	return &Reflector{types: types}
}

// ResolveType maps a type reference to a Descriptor. A reference is a
// registered type name, a Descriptor, a reflect.Type, or a TypeNamer.
func (r *Reflector) ResolveType(ref any) (Descriptor, error) {
	switch ref := ref.(type) {
	case string:
		name := strings.TrimSpace(ref)
		if name == "" {
			return Descriptor{}, &UnresolvableTypeError{Ref: ref, Reason: "empty type name"}
		}
		typ, ok := r.types.Lookup(name)
		if !ok {
			return Descriptor{}, &UnresolvableTypeError{Ref: ref, Reason: "no type registered under this name"}
		}
		return Descriptor{typ: typ}, nil
	case Descriptor:
		if ref.IsZero() {
			return Descriptor{}, &UnresolvableTypeError{Ref: ref, Reason: "zero descriptor"}
		}
		return ref, nil
	case reflect.Type:
		if ref == nil {
			return Descriptor{}, &UnresolvableTypeError{Ref: ref, Reason: "nil reflect.Type"}
		}
		return Descriptor{typ: ref}, nil
	case TypeNamer:
		return r.ResolveType(ref.TypeName())
	case nil:
		return Descriptor{}, &UnresolvableTypeError{Ref: ref, Reason: "nil reference"}
	default:
		return Descriptor{}, &UnresolvableTypeError{Ref: ref, Reason: "not a type name, descriptor or self-naming value"}
	}
}

// NameOf returns the registered name of d, falling back to its Go type string.
func (r *Reflector) NameOf(d Descriptor) string {
	if name, ok := r.types.NameOf(d.typ); ok {
		return name
	}
	return d.String()
}

// IsInstanceOf reports whether v can stand for a value of target without
// construction. A pointer to T and T are treated as the same target.
func (r *Reflector) IsInstanceOf(target Descriptor, v any) bool {
	if v == nil || target.IsZero() {
		return false
	}
	vt := reflect.TypeOf(v)
	tt := target.typ
	switch {
	case vt == tt:
		return true
	case tt.Kind() == reflect.Interface:
		return vt.Implements(tt)
	case vt.Kind() == reflect.Pointer && vt.Elem() == tt:
		return !reflect.ValueOf(v).IsNil()
	case tt.Kind() == reflect.Pointer && tt.Elem() == vt:
		return true
	}
	return false
}

// Coerce returns v unchanged when it is already an instance of target and
// otherwise constructs a new target instance from v.
func (r *Reflector) Coerce(target Descriptor, v any) (any, error) {
	if r.IsInstanceOf(target, v) {
		return v, nil
	}
	return r.Construct(target, v)
}
