package typebridge

import (
	"errors"
	"fmt"
)

var (
	errNilInput      = errors.New("nil input")
	errNoConstructor = errors.New("no compatible constructor")
)

// UnresolvableTypeError is returned when a type reference cannot be mapped
// to a host type.
type UnresolvableTypeError struct {
	Ref    any
	Reason string
}

func (e *UnresolvableTypeError) Error() string {
	return fmt.Sprintf("unresolvable type %v: %s", e.Ref, e.Reason)
}

// ConstructionError is returned when a value cannot be coerced into, or
// constructed as, the target type.
type ConstructionError struct {
	Target Descriptor
	Value  any
	Cause  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s from %T %v: %v", e.Target, e.Value, e.Value, e.Cause)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// Detail describes the attempted conversion for diagnostic reports.
func (e *ConstructionError) Detail() string {
	return fmt.Sprintf("target type: %s, input type: %T", e.Target, e.Value)
}

// UnknownAttributeError is returned when an owner type has no setter for an
// attribute.
type UnknownAttributeError struct {
	Type      string
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("%s doesn't support the %q attribute", e.Type, e.Attribute)
}
