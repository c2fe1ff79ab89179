package typebridge

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// AttributeSetterType returns the parameter type of owner's setter for attr,
// or false when owner has no such setter. The setter is "Set" followed by
// attr with its first letter upper-cased; an exact match wins over a
// case-insensitive one.
func (r *Reflector) AttributeSetterType(owner Descriptor, attr string) (Descriptor, bool) {
	if owner.IsZero() {
		return Descriptor{}, false
	}
	m, ok := setterMethod(owner.typ, attr)
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{typ: m.Type.In(1)}, true
}

// Mutators lists the attribute names owner accepts through setters, sorted.
func (r *Reflector) Mutators(owner Descriptor) []string {
	if owner.IsZero() {
		return nil
	}
	pt := pointerTo(owner.typ)
	var out []string
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if strings.HasPrefix(m.Name, "Set") && len(m.Name) > 3 && isSetter(m) {
			out = append(out, strings.ToLower(m.Name[3:]))
		}
	}
	sort.Strings(out)
	return out
}

// Set coerces value to the parameter type of obj's setter for attr and
// invokes it. obj must be a non-nil pointer.
func (r *Reflector) Set(obj any, attr string, value any) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("cannot set attribute %q on %T: target must be a non-nil pointer", attr, obj)
	}

	m, ok := setterMethod(rv.Type(), attr)
	if !ok {
		return &UnknownAttributeError{Type: r.NameOf(Descriptor{typ: rv.Type().Elem()}), Attribute: attr}
	}

	param := Descriptor{typ: m.Type.In(1)}
	coerced, err := r.Coerce(param, value)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", attr, err)
	}
	arg, err := fit(coerced, param.typ)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", attr, err)
	}

	out := m.Func.Call([]reflect.Value{rv, arg})
	if len(out) == 1 && !out[0].IsNil() {
		return fmt.Errorf("attribute %q: %w", attr, out[0].Interface().(error))
	}
	return nil
}

// Populate sets every non-nil entry of attrs on obj, in key order. Only nil
// is skipped: false, 0 and "" are set. Attributes without a setter are
// errors when strict, and are otherwise skipped and reported in skipped.
func (r *Reflector) Populate(obj any, attrs map[string]any, strict bool) (skipped []string, err error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := attrs[k]
		if v == nil {
			continue
		}
		if err := r.Set(obj, k, v); err != nil {
			var unknown *UnknownAttributeError
			if !strict && errors.As(err, &unknown) {
				skipped = append(skipped, k)
				continue
			}
			return skipped, err
		}
	}
	return skipped, nil
}

func setterMethod(t reflect.Type, attr string) (reflect.Method, bool) {
	if attr == "" {
		return reflect.Method{}, false
	}
	want := "Set" + capitalize(attr)
	pt := pointerTo(t)
	if m, ok := pt.MethodByName(want); ok && isSetter(m) {
		return m, true
	}
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if strings.EqualFold(m.Name, want) && isSetter(m) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

// isSetter matches methods taking one argument and returning nothing or an error.
// Method types from a reflect.Type include the receiver as In(0).
func isSetter(m reflect.Method) bool {
	mt := m.Type
	if mt.NumIn() != 2 {
		return false
	}
	return mt.NumOut() == 0 || (mt.NumOut() == 1 && mt.Out(0) == errorType)
}

func pointerTo(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t
	}
	return reflect.PointerTo(t)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
