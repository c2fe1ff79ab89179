package tasktree

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ChildMarker prefixes keys of the loose map form that hold child elements
// rather than attributes. Empty and all-whitespace keys are child keys too.
const ChildMarker = "@"

// ErrInvalidSpec is returned for spec shapes the builder cannot render.
var ErrInvalidSpec = errors.New("invalid attribute spec")

// Attr is one attribute of a spec. A nil Value means "not set".
type Attr struct {
	Name  string
	Value any
}

// Group is a run of child elements sharing one element name. Specs are
// built as siblings in slice order.
type Group struct {
	Name  string
	Specs []Spec
}

// Spec describes the attributes and child elements of one element.
type Spec struct {
	Attrs    []Attr
	Children []Group
}

// Set appends an attribute and returns s for chaining.
func (s *Spec) Set(name string, value any) *Spec {
	s.Attrs = append(s.Attrs, Attr{Name: name, Value: value})
	return s
}

// Add appends child specs under name. Consecutive calls with the same name
// extend one group; otherwise a new group starts, so interleaved siblings
// keep their order.
func (s *Spec) Add(name string, specs ...Spec) *Spec {
	if n := len(s.Children); n > 0 && s.Children[n-1].Name == name {
		s.Children[n-1].Specs = append(s.Children[n-1].Specs, specs...)
		return s
	}
	s.Children = append(s.Children, Group{Name: name, Specs: specs})
	return s
}

// IsChildKey reports whether key denotes children in the map form.
func IsChildKey(key string) bool {
	return strings.TrimSpace(key) == "" || strings.HasPrefix(key, ChildMarker)
}

// FromMap converts the loose map form into a Spec. Attribute keys and child
// group names are taken in sorted order; sequences keep their order.
//
//	FromMap(map[string]any{
//		"srcdir": "src",
//		"": map[string]any{
//			"classpath": []any{map[string]any{"refid": "lib"}, map[string]any{"path": "out"}},
//		},
//	})
func FromMap(m map[string]any) (Spec, error) {
	var spec Spec
	for _, key := range sortedKeys(m) {
		v := m[key]
		if IsChildKey(key) {
			if v == nil {
				continue
			}
			groups, ok := v.(map[string]any)
			if !ok {
				return Spec{}, fmt.Errorf("%w: children under %q must be a map of element name to spec, got %T", ErrInvalidSpec, key, v)
			}
			for _, name := range sortedKeys(groups) {
				specs, err := childSpecs(groups[name])
				if err != nil {
					return Spec{}, fmt.Errorf("child %q: %w", name, err)
				}
				spec.Add(name, specs...)
			}
			continue
		}
		if v != nil && !isScalar(v) {
			return Spec{}, fmt.Errorf("%w: attribute %q has non-scalar value of type %T", ErrInvalidSpec, key, v)
		}
		spec.Set(key, v)
	}
	return spec, nil
}

func childSpecs(v any) ([]Spec, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Spec:
		return []Spec{v}, nil
	case []Spec:
		return v, nil
	case map[string]any:
		s, err := FromMap(v)
		if err != nil {
			return nil, err
		}
		return []Spec{s}, nil
	case []map[string]any:
		out := make([]Spec, 0, len(v))
		for i, m := range v {
			s, err := FromMap(m)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, s)
		}
		return out, nil
	case []any:
		out := make([]Spec, 0, len(v))
		for i, item := range v {
			specs, err := childSpecs(item)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if len(specs) != 1 {
				return nil, fmt.Errorf("%w: entry %d must be a single spec", ErrInvalidSpec, i)
			}
			out = append(out, specs[0])
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: child spec must be a map or a list of maps, got %T", ErrInvalidSpec, v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isUnset reports nil and typed nil pointers and interfaces.
func isUnset(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isScalar(v any) bool {
	if _, ok := v.(fmt.Stringer); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Func, reflect.Chan:
		return false
	}
	return true
}

// Render returns the literal string form of a scalar attribute value.
func Render(v any) (string, error) {
	if isUnset(v) {
		return "", fmt.Errorf("%w: cannot render a nil value", ErrInvalidSpec)
	}
	if !isScalar(v) {
		return "", fmt.Errorf("%w: cannot render %T as an attribute value", ErrInvalidSpec, v)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return Render(rv.Elem().Interface())
	}
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	}
	return fmt.Sprint(v), nil
}
