package typebridge

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// Construct always builds a new instance of target from v, trying, in order:
// a constructor registered with the type table, encoding.TextUnmarshaler for
// string input (enumerations and host.Char), and go-cty conversion for
// primitive kinds. v is never modified.
func (r *Reflector) Construct(target Descriptor, v any) (any, error) {
	if target.IsZero() {
		return nil, &ConstructionError{Target: target, Value: v, Cause: fmt.Errorf("undetermined target type")}
	}
	if v == nil {
		return nil, &ConstructionError{Target: target, Value: v, Cause: errNilInput}
	}
	out, err := r.construct(target.typ, v)
	if err != nil {
		return nil, &ConstructionError{Target: target, Value: v, Cause: err}
	}
	return out.Interface(), nil
}

func (r *Reflector) construct(tt reflect.Type, v any) (reflect.Value, error) {
	if ctor, ok := r.types.Constructor(tt); ok {
		built, err := ctor(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return fit(built, tt)
	}

	if tt.Kind() == reflect.Pointer {
		elem, err := r.construct(tt.Elem(), v)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(tt.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	if s, ok := v.(string); ok {
		if reflect.PointerTo(tt).Implements(textUnmarshalerType) {
			ptr := reflect.New(tt)
			if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, err
			}
			return ptr.Elem(), nil
		}
	}

	if tt.Kind() == reflect.String {
		if s, ok := v.(fmt.Stringer); ok {
			return reflect.ValueOf(s.String()).Convert(tt), nil
		}
	}

	if isPrimitive(tt.Kind()) {
		return convertPrimitive(tt, v)
	}
	return reflect.Value{}, errNoConstructor
}

func isPrimitive(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertPrimitive round-trips v through cty: the input's implied cty type,
// converted to the target's implied cty type, then decoded into the target.
func convertPrimitive(tt reflect.Type, v any) (reflect.Value, error) {
	inTy, err := gocty.ImpliedType(v)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", errNoConstructor, err)
	}
	inVal, err := gocty.ToCtyValue(v, inTy)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(tt)
	targetTy, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", errNoConstructor, err)
	}

	converted, err := convert.Convert(inVal, targetTy)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := gocty.FromCtyValue(converted, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// fit adapts v to be assignable to t, dereferencing or taking the address of
// a copy as needed.
func fit(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}
	val := reflect.ValueOf(v)
	switch {
	case val.Type().AssignableTo(t):
		return val, nil
	case val.Kind() == reflect.Pointer && !val.IsNil() && val.Type().Elem().AssignableTo(t):
		return val.Elem(), nil
	case t.Kind() == reflect.Pointer && val.Type().AssignableTo(t.Elem()):
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(val)
		return ptr, nil
	}
	return reflect.Value{}, fmt.Errorf("value of type %s is not assignable to %s", val.Type(), t)
}
