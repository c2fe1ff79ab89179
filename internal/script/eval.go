package script

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// PropertyReader is the read side of the build properties.
type PropertyReader interface {
	Property(name string) (string, bool)
}

// newEvalContext exposes params as param.<name> and the script functions.
func newEvalContext(params map[string]string, props PropertyReader) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			paramVar: paramsValue(params),
		},
		Functions: functions(props),
	}
}

// paramVar is the only variable scripts can reference.
const paramVar = "param"

func functions(props PropertyReader) map[string]function.Function {
	return map[string]function.Function{
		"prop":      lookupFunc(props.Property),
		"env":       lookupFunc(os.LookupEnv),
		"join":      stdlib.JoinFunc,
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"format":    stdlib.FormatFunc,
		"concat":    stdlib.ConcatFunc,
		"coalesce":  stdlib.CoalesceFunc,
		"trimspace": stdlib.TrimSpaceFunc,
	}
}

func paramsValue(params map[string]string) cty.Value {
	if len(params) == 0 {
		return cty.EmptyObjectVal
	}
	vals := make(map[string]cty.Value, len(params))
	for k, v := range params {
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}

// lookupFunc returns a one-argument function yielding the looked up string,
// or null when the name is undefined.
func lookupFunc(lookup func(string) (string, bool)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			v, ok := lookup(args[0].AsString())
			if !ok {
				return cty.NullVal(cty.String), nil
			}
			return cty.StringVal(v), nil
		},
	})
}
