package script

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskbridge/internal/tasktree"
	"github.com/zclconf/go-cty/cty"
)

// bodySpec evaluates a block body into a spec. Attributes and nested blocks
// are taken together in source order, so object-valued attributes and
// blocks keep their relative order as child groups. Attributes named in
// skip are left out.
func bodySpec(body *hclsyntax.Body, labels []string, evalCtx *hcl.EvalContext, skip ...string) (tasktree.Spec, hcl.Diagnostics) {
	var spec tasktree.Spec
	var diags hcl.Diagnostics

	switch len(labels) {
	case 0:
	case 1:
		spec.Set("name", labels[0])
	default:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Too many block labels",
			Detail:   "A nested element takes at most one label, used as its name attribute.",
		})
		return spec, diags
	}

	for _, item := range bodyItems(body, skip) {
		if attr, ok := item.(*hclsyntax.Attribute); ok {
			v, valDiags := attr.Expr.Value(evalCtx)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			if err := addValue(&spec, attr.Name, v); err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unsupported attribute value",
					Detail:   err.Error(),
					Subject:  attr.Expr.Range().Ptr(),
				})
			}
			continue
		}

		block := item.(*hclsyntax.Block)
		child, childDiags := bodySpec(block.Body, block.Labels, evalCtx)
		for _, d := range childDiags {
			if d.Subject == nil {
				d.Subject = block.DefRange().Ptr()
			}
		}
		diags = append(diags, childDiags...)
		spec.Add(block.Type, child)
	}
	return spec, diags
}

// bodyItems returns the attributes and blocks of body ordered by position.
func bodyItems(body *hclsyntax.Body, skip []string) []hclsyntax.Node {
	attrs := sortedAttributes(body, skip)
	items := make([]hclsyntax.Node, 0, len(attrs)+len(body.Blocks))
	for _, attr := range attrs {
		items = append(items, attr)
	}
	for _, block := range body.Blocks {
		items = append(items, block)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Range().Start.Byte < items[j].Range().Start.Byte
	})
	return items
}

func sortedAttributes(body *hclsyntax.Body, skip []string) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for name, attr := range body.Attributes {
		skipped := false
		for _, s := range skip {
			if name == s {
				skipped = true
				break
			}
		}
		if !skipped {
			attrs = append(attrs, attr)
		}
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// addValue adds v under name: primitives and primitive lists as attributes,
// objects and object lists as child groups.
func addValue(spec *tasktree.Spec, name string, v cty.Value) error {
	if v.IsNull() {
		spec.Set(name, nil)
		return nil
	}
	if !v.IsWhollyKnown() {
		return fmt.Errorf("value of %q is not known", name)
	}

	ty := v.Type()
	switch {
	case ty.IsObjectType() || ty.IsMapType():
		child, err := objectSpec(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		spec.Add(name, child)
		return nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		if v.LengthInt() == 0 {
			spec.Set(name, nil)
			return nil
		}
		var children []tasktree.Spec
		var items []string
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			et := elem.Type()
			if et.IsObjectType() || et.IsMapType() {
				child, err := objectSpec(elem)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				children = append(children, child)
				continue
			}
			prim, err := primitive(elem)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if prim != nil {
				s, err := tasktree.Render(prim)
				if err != nil {
					return err
				}
				items = append(items, s)
			}
		}
		if len(children) > 0 && len(items) > 0 {
			return fmt.Errorf("%s mixes objects and primitive values", name)
		}
		if len(children) > 0 {
			spec.Add(name, children...)
			return nil
		}
		spec.Set(name, strings.Join(items, ","))
		return nil
	}

	prim, err := primitive(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	spec.Set(name, prim)
	return nil
}

func objectSpec(v cty.Value) (tasktree.Spec, error) {
	var spec tasktree.Spec
	if v.IsNull() {
		return spec, nil
	}
	m := v.AsValueMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := addValue(&spec, k, m[k]); err != nil {
			return tasktree.Spec{}, err
		}
	}
	return spec, nil
}

// primitive converts a primitive cty value to string, int64, float64 or
// bool. Null converts to nil.
func primitive(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type().FriendlyName())
	}
}
