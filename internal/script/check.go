package script

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

type noProperties struct{}

func (noProperties) Property(string) (string, bool) { return "", false }

var knownFunctions = functions(noProperties{})

// expressions gathers every attribute expression of body, nested blocks
// included, in source order.
func expressions(body *hclsyntax.Body) []hcl.Expression {
	var exprs []hcl.Expression
	for _, attr := range sortedAttributes(body, nil) {
		exprs = append(exprs, attr.Expr)
	}
	for _, block := range body.Blocks {
		exprs = append(exprs, expressions(block.Body)...)
	}
	return exprs
}

// checkReferences reports variables other than param and calls to
// functions scripts do not provide.
func checkReferences(body *hclsyntax.Body) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, expr := range expressions(body) {
		for _, traversal := range expr.Variables() {
			name := traversal.RootName()
			if name == paramVar {
				continue
			}
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown variable",
				Detail: fmt.Sprintf("There is no variable named %q. Use param.<name> for parameters, "+
					"prop(%q) for a property, or $${%s} to expand it when the task is configured.", name, name, name),
				Subject: traversal.SourceRange().Ptr(),
			})
		}

		syntaxExpr, ok := expr.(hclsyntax.Expression)
		if !ok {
			continue
		}
		diags = append(diags, hclsyntax.VisitAll(syntaxExpr, func(n hclsyntax.Node) hcl.Diagnostics {
			call, ok := n.(*hclsyntax.FunctionCallExpr)
			if !ok {
				return nil
			}
			if _, known := knownFunctions[call.Name]; known {
				return nil
			}
			return hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Call to unknown function",
				Detail:   fmt.Sprintf("There is no function named %q. Available functions: %v.", call.Name, functionNames()),
				Subject:  call.NameRange.Ptr(),
			}}
		})...)
	}
	return diags
}

func functionNames() []string {
	names := make([]string, 0, len(knownFunctions))
	for name := range knownFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
