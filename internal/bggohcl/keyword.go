package bggohcl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// KeywordForExpr reads a bare keyword such as `reject` from expr. A quoted
// string is accepted as well. The keyword must be one of allowed.
func KeywordForExpr(expr hcl.Expression, allowed ...string) (string, hcl.Diagnostics) {
	word, diags := keyword(expr)
	if diags.HasErrors() {
		return "", diags
	}
	if len(allowed) > 0 && !slices.Contains(allowed, word) {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported keyword",
			Detail:   fmt.Sprintf("The keyword '%s' is not valid here. Supported keywords are: %s.", word, strings.Join(allowed, ", ")),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return word, nil
}

func keyword(expr hcl.Expression) (string, hcl.Diagnostics) {
	// AbsTraversalForExpr accepts a single identifier like `accept`.
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && len(traversal) == 1 {
		return traversal.RootName(), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid keyword",
			Detail:   "Expected a simple keyword like 'accept', not a complex expression.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	return val.AsString(), nil
}
