package bggohcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	// e.g., computation.read
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// TraversalRefs reads a list of references of the form `root.name` from expr
// and returns the names. A nil or empty expression yields no references.
func TraversalRefs(expr hcl.Expression, root string) ([]string, hcl.Diagnostics) {
	if expr == nil || expr.Range().End.Byte <= expr.Range().Start.Byte {
		return nil, nil
	}
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		traversal, tDiags := hcl.AbsTraversalForExpr(item)
		if tDiags.HasErrors() {
			diags = append(diags, tDiags...)
			continue
		}
		attr, ok := attrStep(traversal)
		if traversal.RootName() != root || len(traversal) != 2 || !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid reference",
				Detail:   fmt.Sprintf("Expected a reference of the form %s.<name>, got %s.", root, TraversalKey(traversal)),
				Subject:  item.Range().Ptr(),
			})
			continue
		}
		refs = append(refs, attr)
	}
	return refs, diags
}

func attrStep(t hcl.Traversal) (string, bool) {
	if len(t) < 2 {
		return "", false
	}
	step, ok := t[1].(hcl.TraverseAttr)
	return step.Name, ok
}
