package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/policy"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// typeOrAny returns t as a policy type, or policy.Any when t is empty.
func typeOrAny(t string) policy.Type {
	if t == "" {
		return policy.Any
	}
	return policy.Type(t)
}

func types(names []string) []policy.Type {
	if len(names) == 0 {
		return nil
	}
	out := make([]policy.Type, len(names))
	for i, n := range names {
		out[i] = policy.Type(n)
	}
	return out
}
