// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/gridgraph/internal/bggohcl"
	"github.com/specialistvlad/gridgraph/internal/config"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/dag"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
)

var (
	stateKeywords     = []string{"accept", "reject", "unset"}
	algorithmKeywords = []string{
		policy.ObjectOrType.String(),
		policy.ObjectOnly.String(),
		policy.TypeOnly.String(),
		policy.ObjectAndType.String(),
	}
)

func (l *Loader) translateGraph(ctx context.Context, block *hcl.Block) (*config.Graph, error) {
	var body GraphBlock
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode graph block: %w", diags)
	}

	graph := &config.Graph{Name: block.Labels[0], AcceptUnset: defaultAcceptUnset}
	if body.AcceptUnset != nil {
		graph.AcceptUnset = *body.AcceptUnset
	}
	if isExprDefined(ctx, body.Algorithm, "algorithm") {
		word, diags := bggohcl.KeywordForExpr(body.Algorithm, algorithmKeywords...)
		if diags.HasErrors() {
			return nil, fmt.Errorf("graph %q: %w", graph.Name, diags)
		}
		alg, err := policy.ParseAlgorithm(word)
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", graph.Name, err)
		}
		graph.Algorithm = alg
	}
	return graph, nil
}

func translateType(t *TypeBlock) *config.TypeDecl {
	return &config.TypeDecl{Name: policy.Type(t.Name), Extends: types(t.Extends)}
}

func translateState(expr hcl.Expression) (policy.State, error) {
	word, diags := bggohcl.KeywordForExpr(expr, stateKeywords...)
	if diags.HasErrors() {
		return policy.Unset, diags
	}
	return policy.ParseState(word)
}

func translatePolicy(ctx context.Context, p *PolicyBlock) (*config.Policy, error) {
	logger := ctxlog.FromContext(ctx).With("policy", p.Kind)
	kind, err := policy.ParseKind(policy.GraphScope, p.Kind)
	if err != nil {
		return nil, err
	}
	state, err := translateState(p.State)
	if err != nil {
		return nil, fmt.Errorf("policy %q: %w", p.Kind, err)
	}

	out := &config.Policy{Scope: policy.GraphScope, Kind: kind, State: state}
	switch kind.Arity() {
	case policy.Nullary:
		if p.Type != "" || p.SourceType != "" || p.TargetType != "" {
			return nil, fmt.Errorf("policy %q takes no subject types", p.Kind)
		}
	case policy.Unary:
		if p.SourceType != "" || p.TargetType != "" {
			return nil, fmt.Errorf("policy %q takes a single `type`, not source and target types", p.Kind)
		}
		out.Type = typeOrAny(p.Type)
	case policy.Binary:
		if p.Type != "" {
			return nil, fmt.Errorf("policy %q takes `source_type` and `target_type`, not `type`", p.Kind)
		}
		out.SourceType = typeOrAny(p.SourceType)
		out.TargetType = typeOrAny(p.TargetType)
	}
	logger.Debug("Translated graph policy.", "state", state.String(), "arity", kind.Arity())
	return out, nil
}

func translateVertexPolicy(ctx context.Context, p *VertexPolicyBlock) (*config.Policy, error) {
	kind, err := policy.ParseKind(policy.VertexScope, p.Kind)
	if err != nil {
		return nil, err
	}
	state, err := translateState(p.State)
	if err != nil {
		return nil, fmt.Errorf("vertex_policy %q: %w", p.Kind, err)
	}

	out := &config.Policy{
		Scope:      policy.VertexScope,
		Kind:       kind,
		VertexType: policy.Type(p.VertexType),
		State:      state,
	}
	if kind.Arity() == policy.Nullary {
		if p.Type != "" {
			return nil, fmt.Errorf("vertex_policy %q takes no subject type", p.Kind)
		}
	} else {
		out.Type = typeOrAny(p.Type)
	}
	ctxlog.FromContext(ctx).Debug("Translated vertex policy.", "policy", p.Kind, "vertex_type", p.VertexType, "state", state.String())
	return out, nil
}

func translateValidation(v *ValidationBlock) (*config.Validation, error) {
	kind, err := validation.ParseKind(v.Kind)
	if err != nil {
		return nil, err
	}
	out := &config.Validation{
		Kind:           kind,
		Type:           policy.Type(v.Type),
		ForbiddenTypes: types(v.ForbiddenTypes),
	}
	if v.MaxParents != nil {
		if *v.MaxParents < 1 {
			return nil, fmt.Errorf("validation %q: max_parents must be at least 1", v.Kind)
		}
		out.MaxParents = *v.MaxParents
	}
	if v.MaxChildren != nil {
		if *v.MaxChildren < 1 {
			return nil, fmt.Errorf("validation %q: max_children must be at least 1", v.Kind)
		}
		out.MaxChildren = *v.MaxChildren
	}
	return out, nil
}

func translateComputation(ctx context.Context, c *ComputationBlock) (*config.Computation, error) {
	out := &config.Computation{
		Name:   c.Name,
		Type:   policy.Type(c.Type),
		Mode:   config.ModeAdd,
		Weight: dag.DefaultWeight,
	}

	var diags hcl.Diagnostics
	if isExprDefined(ctx, c.After, "after") {
		var d hcl.Diagnostics
		out.After, d = bggohcl.TraversalRefs(c.After, "computation")
		diags = append(diags, d...)
	}
	if isExprDefined(ctx, c.Before, "before") {
		var d hcl.Diagnostics
		out.Before, d = bggohcl.TraversalRefs(c.Before, "computation")
		diags = append(diags, d...)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("computation %q: %w", c.Name, diags)
	}

	if c.Mode != nil {
		out.Mode = config.Mode(*c.Mode)
	}
	if c.AdmissionLimit != nil {
		if *c.AdmissionLimit < 1 {
			return nil, fmt.Errorf("computation %q: admission_limit must be at least 1", c.Name)
		}
		out.AdmissionLimit = *c.AdmissionLimit
	}
	if c.Weight != nil {
		out.Weight = *c.Weight
	}
	return out, nil
}
