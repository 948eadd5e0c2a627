package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// graphSchema selects the `graph` blocks, which are decoded separately so
// that duplicates can be reported across files.
var graphSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "graph", LabelNames: []string{"name"}}},
}

// fileRoot is a struct used to decode every other top-level block of a file.
type fileRoot struct {
	Types          []*TypeBlock         `hcl:"type,block"`
	Policies       []*PolicyBlock       `hcl:"policy,block"`
	VertexPolicies []*VertexPolicyBlock `hcl:"vertex_policy,block"`
	Validations    []*ValidationBlock   `hcl:"validation,block"`
	Computations   []*ComputationBlock  `hcl:"computation,block"`
}

// GraphBlock is the body of `graph "<name>" { ... }`.
type GraphBlock struct {
	AcceptUnset *bool          `hcl:"accept_unset,optional"`
	Algorithm   hcl.Expression `hcl:"algorithm,optional"`
}

// TypeBlock maps to `type "<name>" { extends = [...] }`.
type TypeBlock struct {
	Name    string   `hcl:"name,label"`
	Extends []string `hcl:"extends,optional"`
}

// PolicyBlock maps to a graph-scoped `policy "<kind>" { ... }`.
type PolicyBlock struct {
	Kind       string         `hcl:"kind,label"`
	Type       string         `hcl:"type,optional"`
	SourceType string         `hcl:"source_type,optional"`
	TargetType string         `hcl:"target_type,optional"`
	State      hcl.Expression `hcl:"state"`
}

// VertexPolicyBlock maps to `vertex_policy "<kind>" { ... }`.
type VertexPolicyBlock struct {
	Kind       string         `hcl:"kind,label"`
	VertexType string         `hcl:"vertex_type,optional"`
	Type       string         `hcl:"type,optional"`
	State      hcl.Expression `hcl:"state"`
}

// ValidationBlock maps to `validation "<kind>" { ... }`.
type ValidationBlock struct {
	Kind           string   `hcl:"kind,label"`
	Type           string   `hcl:"type,optional"`
	MaxParents     *int     `hcl:"max_parents,optional"`
	MaxChildren    *int     `hcl:"max_children,optional"`
	ForbiddenTypes []string `hcl:"forbidden_types,optional"`
}

// ComputationBlock maps to `computation "<name>" { ... }`.
type ComputationBlock struct {
	Name           string         `hcl:"name,label"`
	Type           string         `hcl:"type,optional"`
	After          hcl.Expression `hcl:"after,optional"`
	Before         hcl.Expression `hcl:"before,optional"`
	Mode           *string        `hcl:"mode,optional"`
	AdmissionLimit *int64         `hcl:"admission_limit,optional"`
	Weight         *float64       `hcl:"weight,optional"`
}
