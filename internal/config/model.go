package config

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
)

// Model is the unified representation of a workload.
type Model struct {
	Graph        *Graph
	Types        []*TypeDecl
	Policies     []*Policy
	Validations  []*Validation
	Computations []*Computation
}

// Graph holds the settings of the computation graph.
type Graph struct {
	Name        string
	AcceptUnset bool
	Algorithm   policy.Algorithm
}

// TypeDecl declares a policy type and its direct supertypes.
type TypeDecl struct {
	Name    policy.Type
	Extends []policy.Type
}

// Policy sets one policy state. Graph-scoped policies key on Type for unary
// kinds and on SourceType and TargetType for binary kinds. Vertex-scoped
// policies are installed on every vertex of VertexType (every vertex when
// empty) and key on Type.
type Policy struct {
	Scope      policy.Scope
	Kind       policy.Kind
	VertexType policy.Type
	Type       policy.Type
	SourceType policy.Type
	TargetType policy.Type
	State      policy.State
}

// Validation installs a predicate. Graph kinds guard the graph and, when
// Type is set, only apply to vertices of that type. Relation and membership
// kinds are installed on every vertex of Type, or on every vertex when Type
// is empty. Zero limits are not enforced.
type Validation struct {
	Kind           validation.Kind
	Type           policy.Type
	MaxParents     int
	MaxChildren    int
	ForbiddenTypes []policy.Type
}

// Mode selects how a computation is attached to its `after` predecessors.
type Mode string

const (
	// ModeAdd keeps the other predecessors of the computation.
	ModeAdd Mode = "add"
	// ModeSet detaches the computation from every other predecessor.
	ModeSet Mode = "set"
)

// Computation declares one node of the computation graph.
type Computation struct {
	Name           string
	Type           policy.Type
	After          []string
	Before         []string
	Mode           Mode
	AdmissionLimit int64
	Weight         float64
}

// Validate checks the cross references of the model: unique computation
// names, known `after` and `before` targets, and declared types.
func (m *Model) Validate() error {
	var errs []error

	declared := map[policy.Type]bool{policy.Any: true}
	for _, t := range m.Types {
		declared[t.Name] = true
	}
	for _, t := range m.Types {
		for _, s := range t.Extends {
			if !declared[s] {
				errs = append(errs, fmt.Errorf("type %q extends undeclared type %q", t.Name, s))
			}
		}
	}

	names := make(map[string]bool, len(m.Computations))
	for _, c := range m.Computations {
		if names[c.Name] {
			errs = append(errs, fmt.Errorf("computation %q is declared more than once", c.Name))
		}
		names[c.Name] = true
	}
	for _, c := range m.Computations {
		if c.Type != "" && !declared[c.Type] {
			errs = append(errs, fmt.Errorf("computation %q has undeclared type %q", c.Name, c.Type))
		}
		switch c.Mode {
		case ModeAdd:
		case ModeSet:
			if len(c.After) > 1 {
				errs = append(errs, fmt.Errorf("computation %q uses mode %q with more than one `after` reference", c.Name, c.Mode))
			}
		default:
			errs = append(errs, fmt.Errorf("computation %q has unknown mode %q", c.Name, c.Mode))
		}
		for _, ref := range append(append([]string(nil), c.After...), c.Before...) {
			switch {
			case ref == c.Name:
				errs = append(errs, fmt.Errorf("computation %q refers to itself", c.Name))
			case !names[ref]:
				errs = append(errs, fmt.Errorf("computation %q refers to unknown computation %q", c.Name, ref))
			}
		}
	}
	return errors.Join(errs...)
}
