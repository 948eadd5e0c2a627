package appgraph

import (
	"github.com/specialistvlad/gridgraph/internal/dag"
	"github.com/specialistvlad/gridgraph/internal/policy"
)

// ContainsVertex reports whether v is in g.
func (g *Graph[T]) ContainsVertex(v *Vertex[T]) bool { return g.core.ContainsVertex(v) }

// ContainsEdge reports whether g has an edge from source to target.
func (g *Graph[T]) ContainsEdge(source, target *Vertex[T]) bool {
	return g.core.ContainsEdge(source, target)
}

// Edge returns the edge from source to target.
func (g *Graph[T]) Edge(source, target *Vertex[T]) (dag.Edge[*Vertex[T]], bool) {
	return g.core.Edge(source, target)
}

// Len returns the number of vertices.
func (g *Graph[T]) Len() int { return g.core.Len() }

// Size returns the number of edges.
func (g *Graph[T]) Size() int { return g.core.Size() }

// Vertices returns every vertex in insertion order, or nil when the
// QueryVertices policy is rejected.
func (g *Graph[T]) Vertices() []*Vertex[T] {
	if g.policies.NullaryState(policy.QueryVertices) == policy.Reject {
		return nil
	}
	return g.core.Vertices()
}

// Edges returns every edge, or nil when the QueryEdges policy is rejected.
func (g *Graph[T]) Edges() []dag.Edge[*Vertex[T]] {
	if g.policies.NullaryState(policy.QueryEdges) == policy.Reject {
		return nil
	}
	return g.core.Edges()
}

func (g *Graph[T]) Roots() []*Vertex[T] { return g.core.Roots() }

func (g *Graph[T]) Sinks() []*Vertex[T] { return g.core.Sinks() }

func (g *Graph[T]) TopologicalOrder() ([]*Vertex[T], error) { return g.core.TopologicalOrder() }

// The following lookups fail with dag.ErrVertexNotFound for absent vertices.

func (g *Graph[T]) Parents(v *Vertex[T]) ([]*Vertex[T], error)     { return g.core.Parents(v) }
func (g *Graph[T]) Children(v *Vertex[T]) ([]*Vertex[T], error)    { return g.core.Children(v) }
func (g *Graph[T]) Neighbors(v *Vertex[T]) ([]*Vertex[T], error)   { return g.core.Neighbors(v) }
func (g *Graph[T]) Ancestors(v *Vertex[T]) ([]*Vertex[T], error)   { return g.core.Ancestors(v) }
func (g *Graph[T]) Descendants(v *Vertex[T]) ([]*Vertex[T], error) { return g.core.Descendants(v) }

func (g *Graph[T]) ShortestPath(source, target *Vertex[T]) ([]dag.Edge[*Vertex[T]], error) {
	return g.core.ShortestPath(source, target)
}

func (g *Graph[T]) PathsBetween(source, target *Vertex[T]) ([][]*Vertex[T], error) {
	return g.core.PathsBetween(source, target)
}

// isA reports whether v's type is t or one of its subtypes in g's hierarchy.
func (g *Graph[T]) isA(v *Vertex[T], t policy.Type) bool {
	return g.Hierarchy().IsA(v.PolicyType(), t)
}

// Vertex-side queries. They return empty results when v is not in g.

func orEmpty[X any](xs []X, err error) []X {
	if err != nil {
		return nil
	}
	return xs
}

// ChildrenIn returns the children of v, or nil when v's QueryChildren policy
// is rejected.
func (v *Vertex[T]) ChildrenIn(g *Graph[T]) []*Vertex[T] {
	if v.Policies().NullaryState(policy.QueryChildren) == policy.Reject {
		return nil
	}
	return orEmpty(g.core.Children(v))
}

// ParentsIn returns the parents of v, or nil when v's QueryParents policy is
// rejected.
func (v *Vertex[T]) ParentsIn(g *Graph[T]) []*Vertex[T] {
	if v.Policies().NullaryState(policy.QueryParents) == policy.Reject {
		return nil
	}
	return orEmpty(g.core.Parents(v))
}

func (v *Vertex[T]) NeighborsIn(g *Graph[T]) []*Vertex[T]    { return orEmpty(g.core.Neighbors(v)) }
func (v *Vertex[T]) DescendantsIn(g *Graph[T]) []*Vertex[T]  { return orEmpty(g.core.Descendants(v)) }
func (v *Vertex[T]) AncestorsIn(g *Graph[T]) []*Vertex[T]    { return orEmpty(g.core.Ancestors(v)) }
func (v *Vertex[T]) SiblingsIn(g *Graph[T]) []*Vertex[T]     { return orEmpty(g.core.Siblings(v)) }
func (v *Vertex[T]) FullSiblingsIn(g *Graph[T]) []*Vertex[T] { return orEmpty(g.core.FullSiblings(v)) }
func (v *Vertex[T]) HalfSiblingsIn(g *Graph[T]) []*Vertex[T] { return orEmpty(g.core.HalfSiblings(v)) }
func (v *Vertex[T]) SourcesIn(g *Graph[T]) []*Vertex[T]      { return orEmpty(g.core.SourcesOf(v)) }
func (v *Vertex[T]) SinksIn(g *Graph[T]) []*Vertex[T]        { return orEmpty(g.core.SinksOf(v)) }

func (v *Vertex[T]) IngressEdgesIn(g *Graph[T]) []dag.Edge[*Vertex[T]] {
	return orEmpty(g.core.IncomingEdges(v))
}

func (v *Vertex[T]) EgressEdgesIn(g *Graph[T]) []dag.Edge[*Vertex[T]] {
	return orEmpty(g.core.OutgoingEdges(v))
}

func (v *Vertex[T]) HasChild(g *Graph[T], child *Vertex[T]) bool   { return g.core.ContainsEdge(v, child) }
func (v *Vertex[T]) HasParent(g *Graph[T], parent *Vertex[T]) bool { return g.core.ContainsEdge(parent, v) }

// HasDescendant reports whether other is reachable from v.
func (v *Vertex[T]) HasDescendant(g *Graph[T], other *Vertex[T]) bool {
	ok, err := g.core.HasPath(v, other)
	return err == nil && ok && v != other
}

// HasAncestor reports whether v is reachable from other.
func (v *Vertex[T]) HasAncestor(g *Graph[T], other *Vertex[T]) bool {
	return other.HasDescendant(g, v)
}

func (v *Vertex[T]) HasChildren(g *Graph[T]) bool {
	n, err := g.core.OutDegree(v)
	return err == nil && n > 0
}

func (v *Vertex[T]) HasParents(g *Graph[T]) bool {
	n, err := g.core.InDegree(v)
	return err == nil && n > 0
}

// IsRoot reports whether v is in g and has no parents.
func (v *Vertex[T]) IsRoot(g *Graph[T]) bool {
	n, err := g.core.InDegree(v)
	return err == nil && n == 0
}

// IsSink reports whether v is in g and has no children.
func (v *Vertex[T]) IsSink(g *Graph[T]) bool {
	n, err := g.core.OutDegree(v)
	return err == nil && n == 0
}

func ofType[T any](g *Graph[T], vs []*Vertex[T], t policy.Type) []*Vertex[T] {
	var out []*Vertex[T]
	for _, v := range vs {
		if g.isA(v, t) {
			out = append(out, v)
		}
	}
	return out
}

// ChildrenOfType returns the children of v whose type is t or a subtype of t.
func (v *Vertex[T]) ChildrenOfType(g *Graph[T], t policy.Type) []*Vertex[T] {
	return ofType(g, orEmpty(g.core.Children(v)), t)
}

func (v *Vertex[T]) ParentsOfType(g *Graph[T], t policy.Type) []*Vertex[T] {
	return ofType(g, orEmpty(g.core.Parents(v)), t)
}

func (v *Vertex[T]) DescendantsOfType(g *Graph[T], t policy.Type) []*Vertex[T] {
	return ofType(g, orEmpty(g.core.Descendants(v)), t)
}

func (v *Vertex[T]) AncestorsOfType(g *Graph[T], t policy.Type) []*Vertex[T] {
	return ofType(g, orEmpty(g.core.Ancestors(v)), t)
}

func (v *Vertex[T]) HasChildOfType(g *Graph[T], t policy.Type) bool {
	return len(v.ChildrenOfType(g, t)) > 0
}

func (v *Vertex[T]) HasParentOfType(g *Graph[T], t policy.Type) bool {
	return len(v.ParentsOfType(g, t)) > 0
}

func (v *Vertex[T]) HasDescendantOfType(g *Graph[T], t policy.Type) bool {
	return len(v.DescendantsOfType(g, t)) > 0
}

func (v *Vertex[T]) HasAncestorOfType(g *Graph[T], t policy.Type) bool {
	return len(v.AncestorsOfType(g, t)) > 0
}

func (v *Vertex[T]) NumberOfChildrenOfType(g *Graph[T], t policy.Type) int {
	return len(v.ChildrenOfType(g, t))
}

func (v *Vertex[T]) NumberOfParentsOfType(g *Graph[T], t policy.Type) int {
	return len(v.ParentsOfType(g, t))
}

// EdgePathTo returns the edges of the shortest path from v to target.
func (v *Vertex[T]) EdgePathTo(g *Graph[T], target *Vertex[T]) []dag.Edge[*Vertex[T]] {
	return orEmpty(g.core.ShortestPath(v, target))
}

// EdgePathFrom returns the edges of the shortest path from source to v.
func (v *Vertex[T]) EdgePathFrom(g *Graph[T], source *Vertex[T]) []dag.Edge[*Vertex[T]] {
	return orEmpty(g.core.ShortestPath(source, v))
}

// ShortestPathTo returns the vertices along the shortest path from v to target.
func (v *Vertex[T]) ShortestPathTo(g *Graph[T], target *Vertex[T]) []*Vertex[T] {
	return orEmpty(g.core.ShortestVertexPath(v, target))
}

// ShortestPathFrom returns the vertices along the shortest path from source to v.
func (v *Vertex[T]) ShortestPathFrom(g *Graph[T], source *Vertex[T]) []*Vertex[T] {
	return orEmpty(g.core.ShortestVertexPath(source, v))
}
