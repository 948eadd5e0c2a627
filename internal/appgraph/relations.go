package appgraph

import (
	"context"

	"github.com/specialistvlad/gridgraph/internal/dag"
	"github.com/specialistvlad/gridgraph/internal/failure"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// AddToGraph is g.AddVertex(ctx, v).
func (v *Vertex[T]) AddToGraph(ctx context.Context, g *Graph[T]) *failure.Failure[failure.VertexAddition] {
	return g.AddVertex(ctx, v)
}

// RemoveFromGraph is g.RemoveVertex(ctx, v).
func (v *Vertex[T]) RemoveFromGraph(ctx context.Context, g *Graph[T]) *failure.Failure[failure.VertexRemoval] {
	return g.RemoveVertex(ctx, v)
}

func (g *Graph[T]) shouldConnectLocked(source, target *Vertex[T]) *failure.Failure[failure.Connection] {
	if source == target {
		return failure.New[failure.Connection](failure.SelfReference, "vertex %s cannot be connected to itself", source)
	}
	return failure.Into[failure.Connection](g.shouldAddEdgeLocked(source, target))
}

func (g *Graph[T]) shouldDisconnectLocked(source, target *Vertex[T]) *failure.Failure[failure.Disconnection] {
	if source == target {
		return failure.New[failure.Disconnection](failure.SelfReference, "vertex %s cannot be disconnected from itself", source)
	}
	return failure.Into[failure.Disconnection](g.shouldRemoveEdgeLocked(source, target))
}

// ShouldConnectChild reports whether ConnectChild(g, child) would succeed.
func (v *Vertex[T]) ShouldConnectChild(g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Connection] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldConnectLocked(v, child)
}

// ShouldConnectParent reports whether ConnectParent(g, parent) would succeed.
func (v *Vertex[T]) ShouldConnectParent(g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Connection] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldConnectLocked(parent, v)
}

func (v *Vertex[T]) connect(ctx context.Context, g *Graph[T], op string, source, target *Vertex[T], weight float64) *failure.Failure[failure.Connection] {
	return mutate(ctx, g, op, edgeAttrs(source, target),
		func(b *batch) *failure.Failure[failure.Connection] {
			if f := g.shouldConnectLocked(source, target); f != nil {
				return f
			}
			g.linkLocked(b, source, target, weight)
			return nil
		})
}

// ConnectChild creates an edge from v to child, both already in g.
func (v *Vertex[T]) ConnectChild(ctx context.Context, g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Connection] {
	return v.connect(ctx, g, "ConnectChild", v, child, dag.DefaultWeight)
}

func (v *Vertex[T]) ConnectChildWeighted(ctx context.Context, g *Graph[T], child *Vertex[T], weight float64) *failure.Failure[failure.Connection] {
	return v.connect(ctx, g, "ConnectChild", v, child, weight)
}

// ConnectParent creates an edge from parent to v, both already in g.
func (v *Vertex[T]) ConnectParent(ctx context.Context, g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Connection] {
	return v.connect(ctx, g, "ConnectParent", parent, v, dag.DefaultWeight)
}

func (v *Vertex[T]) ConnectParentWeighted(ctx context.Context, g *Graph[T], parent *Vertex[T], weight float64) *failure.Failure[failure.Connection] {
	return v.connect(ctx, g, "ConnectParent", parent, v, weight)
}

// ShouldDisconnectChild reports whether DisconnectChild(g, child) would succeed.
func (v *Vertex[T]) ShouldDisconnectChild(g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Disconnection] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldDisconnectLocked(v, child)
}

// ShouldDisconnectParent reports whether DisconnectParent(g, parent) would succeed.
func (v *Vertex[T]) ShouldDisconnectParent(g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Disconnection] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldDisconnectLocked(parent, v)
}

func (v *Vertex[T]) disconnect(ctx context.Context, g *Graph[T], op string, source, target *Vertex[T]) *failure.Failure[failure.Disconnection] {
	return mutate(ctx, g, op, edgeAttrs(source, target),
		func(b *batch) *failure.Failure[failure.Disconnection] {
			if f := g.shouldDisconnectLocked(source, target); f != nil {
				return f
			}
			g.unlinkLocked(b, source, target)
			return nil
		})
}

// DisconnectChild removes the edge from v to child.
func (v *Vertex[T]) DisconnectChild(ctx context.Context, g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Disconnection] {
	return v.disconnect(ctx, g, "DisconnectChild", v, child)
}

// DisconnectParent removes the edge from parent to v.
func (v *Vertex[T]) DisconnectParent(ctx context.Context, g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Disconnection] {
	return v.disconnect(ctx, g, "DisconnectParent", parent, v)
}

// shouldAttachLocked checks linking source to target where fresh, one of the
// two, may still be absent from g. It reports whether fresh has to be
// inserted. For an absent vertex the edge rules are evaluated without the
// structural checks, which cannot fail for a vertex that has no edges yet.
func (g *Graph[T]) shouldAttachLocked(source, target, fresh *Vertex[T]) (bool, *failure.Failure[failure.Addition]) {
	if source == target {
		return false, failure.New[failure.Addition](failure.SelfReference, "vertex %s cannot be connected to itself", source)
	}
	anchor := source
	if fresh == source {
		anchor = target
	}
	if !g.core.ContainsVertex(anchor) {
		return false, failure.New[failure.Addition](failure.VertexNotPresent, "vertex %s is not in graph %s", anchor, g)
	}
	if g.core.ContainsVertex(fresh) {
		return false, failure.Into[failure.Addition](g.shouldAddEdgeLocked(source, target))
	}
	if f := g.shouldAddVertexLocked(fresh); f != nil {
		return false, failure.Into[failure.Addition](f)
	}
	return true, failure.Into[failure.Addition](g.admitEdgeLocked(source, target))
}

// attachLocked inserts fresh if needed and links source to target. When the
// edge is refused after the insertion, the insertion is rolled back.
func (g *Graph[T]) attachLocked(b *batch, source, target, fresh *Vertex[T], weight float64) *failure.Failure[failure.Addition] {
	insert, f := g.shouldAttachLocked(source, target, fresh)
	if f != nil {
		return f
	}
	var pending batch
	if insert {
		g.insertLocked(&pending, fresh)
		if f := g.shouldAddEdgeLocked(source, target); f != nil {
			g.rollbackInsertLocked(fresh)
			return failure.Into[failure.Addition](f)
		}
	}
	g.linkLocked(&pending, source, target, weight)
	*b = append(*b, pending...)
	return nil
}

func (g *Graph[T]) rollbackInsertLocked(v *Vertex[T]) {
	if !g.core.RemoveVertex(v) {
		failure.Invariant("appgraph.rollback", "inserted vertex %s vanished before rollback", v)
	}
	v.graph.CompareAndSwap(g, nil)
}

// ShouldAddChild reports whether AddChild(g, child) would succeed.
func (v *Vertex[T]) ShouldAddChild(g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Addition] {
	g.writer.Lock()
	defer g.writer.Unlock()
	_, f := g.shouldAttachLocked(v, child, child)
	return f
}

// ShouldAddParent reports whether AddParent(g, parent) would succeed.
func (v *Vertex[T]) ShouldAddParent(g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Addition] {
	g.writer.Lock()
	defer g.writer.Unlock()
	_, f := g.shouldAttachLocked(parent, v, parent)
	return f
}

// AddChild inserts child into g if it is absent and connects v to it. If the
// connection is refused, an insertion made for it is rolled back.
func (v *Vertex[T]) AddChild(ctx context.Context, g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Addition] {
	return v.AddChildWeighted(ctx, g, child, dag.DefaultWeight)
}

func (v *Vertex[T]) AddChildWeighted(ctx context.Context, g *Graph[T], child *Vertex[T], weight float64) *failure.Failure[failure.Addition] {
	return mutate(ctx, g, "AddChild", edgeAttrs(v, child),
		func(b *batch) *failure.Failure[failure.Addition] {
			return g.attachLocked(b, v, child, child, weight)
		})
}

// AddParent inserts parent into g if it is absent and connects it to v.
func (v *Vertex[T]) AddParent(ctx context.Context, g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Addition] {
	return v.AddParentWeighted(ctx, g, parent, dag.DefaultWeight)
}

func (v *Vertex[T]) AddParentWeighted(ctx context.Context, g *Graph[T], parent *Vertex[T], weight float64) *failure.Failure[failure.Addition] {
	return mutate(ctx, g, "AddParent", edgeAttrs(parent, v),
		func(b *batch) *failure.Failure[failure.Addition] {
			return g.attachLocked(b, parent, v, parent, weight)
		})
}

// shouldDetachLocked checks removing other, which must be a child of v when
// child is true and a parent otherwise.
func (g *Graph[T]) shouldDetachLocked(v, other *Vertex[T], child bool) *failure.Failure[failure.Removal] {
	if v == other {
		return failure.New[failure.Removal](failure.SelfReference, "vertex %s cannot remove itself", v)
	}
	if !g.core.ContainsVertex(v) {
		return failure.New[failure.Removal](failure.VertexNotPresent, "vertex %s is not in graph %s", v, g)
	}
	source, target := v, other
	if !child {
		source, target = other, v
	}
	if !g.core.ContainsEdge(source, target) {
		return failure.New[failure.Removal](failure.EdgeNotPresent, "edge %s -> %s is not in graph %s", source, target, g)
	}
	return failure.Into[failure.Removal](g.shouldRemoveVertexLocked(other))
}

// ShouldRemoveChild reports whether RemoveChild(g, child) would succeed.
func (v *Vertex[T]) ShouldRemoveChild(g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Removal] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldDetachLocked(v, child, true)
}

// ShouldRemoveParent reports whether RemoveParent(g, parent) would succeed.
func (v *Vertex[T]) ShouldRemoveParent(g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Removal] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldDetachLocked(v, parent, false)
}

// RemoveChild removes child, which must be a child of v, from g.
func (v *Vertex[T]) RemoveChild(ctx context.Context, g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Removal] {
	return mutate(ctx, g, "RemoveChild", edgeAttrs(v, child),
		func(b *batch) *failure.Failure[failure.Removal] {
			if f := g.shouldDetachLocked(v, child, true); f != nil {
				return f
			}
			g.deleteLocked(b, child)
			return nil
		})
}

// RemoveParent removes parent, which must be a parent of v, from g.
func (v *Vertex[T]) RemoveParent(ctx context.Context, g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Removal] {
	return mutate(ctx, g, "RemoveParent", edgeAttrs(parent, v),
		func(b *batch) *failure.Failure[failure.Removal] {
			if f := g.shouldDetachLocked(v, parent, false); f != nil {
				return f
			}
			g.deleteLocked(b, parent)
			return nil
		})
}

// evaluateRemovalsLocked checks every edge concurrently and returns the
// rejections in edge order. Edges or vertices that are already gone are not
// reported.
func (g *Graph[T]) evaluateRemovalsLocked(edges [][2]*Vertex[T]) []*failure.Failure[failure.Disconnection] {
	results := make([]*failure.Failure[failure.Disconnection], len(edges))
	var eg errgroup.Group
	for i, e := range edges {
		eg.Go(func() error {
			results[i] = g.shouldDisconnectLocked(e[0], e[1])
			return nil
		})
	}
	_ = eg.Wait()

	var failures []*failure.Failure[failure.Disconnection]
	for _, f := range results {
		if f == nil || f.Kind == failure.EdgeNotPresent || f.Kind == failure.VertexNotPresent {
			continue
		}
		failures = append(failures, f)
	}
	return failures
}

func (g *Graph[T]) relativesLocked(v *Vertex[T], children bool) []*Vertex[T] {
	var (
		out []*Vertex[T]
		err error
	)
	if children {
		out, err = g.core.Children(v)
	} else {
		out, err = g.core.Parents(v)
	}
	if err != nil {
		return nil
	}
	return out
}

func (v *Vertex[T]) disconnectAll(ctx context.Context, g *Graph[T], op string, children bool, pred func(*Vertex[T]) bool) []*failure.Failure[failure.Disconnection] {
	var failures []*failure.Failure[failure.Disconnection]
	mutate(ctx, g, op, []attribute.KeyValue{vertexAttr("vertex", v)},
		func(b *batch) *failure.Failure[failure.Disconnection] {
			if !g.core.ContainsVertex(v) {
				f := failure.New[failure.Disconnection](failure.VertexNotPresent, "vertex %s is not in graph %s", v, g)
				failures = append(failures, f)
				return f
			}
			var edges [][2]*Vertex[T]
			for _, other := range g.relativesLocked(v, children) {
				if pred != nil && !pred(other) {
					continue
				}
				if children {
					edges = append(edges, [2]*Vertex[T]{v, other})
				} else {
					edges = append(edges, [2]*Vertex[T]{other, v})
				}
			}
			if failures = g.evaluateRemovalsLocked(edges); len(failures) > 0 {
				return failures[0]
			}
			for _, e := range edges {
				if g.core.ContainsEdge(e[0], e[1]) {
					g.unlinkLocked(b, e[0], e[1])
				}
			}
			return nil
		})
	return failures
}

// DisconnectChildren removes the edges from v to every child matching pred
// (all children when pred is nil). Removability is evaluated for every
// matching child first; if any is refused, nothing is removed and every
// refusal is returned.
func (v *Vertex[T]) DisconnectChildren(ctx context.Context, g *Graph[T], pred func(*Vertex[T]) bool) []*failure.Failure[failure.Disconnection] {
	return v.disconnectAll(ctx, g, "DisconnectChildren", true, pred)
}

// DisconnectParents is DisconnectChildren for the parents of v.
func (v *Vertex[T]) DisconnectParents(ctx context.Context, g *Graph[T], pred func(*Vertex[T]) bool) []*failure.Failure[failure.Disconnection] {
	return v.disconnectAll(ctx, g, "DisconnectParents", false, pred)
}

// adoptLocked links source to target, inserting fresh if it is absent. It then
// removes the other parents of target when fresh is the target, or the other
// children of source when fresh is the source. An existing edge from source
// to target is refused with EdgeAlreadyExists.
func (g *Graph[T]) adoptLocked(b *batch, source, target, fresh *Vertex[T], weight float64) *failure.Failure[failure.Rewire] {
	insert, f := g.shouldAttachLocked(source, target, fresh)
	if f != nil {
		return failure.Into[failure.Rewire](f)
	}

	var detach [][2]*Vertex[T]
	if !insert {
		if fresh == target {
			for _, p := range g.relativesLocked(target, false) {
				detach = append(detach, [2]*Vertex[T]{p, target})
			}
		} else {
			for _, c := range g.relativesLocked(source, true) {
				detach = append(detach, [2]*Vertex[T]{source, c})
			}
		}
	}
	if refused := g.evaluateRemovalsLocked(detach); len(refused) > 0 {
		return failure.Into[failure.Rewire](refused[0])
	}

	var pending batch
	if f := g.attachLocked(&pending, source, target, fresh, weight); f != nil {
		return failure.Into[failure.Rewire](f)
	}
	for _, e := range detach {
		g.unlinkLocked(&pending, e[0], e[1])
	}
	*b = append(*b, pending...)
	return nil
}

// AdoptChild makes child a child of v, inserting it if needed, and detaches
// child from every other parent. It fails with EdgeAlreadyExists when child
// already is a child of v.
func (v *Vertex[T]) AdoptChild(ctx context.Context, g *Graph[T], child *Vertex[T]) *failure.Failure[failure.Rewire] {
	return v.AdoptChildWeighted(ctx, g, child, dag.DefaultWeight)
}

func (v *Vertex[T]) AdoptChildWeighted(ctx context.Context, g *Graph[T], child *Vertex[T], weight float64) *failure.Failure[failure.Rewire] {
	return mutate(ctx, g, "AdoptChild", edgeAttrs(v, child),
		func(b *batch) *failure.Failure[failure.Rewire] {
			return g.adoptLocked(b, v, child, child, weight)
		})
}

// AdoptParent makes parent a parent of v, inserting it if needed, and
// detaches parent from every other child.
func (v *Vertex[T]) AdoptParent(ctx context.Context, g *Graph[T], parent *Vertex[T]) *failure.Failure[failure.Rewire] {
	return v.AdoptParentWeighted(ctx, g, parent, dag.DefaultWeight)
}

func (v *Vertex[T]) AdoptParentWeighted(ctx context.Context, g *Graph[T], parent *Vertex[T], weight float64) *failure.Failure[failure.Rewire] {
	return mutate(ctx, g, "AdoptParent", edgeAttrs(parent, v),
		func(b *batch) *failure.Failure[failure.Rewire] {
			return g.adoptLocked(b, parent, v, parent, weight)
		})
}
