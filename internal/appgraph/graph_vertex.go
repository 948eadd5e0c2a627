package appgraph

import (
	"context"

	"github.com/specialistvlad/gridgraph/internal/dag"
	"github.com/specialistvlad/gridgraph/internal/failure"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ShouldAddVertex reports whether AddVertex(v) would succeed.
func (g *Graph[T]) ShouldAddVertex(v *Vertex[T]) *failure.Failure[failure.VertexAddition] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldAddVertexLocked(v)
}

func (g *Graph[T]) shouldAddVertexLocked(v *Vertex[T]) *failure.Failure[failure.VertexAddition] {
	if g.core.ContainsVertex(v) {
		return failure.New[failure.VertexAddition](failure.VertexAlreadyPresent, "vertex %s is already in graph %s", v, g)
	}
	if other := v.graph.Load(); other != nil && other != g {
		return failure.New[failure.VertexAddition](failure.VertexAlreadyPresent, "vertex %s already belongs to graph %s", v, other)
	}
	return g.admitVertexLocked(v)
}

// admitVertexLocked evaluates the policies and validations guarding the entry
// of v into g.
func (g *Graph[T]) admitVertexLocked(v *Vertex[T]) *failure.Failure[failure.VertexAddition] {
	if !g.policies.Permits(policy.AddVertex, v, g.AcceptUnset()) {
		return failure.Rejected[failure.VertexAddition](failure.RejectedByGraphPolicy, g,
			"graph %s does not permit adding vertex %s", g, v)
	}
	if verr := g.vertexChecks.Validate(validation.AddVertex, v); verr != nil {
		return failure.Rejected[failure.VertexAddition](failure.RejectedByGraphValidation, g, "%s", verr.Error())
	}
	if !v.permits(policy.AddToGraph, g) {
		return failure.Rejected[failure.VertexAddition](failure.RejectedByVertexPolicy, v,
			"vertex %s does not permit joining graph %s", v, g)
	}
	if verr := v.checkMembership(validation.AddToGraph, g); verr != nil {
		return failure.Rejected[failure.VertexAddition](failure.RejectedByVertexValidation, v, "%s", verr.Error())
	}
	return nil
}

func (g *Graph[T]) insertLocked(b *batch, v *Vertex[T]) {
	if !g.core.AddVertex(v) {
		failure.Invariant("appgraph.AddVertex", "vertex %s was admitted but is already stored", v)
	}
	v.graph.Store(g)
	g.addedVertexTasks(b, v)
}

// AddVertex inserts v and notifies the graph and v.
func (g *Graph[T]) AddVertex(ctx context.Context, v *Vertex[T]) *failure.Failure[failure.VertexAddition] {
	return mutate(ctx, g, "AddVertex", []attribute.KeyValue{vertexAttr("vertex", v)},
		func(b *batch) *failure.Failure[failure.VertexAddition] {
			if f := g.shouldAddVertexLocked(v); f != nil {
				return f
			}
			g.insertLocked(b, v)
			return nil
		})
}

// ShouldRemoveVertex reports whether RemoveVertex(v) would succeed.
func (g *Graph[T]) ShouldRemoveVertex(v *Vertex[T]) *failure.Failure[failure.VertexRemoval] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldRemoveVertexLocked(v)
}

func (g *Graph[T]) shouldRemoveVertexLocked(v *Vertex[T]) *failure.Failure[failure.VertexRemoval] {
	if !g.core.ContainsVertex(v) {
		return failure.New[failure.VertexRemoval](failure.VertexNotPresent, "vertex %s is not in graph %s", v, g)
	}
	if !g.policies.Permits(policy.RemoveVertex, v, g.AcceptUnset()) {
		return failure.Rejected[failure.VertexRemoval](failure.RejectedByGraphPolicy, g,
			"graph %s does not permit removing vertex %s", g, v)
	}
	if verr := g.vertexChecks.Validate(validation.RemoveVertex, v); verr != nil {
		return failure.Rejected[failure.VertexRemoval](failure.RejectedByGraphValidation, g, "%s", verr.Error())
	}
	if !v.permits(policy.RemoveFromGraph, g) {
		return failure.Rejected[failure.VertexRemoval](failure.RejectedByVertexPolicy, v,
			"vertex %s does not permit leaving graph %s", v, g)
	}
	if verr := v.checkMembership(validation.RemoveFromGraph, g); verr != nil {
		return failure.Rejected[failure.VertexRemoval](failure.RejectedByVertexValidation, v, "%s", verr.Error())
	}

	edges := g.incidentEdgesLocked(v)
	results := make([]*failure.Failure[failure.EdgeRemoval], len(edges))
	var eg errgroup.Group
	for i, e := range edges {
		eg.Go(func() error {
			results[i] = g.shouldRemoveEdgeLocked(e.Source, e.Target)
			return nil
		})
	}
	_ = eg.Wait()

	for i, f := range results {
		if f == nil {
			continue
		}
		if f.Kind == failure.VertexNotPresent || f.Kind == failure.EdgeNotPresent {
			failure.Invariant("appgraph.RemoveVertex", "incident edge %s of %s is inconsistent: %s", edges[i], v, f)
		}
		return failure.Into[failure.VertexRemoval](f)
	}
	return nil
}

// incidentEdgesLocked lists the incoming edges of v followed by its outgoing
// edges.
func (g *Graph[T]) incidentEdgesLocked(v *Vertex[T]) []dag.Edge[*Vertex[T]] {
	in, err := g.core.IncomingEdges(v)
	if err != nil {
		failure.Invariant("appgraph.incidentEdges", "%v", err)
	}
	out, err := g.core.OutgoingEdges(v)
	if err != nil {
		failure.Invariant("appgraph.incidentEdges", "%v", err)
	}
	return append(in, out...)
}

func (g *Graph[T]) deleteLocked(b *batch, v *Vertex[T]) {
	edges := g.incidentEdgesLocked(v)
	if !g.core.RemoveVertex(v) {
		failure.Invariant("appgraph.RemoveVertex", "vertex %s was approved for removal but is not stored", v)
	}
	v.graph.CompareAndSwap(g, nil)
	for _, e := range edges {
		g.removedEdgeTasks(b, e)
	}
	g.removedVertexTasks(b, v)

	// Gated notifications are resolved above; only then drop the entries
	// that mention v.
	g.policies.Forget(v)
	for _, e := range edges {
		other := e.Source
		if other == v {
			other = e.Target
		}
		other.Policies().Forget(v)
	}
}

// RemoveVertex removes v together with its incident edges.
func (g *Graph[T]) RemoveVertex(ctx context.Context, v *Vertex[T]) *failure.Failure[failure.VertexRemoval] {
	return mutate(ctx, g, "RemoveVertex", []attribute.KeyValue{vertexAttr("vertex", v)},
		func(b *batch) *failure.Failure[failure.VertexRemoval] {
			if f := g.shouldRemoveVertexLocked(v); f != nil {
				return f
			}
			g.deleteLocked(b, v)
			return nil
		})
}

// RemoveUnconnectedVertex removes v only if it has no incident edges. It
// reports whether v was removed; a connected vertex is left in place without
// a failure.
func (g *Graph[T]) RemoveUnconnectedVertex(ctx context.Context, v *Vertex[T]) (bool, *failure.Failure[failure.VertexRemoval]) {
	removed := false
	f := mutate(ctx, g, "RemoveUnconnectedVertex", []attribute.KeyValue{vertexAttr("vertex", v)},
		func(b *batch) *failure.Failure[failure.VertexRemoval] {
			if deg, err := g.core.Degree(v); err == nil && deg > 0 {
				return nil
			}
			if f := g.shouldRemoveVertexLocked(v); f != nil {
				return f
			}
			g.deleteLocked(b, v)
			removed = true
			return nil
		})
	return removed, f
}
