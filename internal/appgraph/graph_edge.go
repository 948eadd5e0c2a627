package appgraph

import (
	"context"

	"github.com/specialistvlad/gridgraph/internal/failure"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
	"go.opentelemetry.io/otel/attribute"
)

// ShouldAddEdge reports whether AddEdge(source, target) would succeed.
func (g *Graph[T]) ShouldAddEdge(source, target *Vertex[T]) *failure.Failure[failure.EdgeAddition] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldAddEdgeLocked(source, target)
}

func (g *Graph[T]) shouldAddEdgeLocked(source, target *Vertex[T]) *failure.Failure[failure.EdgeAddition] {
	for _, v := range []*Vertex[T]{source, target} {
		if !g.core.ContainsVertex(v) {
			return failure.New[failure.EdgeAddition](failure.VertexNotPresent, "vertex %s is not in graph %s", v, g)
		}
	}
	if g.core.ContainsEdge(source, target) {
		return failure.New[failure.EdgeAddition](failure.EdgeAlreadyExists, "edge %s -> %s already exists in graph %s", source, target, g)
	}
	if source == target {
		return failure.New[failure.EdgeAddition](failure.GraphCycleDetected, "edge %s -> %s is a self-loop", source, target)
	}
	if reach, _ := g.core.HasPath(target, source); reach {
		return failure.New[failure.EdgeAddition](failure.GraphCycleDetected, "edge %s -> %s would close a cycle in graph %s", source, target, g)
	}
	return g.admitEdgeLocked(source, target)
}

// admitEdgeLocked evaluates the policies and validations guarding a new edge.
// It does not look at the structure of the graph, so it also applies to a
// target that is about to be inserted.
func (g *Graph[T]) admitEdgeLocked(source, target *Vertex[T]) *failure.Failure[failure.EdgeAddition] {
	if !g.policies.PermitsPair(policy.CreateEdge, source, target, g.AcceptUnset()) {
		return failure.Rejected[failure.EdgeAddition](failure.RejectedByGraphPolicy, g,
			"graph %s does not permit edge %s -> %s", g, source, target)
	}
	if verr := g.edgeChecks.Validate(validation.CreateEdge, Endpoints[T]{Source: source, Target: target}); verr != nil {
		return failure.Rejected[failure.EdgeAddition](failure.RejectedByGraphValidation, g, "%s", verr.Error())
	}
	if !source.permits(policy.ConnectChild, target) {
		return failure.Rejected[failure.EdgeAddition](failure.RejectedByVertexPolicy, source,
			"vertex %s does not permit child %s", source, target)
	}
	if !target.permits(policy.ConnectParent, source) {
		return failure.Rejected[failure.EdgeAddition](failure.RejectedByVertexPolicy, target,
			"vertex %s does not permit parent %s", target, source)
	}
	if verr := source.checkRelation(validation.ConnectChild, target); verr != nil {
		return failure.Rejected[failure.EdgeAddition](failure.RejectedByVertexValidation, source, "%s", verr.Error())
	}
	if verr := target.checkRelation(validation.ConnectParent, source); verr != nil {
		return failure.Rejected[failure.EdgeAddition](failure.RejectedByVertexValidation, target, "%s", verr.Error())
	}
	return nil
}

func (g *Graph[T]) linkLocked(b *batch, source, target *Vertex[T], weight float64) {
	e, err := g.core.AddEdge(source, target, weight)
	if err != nil {
		failure.Invariant("appgraph.AddEdge", "edge %s -> %s was admitted but the core refused it: %v", source, target, err)
	}
	g.addedEdgeTasks(b, e)
}

// AddEdge creates an edge from source to target and notifies the graph and
// both endpoints.
func (g *Graph[T]) AddEdge(ctx context.Context, source, target *Vertex[T], weight float64) *failure.Failure[failure.EdgeAddition] {
	return mutate(ctx, g, "AddEdge", edgeAttrs(source, target),
		func(b *batch) *failure.Failure[failure.EdgeAddition] {
			if f := g.shouldAddEdgeLocked(source, target); f != nil {
				return f
			}
			g.linkLocked(b, source, target, weight)
			return nil
		})
}

// ShouldRemoveEdge reports whether RemoveEdge(source, target) would succeed.
func (g *Graph[T]) ShouldRemoveEdge(source, target *Vertex[T]) *failure.Failure[failure.EdgeRemoval] {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.shouldRemoveEdgeLocked(source, target)
}

func (g *Graph[T]) shouldRemoveEdgeLocked(source, target *Vertex[T]) *failure.Failure[failure.EdgeRemoval] {
	for _, v := range []*Vertex[T]{source, target} {
		if !g.core.ContainsVertex(v) {
			return failure.New[failure.EdgeRemoval](failure.VertexNotPresent, "vertex %s is not in graph %s", v, g)
		}
	}
	if !g.core.ContainsEdge(source, target) {
		return failure.New[failure.EdgeRemoval](failure.EdgeNotPresent, "edge %s -> %s is not in graph %s", source, target, g)
	}
	if !g.policies.PermitsPair(policy.RemoveEdge, source, target, g.AcceptUnset()) {
		return failure.Rejected[failure.EdgeRemoval](failure.RejectedByGraphPolicy, g,
			"graph %s does not permit removing edge %s -> %s", g, source, target)
	}
	if verr := g.edgeChecks.Validate(validation.RemoveEdge, Endpoints[T]{Source: source, Target: target}); verr != nil {
		return failure.Rejected[failure.EdgeRemoval](failure.RejectedByGraphValidation, g, "%s", verr.Error())
	}
	if !source.permits(policy.DisconnectChild, target) {
		return failure.Rejected[failure.EdgeRemoval](failure.RejectedByVertexPolicy, source,
			"vertex %s does not permit disconnecting child %s", source, target)
	}
	if !target.permits(policy.DisconnectParent, source) {
		return failure.Rejected[failure.EdgeRemoval](failure.RejectedByVertexPolicy, target,
			"vertex %s does not permit disconnecting parent %s", target, source)
	}
	if verr := source.checkRelation(validation.DisconnectChild, target); verr != nil {
		return failure.Rejected[failure.EdgeRemoval](failure.RejectedByVertexValidation, source, "%s", verr.Error())
	}
	if verr := target.checkRelation(validation.DisconnectParent, source); verr != nil {
		return failure.Rejected[failure.EdgeRemoval](failure.RejectedByVertexValidation, target, "%s", verr.Error())
	}
	return nil
}

func (g *Graph[T]) unlinkLocked(b *batch, source, target *Vertex[T]) {
	e, ok := g.core.RemoveEdge(source, target)
	if !ok {
		failure.Invariant("appgraph.RemoveEdge", "edge %s -> %s was approved for removal but is not stored", source, target)
	}
	g.removedEdgeTasks(b, e)
}

// RemoveEdge removes the edge from source to target and notifies the graph
// and both endpoints.
func (g *Graph[T]) RemoveEdge(ctx context.Context, source, target *Vertex[T]) *failure.Failure[failure.EdgeRemoval] {
	return mutate(ctx, g, "RemoveEdge", edgeAttrs(source, target),
		func(b *batch) *failure.Failure[failure.EdgeRemoval] {
			if f := g.shouldRemoveEdgeLocked(source, target); f != nil {
				return f
			}
			g.unlinkLocked(b, source, target)
			return nil
		})
}

func edgeAttrs[T any](source, target *Vertex[T]) []attribute.KeyValue {
	return []attribute.KeyValue{vertexAttr("source", source), vertexAttr("target", target)}
}

// SetEdgeWeight changes the weight of an existing edge. It is not guarded by
// policies and fires no callbacks.
func (g *Graph[T]) SetEdgeWeight(source, target *Vertex[T], weight float64) error {
	g.writer.Lock()
	defer g.writer.Unlock()
	return g.core.SetEdgeWeight(source, target, weight)
}
