package appgraph

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridgraph/internal/dag"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
)

// Endpoints is the argument of edge validations.
type Endpoints[T any] struct {
	Source *Vertex[T]
	Target *Vertex[T]
}

// Graph is a policy-governed DAG of vertices carrying values of type T.
type Graph[T any] struct {
	id          uuid.UUID
	name        string
	policyType  policy.Type
	acceptUnset atomic.Bool

	core         *dag.Graph[*Vertex[T]]
	policies     *policy.Registry
	vertexChecks *validation.Registry[*Vertex[T]]
	edgeChecks   *validation.Registry[Endpoints[T]]

	vertexCallbacks callbackTable[VertexCallback[T]]
	edgeCallbacks   callbackTable[EdgeCallback[T]]

	// writer serializes mutations: checks and the raw change happen while it
	// is held, callbacks run after it is released.
	writer sync.Mutex
}

// GraphOption configures a Graph.
type GraphOption func(*graphOptions)

type graphOptions struct {
	name        string
	policyType  policy.Type
	acceptUnset bool
	algorithm   policy.Algorithm
	hierarchy   *policy.Hierarchy
}

// WithGraphName sets the graph name.
func WithGraphName(name string) GraphOption {
	return func(o *graphOptions) { o.name = name }
}

// WithGraphType declares the policy type of the graph, used when vertices
// key their membership policies by graph type.
func WithGraphType(t policy.Type) GraphOption {
	return func(o *graphOptions) { o.policyType = t }
}

// WithGraphAcceptUnset makes unset graph-scoped policies permit their operation.
func WithGraphAcceptUnset(accept bool) GraphOption {
	return func(o *graphOptions) { o.acceptUnset = accept }
}

// WithAlgorithm sets the resolution algorithm of the graph's policies.
func WithAlgorithm(a policy.Algorithm) GraphOption {
	return func(o *graphOptions) { o.algorithm = a }
}

// WithHierarchy sets the type hierarchy of the graph's policies and of type
// queries on its vertices.
func WithHierarchy(h *policy.Hierarchy) GraphOption {
	return func(o *graphOptions) { o.hierarchy = h }
}

// New creates an empty graph. Unless configured otherwise, unset policies
// reject every guarded operation.
func New[T any](opts ...GraphOption) *Graph[T] {
	var o graphOptions
	for _, opt := range opts {
		opt(&o)
	}
	g := &Graph[T]{
		id:         uuid.New(),
		name:       o.name,
		policyType: o.policyType,
		core:       dag.New[*Vertex[T]](),
		policies: policy.NewRegistry(policy.GraphScope,
			policy.WithAlgorithm(o.algorithm),
			policy.WithHierarchy(o.hierarchy),
		),
		vertexChecks: validation.NewRegistry[*Vertex[T]](validation.GraphVertexKinds...),
		edgeChecks:   validation.NewRegistry[Endpoints[T]](validation.GraphEdgeKinds...),
	}
	if g.name == "" {
		g.name = g.id.String()
	}
	g.acceptUnset.Store(o.acceptUnset)
	return g
}

func (g *Graph[T]) ID() uuid.UUID { return g.id }

func (g *Graph[T]) Name() string { return g.name }

func (g *Graph[T]) String() string { return g.name }

// PolicyType implements policy.Subject.
func (g *Graph[T]) PolicyType() policy.Type { return g.policyType }

// AcceptUnset reports whether unset graph-scoped policies permit operations.
func (g *Graph[T]) AcceptUnset() bool { return g.acceptUnset.Load() }

// SetAcceptUnset changes the accept-unset default.
func (g *Graph[T]) SetAcceptUnset(accept bool) { g.acceptUnset.Store(accept) }

// Policies returns the graph's policy registry.
func (g *Graph[T]) Policies() *policy.Registry { return g.policies }

// Hierarchy returns the type hierarchy of the graph, which may be nil.
func (g *Graph[T]) Hierarchy() *policy.Hierarchy { return g.policies.Hierarchy() }

// AddVertexCheck registers a predicate for AddVertex or RemoveVertex.
func (g *Graph[T]) AddVertexCheck(kind validation.Kind, p validation.Predicate[*Vertex[T]]) validation.Handle {
	return g.vertexChecks.Add(kind, p)
}

// RemoveVertexCheck unregisters a vertex predicate.
func (g *Graph[T]) RemoveVertexCheck(h validation.Handle) bool {
	return g.vertexChecks.Remove(h)
}

// AddEdgeCheck registers a predicate for CreateEdge or RemoveEdge.
func (g *Graph[T]) AddEdgeCheck(kind validation.Kind, p validation.Predicate[Endpoints[T]]) validation.Handle {
	return g.edgeChecks.Add(kind, p)
}

// RemoveEdgeCheck unregisters an edge predicate.
func (g *Graph[T]) RemoveEdgeCheck(h validation.Handle) bool {
	return g.edgeChecks.Remove(h)
}

// OnVertexAdded registers a callback fired for every added vertex.
func (g *Graph[T]) OnVertexAdded(fn VertexCallback[T]) CallbackHandle {
	return g.vertexCallbacks.add(VertexAdded, fn)
}

// OnVertexRemoved registers a callback fired for every removed vertex.
func (g *Graph[T]) OnVertexRemoved(fn VertexCallback[T]) CallbackHandle {
	return g.vertexCallbacks.add(VertexRemoved, fn)
}

// OnVertexEntered registers a callback gated by the EnterVertex policy.
func (g *Graph[T]) OnVertexEntered(fn VertexCallback[T]) CallbackHandle {
	return g.vertexCallbacks.add(VertexEntered, fn)
}

// OnVertexLeft registers a callback gated by the LeaveVertex policy.
func (g *Graph[T]) OnVertexLeft(fn VertexCallback[T]) CallbackHandle {
	return g.vertexCallbacks.add(VertexLeft, fn)
}

// OnEdgeAdded registers a callback fired for every created edge.
func (g *Graph[T]) OnEdgeAdded(fn EdgeCallback[T]) CallbackHandle {
	return g.edgeCallbacks.add(EdgeAdded, fn)
}

// OnEdgeRemoved registers a callback fired for every removed edge.
func (g *Graph[T]) OnEdgeRemoved(fn EdgeCallback[T]) CallbackHandle {
	return g.edgeCallbacks.add(EdgeRemoved, fn)
}

// OnConnect registers a callback gated by the OnAddEdge policy.
func (g *Graph[T]) OnConnect(fn EdgeCallback[T]) CallbackHandle {
	return g.edgeCallbacks.add(EdgeConnected, fn)
}

// OnDisconnect registers a callback gated by the OnRemoveEdge policy.
func (g *Graph[T]) OnDisconnect(fn EdgeCallback[T]) CallbackHandle {
	return g.edgeCallbacks.add(EdgeDisconnected, fn)
}

// RemoveCallback unregisters a callback registered on the graph.
func (g *Graph[T]) RemoveCallback(h CallbackHandle) bool {
	switch h.event {
	case VertexAdded, VertexRemoved, VertexEntered, VertexLeft:
		return g.vertexCallbacks.remove(h)
	default:
		return g.edgeCallbacks.remove(h)
	}
}

func (g *Graph[T]) vertexTasks(b *batch, event Event, v *Vertex[T]) {
	for _, fn := range g.vertexCallbacks.snapshot(event) {
		b.add(func(ctx context.Context) error { return fn(ctx, g, v) })
	}
}

func (g *Graph[T]) edgeTasks(b *batch, event Event, e dag.Edge[*Vertex[T]]) {
	for _, fn := range g.edgeCallbacks.snapshot(event) {
		b.add(func(ctx context.Context) error { return fn(ctx, g, e) })
	}
}

// addedVertexTasks collects the notifications for v entering g.
func (g *Graph[T]) addedVertexTasks(b *batch, v *Vertex[T]) {
	g.vertexTasks(b, VertexAdded, v)
	if g.policies.Permits(policy.EnterVertex, v, g.AcceptUnset()) {
		g.vertexTasks(b, VertexEntered, v)
	}
	v.membershipTasks(b, g, EnteredGraph, policy.EnterGraph)
}

// removedVertexTasks collects the notifications for v leaving g.
func (g *Graph[T]) removedVertexTasks(b *batch, v *Vertex[T]) {
	g.vertexTasks(b, VertexRemoved, v)
	if g.policies.Permits(policy.LeaveVertex, v, g.AcceptUnset()) {
		g.vertexTasks(b, VertexLeft, v)
	}
	v.membershipTasks(b, g, LeftGraph, policy.LeaveGraph)
}

// addedEdgeTasks collects the notifications for a created edge, on the graph
// and on both endpoints.
func (g *Graph[T]) addedEdgeTasks(b *batch, e dag.Edge[*Vertex[T]]) {
	g.edgeTasks(b, EdgeAdded, e)
	if g.policies.PermitsPair(policy.OnAddEdge, e.Source, e.Target, g.AcceptUnset()) {
		g.edgeTasks(b, EdgeConnected, e)
	}
	e.Source.relationTasks(b, g, ChildConnected, policy.OnConnectChild, e.Target)
	e.Target.relationTasks(b, g, ParentConnected, policy.OnConnectParent, e.Source)
}

// removedEdgeTasks collects the notifications for a removed edge.
func (g *Graph[T]) removedEdgeTasks(b *batch, e dag.Edge[*Vertex[T]]) {
	g.edgeTasks(b, EdgeRemoved, e)
	if g.policies.PermitsPair(policy.OnRemoveEdge, e.Source, e.Target, g.AcceptUnset()) {
		g.edgeTasks(b, EdgeDisconnected, e)
	}
	e.Source.relationTasks(b, g, ChildDisconnected, policy.OnDisconnectChild, e.Target)
	e.Target.relationTasks(b, g, ParentDisconnected, policy.OnDisconnectParent, e.Source)
}
