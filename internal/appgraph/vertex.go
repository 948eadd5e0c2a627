package appgraph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
)

// Vertex is an identity-bearing node carrying a value of type T. It holds no
// relational state; parents and children are derived from the edges of the
// graph it belongs to.
type Vertex[T any] struct {
	id          uuid.UUID
	name        string
	value       T
	policyType  policy.Type
	acceptUnset atomic.Bool

	hierarchy *policy.Hierarchy
	algorithm policy.Algorithm

	// graph is the graph the vertex currently belongs to, if any.
	graph atomic.Pointer[Graph[T]]

	once       sync.Once
	policies   *policy.Registry
	relations  *validation.Registry[*Vertex[T]]
	membership *validation.Registry[*Graph[T]]
	callbacks  *vertexCallbacks[T]
}

type vertexCallbacks[T any] struct {
	relation   callbackTable[RelationCallback[T]]
	membership callbackTable[MembershipCallback[T]]
}

// VertexOption configures a Vertex.
type VertexOption func(*vertexOptions)

type vertexOptions struct {
	name        string
	policyType  policy.Type
	acceptUnset bool
	hierarchy   *policy.Hierarchy
	algorithm   policy.Algorithm
}

// WithName sets a human readable name used in logs and messages.
func WithName(name string) VertexOption {
	return func(o *vertexOptions) { o.name = name }
}

// WithType declares the policy type of the vertex.
func WithType(t policy.Type) VertexOption {
	return func(o *vertexOptions) { o.policyType = t }
}

// WithAcceptUnset makes unset vertex-scoped policies permit their operation.
func WithAcceptUnset(accept bool) VertexOption {
	return func(o *vertexOptions) { o.acceptUnset = accept }
}

// WithVertexHierarchy sets the type hierarchy used by the vertex's policies.
func WithVertexHierarchy(h *policy.Hierarchy) VertexOption {
	return func(o *vertexOptions) { o.hierarchy = h }
}

// WithVertexAlgorithm sets the resolution algorithm of the vertex's policies.
func WithVertexAlgorithm(a policy.Algorithm) VertexOption {
	return func(o *vertexOptions) { o.algorithm = a }
}

// NewVertex creates a vertex that belongs to no graph.
func NewVertex[T any](value T, opts ...VertexOption) *Vertex[T] {
	var o vertexOptions
	for _, opt := range opts {
		opt(&o)
	}
	v := &Vertex[T]{
		id:         uuid.New(),
		name:       o.name,
		value:      value,
		policyType: o.policyType,
		hierarchy:  o.hierarchy,
		algorithm:  o.algorithm,
	}
	if v.name == "" {
		v.name = v.id.String()
	}
	v.acceptUnset.Store(o.acceptUnset)
	return v
}

func (v *Vertex[T]) init() {
	v.once.Do(func() {
		v.policies = policy.NewRegistry(policy.VertexScope,
			policy.WithHierarchy(v.hierarchy),
			policy.WithAlgorithm(v.algorithm),
		)
		v.relations = validation.NewRegistry[*Vertex[T]](validation.RelationKinds...)
		v.membership = validation.NewRegistry[*Graph[T]](validation.MembershipKinds...)
		v.callbacks = &vertexCallbacks[T]{}
	})
}

// ID returns the stable identity of the vertex.
func (v *Vertex[T]) ID() uuid.UUID { return v.id }

// Name returns the vertex name.
func (v *Vertex[T]) Name() string { return v.name }

// Value returns the value carried by the vertex.
func (v *Vertex[T]) Value() T { return v.value }

// PolicyType implements policy.Subject.
func (v *Vertex[T]) PolicyType() policy.Type { return v.policyType }

func (v *Vertex[T]) String() string {
	if v.policyType == "" {
		return v.name
	}
	return fmt.Sprintf("%s(%s)", v.name, v.policyType)
}

// AcceptUnset reports whether unset vertex-scoped policies permit operations.
func (v *Vertex[T]) AcceptUnset() bool { return v.acceptUnset.Load() }

// SetAcceptUnset changes the accept-unset default.
func (v *Vertex[T]) SetAcceptUnset(accept bool) { v.acceptUnset.Store(accept) }

// Policies returns the vertex's policy registry, creating it on first use.
func (v *Vertex[T]) Policies() *policy.Registry {
	v.init()
	return v.policies
}

// AddRelationCheck registers a predicate for connect or disconnect of a child
// or parent. The predicate receives the other vertex.
func (v *Vertex[T]) AddRelationCheck(kind validation.Kind, p validation.Predicate[*Vertex[T]]) validation.Handle {
	v.init()
	return v.relations.Add(kind, p)
}

// RemoveRelationCheck unregisters a relation predicate.
func (v *Vertex[T]) RemoveRelationCheck(h validation.Handle) bool {
	v.init()
	return v.relations.Remove(h)
}

// AddMembershipCheck registers a predicate for AddToGraph or RemoveFromGraph.
// The predicate receives the graph.
func (v *Vertex[T]) AddMembershipCheck(kind validation.Kind, p validation.Predicate[*Graph[T]]) validation.Handle {
	v.init()
	return v.membership.Add(kind, p)
}

// RemoveMembershipCheck unregisters a membership predicate.
func (v *Vertex[T]) RemoveMembershipCheck(h validation.Handle) bool {
	v.init()
	return v.membership.Remove(h)
}

func (v *Vertex[T]) OnConnectChild(fn RelationCallback[T]) CallbackHandle {
	v.init()
	return v.callbacks.relation.add(ChildConnected, fn)
}

func (v *Vertex[T]) OnConnectParent(fn RelationCallback[T]) CallbackHandle {
	v.init()
	return v.callbacks.relation.add(ParentConnected, fn)
}

func (v *Vertex[T]) OnDisconnectChild(fn RelationCallback[T]) CallbackHandle {
	v.init()
	return v.callbacks.relation.add(ChildDisconnected, fn)
}

func (v *Vertex[T]) OnDisconnectParent(fn RelationCallback[T]) CallbackHandle {
	v.init()
	return v.callbacks.relation.add(ParentDisconnected, fn)
}

func (v *Vertex[T]) OnEnterGraph(fn MembershipCallback[T]) CallbackHandle {
	v.init()
	return v.callbacks.membership.add(EnteredGraph, fn)
}

func (v *Vertex[T]) OnLeaveGraph(fn MembershipCallback[T]) CallbackHandle {
	v.init()
	return v.callbacks.membership.add(LeftGraph, fn)
}

// RemoveCallback unregisters a callback registered on the vertex.
func (v *Vertex[T]) RemoveCallback(h CallbackHandle) bool {
	v.init()
	switch h.event {
	case EnteredGraph, LeftGraph:
		return v.callbacks.membership.remove(h)
	default:
		return v.callbacks.relation.remove(h)
	}
}

// Graph returns the graph the vertex belongs to. It returns nil when the
// vertex is in no graph or its QueryGraph policy rejects the query.
func (v *Vertex[T]) Graph() *Graph[T] {
	if v.Policies().NullaryState(policy.QueryGraph) == policy.Reject {
		return nil
	}
	return v.graph.Load()
}

// permits resolves a unary vertex policy against other with the vertex's
// accept-unset default.
func (v *Vertex[T]) permits(kind policy.Kind, other any) bool {
	return v.Policies().Permits(kind, other, v.AcceptUnset())
}

func (v *Vertex[T]) checkRelation(kind validation.Kind, other *Vertex[T]) *validation.Error {
	v.init()
	return v.relations.Validate(kind, other)
}

func (v *Vertex[T]) checkMembership(kind validation.Kind, g *Graph[T]) *validation.Error {
	v.init()
	return v.membership.Validate(kind, g)
}

// relationTasks appends the gated relation callbacks of v for event.
func (v *Vertex[T]) relationTasks(b *batch, g *Graph[T], event Event, gate policy.Kind, other *Vertex[T]) {
	v.init()
	if v.callbacks.relation.len(event) == 0 || !v.permits(gate, other) {
		return
	}
	for _, fn := range v.callbacks.relation.snapshot(event) {
		b.add(func(ctx context.Context) error { return fn(ctx, g, v, other) })
	}
}

// membershipTasks appends the gated membership callbacks of v for event.
func (v *Vertex[T]) membershipTasks(b *batch, g *Graph[T], event Event, gate policy.Kind) {
	v.init()
	if v.callbacks.membership.len(event) == 0 || !v.permits(gate, g) {
		return
	}
	for _, fn := range v.callbacks.membership.snapshot(event) {
		b.add(func(ctx context.Context) error { return fn(ctx, g, v) })
	}
}
