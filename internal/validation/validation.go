package validation

import (
	"fmt"
	"strings"
	"sync"
)

// Kind names the operation a predicate guards.
type Kind uint8

const (
	AddVertex Kind = iota + 1
	RemoveVertex
	CreateEdge
	RemoveEdge
	ConnectChild
	DisconnectChild
	ConnectParent
	DisconnectParent
	AddToGraph
	RemoveFromGraph

	kindCount
)

var kindNames = [kindCount]string{
	AddVertex:        "add_vertex",
	RemoveVertex:     "remove_vertex",
	CreateEdge:       "create_edge",
	RemoveEdge:       "remove_edge",
	ConnectChild:     "connect_child",
	DisconnectChild:  "disconnect_child",
	ConnectParent:    "connect_parent",
	DisconnectParent: "disconnect_parent",
	AddToGraph:       "add_to_graph",
	RemoveFromGraph:  "remove_from_graph",
}

var (
	// GraphVertexKinds are checked by a graph against a vertex.
	GraphVertexKinds = []Kind{AddVertex, RemoveVertex}
	// GraphEdgeKinds are checked by a graph against an edge.
	GraphEdgeKinds = []Kind{CreateEdge, RemoveEdge}
	// RelationKinds are checked by a vertex against another vertex.
	RelationKinds = []Kind{ConnectChild, DisconnectChild, ConnectParent, DisconnectParent}
	// MembershipKinds are checked by a vertex against a graph.
	MembershipKinds = []Kind{AddToGraph, RemoveFromGraph}
)

func (k Kind) String() string {
	if k == 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind resolves a snake_case operation name.
func ParseKind(name string) (Kind, error) {
	for k := AddVertex; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown validation kind %q", name)
}

// Predicate inspects the argument of an operation without side effects and
// returns a non-nil error describing why the operation must not proceed.
type Predicate[A any] func(A) error

// Handle identifies one registered predicate.
type Handle struct {
	kind Kind
	id   uint64
}

// Error aggregates the messages of every failing predicate.
type Error struct {
	Kind     Kind
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s validation failed:\n\t%s", e.Kind, strings.Join(e.Messages, "\n\t"))
}

type registered[A any] struct {
	id   uint64
	pred Predicate[A]
}

// Registry stores predicates for a fixed set of operation kinds. It is safe
// for concurrent use.
type Registry[A any] struct {
	allowed map[Kind]bool

	mu     sync.RWMutex
	nextID uint64
	preds  map[Kind][]registered[A]
}

// NewRegistry returns a registry that accepts the given kinds only.
func NewRegistry[A any](kinds ...Kind) *Registry[A] {
	allowed := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	return &Registry[A]{
		allowed: allowed,
		preds:   make(map[Kind][]registered[A]),
	}
}

func (r *Registry[A]) check(kind Kind) {
	if !r.allowed[kind] {
		panic(fmt.Sprintf("validation: %s is not supported by this registry", kind))
	}
}

// Add registers p for kind. Predicates run in registration order.
func (r *Registry[A]) Add(kind Kind, p Predicate[A]) Handle {
	r.check(kind)
	if p == nil {
		panic("validation: nil predicate")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.preds[kind] = append(r.preds[kind], registered[A]{id: r.nextID, pred: p})
	return Handle{kind: kind, id: r.nextID}
}

// Remove unregisters the predicate identified by h.
func (r *Registry[A]) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.preds[h.kind]
	for i, reg := range list {
		if reg.id == h.id {
			r.preds[h.kind] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of predicates registered for kind.
func (r *Registry[A]) Len(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.preds[kind])
}

// Validate runs every predicate for kind against arg. It returns nil when all
// pass.
func (r *Registry[A]) Validate(kind Kind, arg A) *Error {
	r.check(kind)
	r.mu.RLock()
	list := append([]registered[A](nil), r.preds[kind]...)
	r.mu.RUnlock()

	var msgs []string
	for _, reg := range list {
		if err := reg.pred(arg); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return &Error{Kind: kind, Messages: msgs}
}
