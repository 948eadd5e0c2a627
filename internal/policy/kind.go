package policy

import "fmt"

// Scope tells which element owns a policy kind.
type Scope uint8

const (
	GraphScope Scope = iota + 1
	VertexScope
)

func (s Scope) String() string {
	switch s {
	case GraphScope:
		return "graph"
	case VertexScope:
		return "vertex"
	}
	return fmt.Sprintf("Scope(%d)", uint8(s))
}

// Arity is the number of subjects a policy kind is keyed by.
type Arity uint8

const (
	Nullary Arity = iota
	Unary
	Binary
)

// Kind names one policy.
type Kind uint8

const (
	// Graph scope.
	QueryVertices Kind = iota + 1
	QueryEdges
	AddVertex
	RemoveVertex
	EnterVertex
	LeaveVertex
	CreateEdge
	RemoveEdge
	OnAddEdge
	OnRemoveEdge

	// Vertex scope. Child and parent kinds are keyed by the other vertex,
	// graph kinds by the graph.
	QueryChildren
	QueryParents
	QueryGraph
	ConnectChild
	ConnectParent
	DisconnectChild
	DisconnectParent
	OnConnectChild
	OnConnectParent
	OnDisconnectChild
	OnDisconnectParent
	AddToGraph
	RemoveFromGraph
	EnterGraph
	LeaveGraph

	kindCount
)

type kindInfo struct {
	name  string
	scope Scope
	arity Arity
}

var kinds = [kindCount]kindInfo{
	QueryVertices:      {"query_vertices", GraphScope, Nullary},
	QueryEdges:         {"query_edges", GraphScope, Nullary},
	AddVertex:          {"add_vertex", GraphScope, Unary},
	RemoveVertex:       {"remove_vertex", GraphScope, Unary},
	EnterVertex:        {"enter_vertex", GraphScope, Unary},
	LeaveVertex:        {"leave_vertex", GraphScope, Unary},
	CreateEdge:         {"create_edge", GraphScope, Binary},
	RemoveEdge:         {"remove_edge", GraphScope, Binary},
	OnAddEdge:          {"on_add_edge", GraphScope, Binary},
	OnRemoveEdge:       {"on_remove_edge", GraphScope, Binary},
	QueryChildren:      {"query_children", VertexScope, Nullary},
	QueryParents:       {"query_parents", VertexScope, Nullary},
	QueryGraph:         {"query_graph", VertexScope, Nullary},
	ConnectChild:       {"connect_child", VertexScope, Unary},
	ConnectParent:      {"connect_parent", VertexScope, Unary},
	DisconnectChild:    {"disconnect_child", VertexScope, Unary},
	DisconnectParent:   {"disconnect_parent", VertexScope, Unary},
	OnConnectChild:     {"on_connect_child", VertexScope, Unary},
	OnConnectParent:    {"on_connect_parent", VertexScope, Unary},
	OnDisconnectChild:  {"on_disconnect_child", VertexScope, Unary},
	OnDisconnectParent: {"on_disconnect_parent", VertexScope, Unary},
	AddToGraph:         {"add_to_graph", VertexScope, Unary},
	RemoveFromGraph:    {"remove_from_graph", VertexScope, Unary},
	EnterGraph:         {"enter_graph", VertexScope, Unary},
	LeaveGraph:         {"leave_graph", VertexScope, Unary},
}

func (k Kind) valid() bool {
	return k > 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kinds[k].name
}

// Scope returns the element type that owns the kind.
func (k Kind) Scope() Scope {
	if !k.valid() {
		return 0
	}
	return kinds[k].scope
}

// Arity returns the number of subjects the kind is keyed by.
func (k Kind) Arity() Arity {
	if !k.valid() {
		return Nullary
	}
	return kinds[k].arity
}

// ParseKind resolves a snake_case policy name within scope.
func ParseKind(scope Scope, name string) (Kind, error) {
	for k := QueryVertices; k < kindCount; k++ {
		if kinds[k].scope == scope && kinds[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown %s policy %q", scope, name)
}

// Kinds returns every kind of the given scope in declaration order.
func Kinds(scope Scope) []Kind {
	var out []Kind
	for k := QueryVertices; k < kindCount; k++ {
		if kinds[k].scope == scope {
			out = append(out, k)
		}
	}
	return out
}
