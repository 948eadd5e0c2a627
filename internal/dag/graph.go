package dag

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"
)

var (
	ErrVertexNotFound = errors.New("vertex not found")
	ErrEdgeExists     = errors.New("edge already exists")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrSelfLoop       = errors.New("self-referential edge not allowed")
	ErrCycle          = errors.New("edge would create a cycle")
)

// DefaultWeight is the weight of edges created without an explicit weight.
const DefaultWeight = 1.0

// Edge is a directed, weighted connection from Source to Target.
type Edge[V comparable] struct {
	Source V
	Target V
	Weight float64
}

func (e Edge[V]) String() string {
	return fmt.Sprintf("%v -> %v (%g)", e.Source, e.Target, e.Weight)
}

type node[V comparable] struct {
	value    V
	order    uint64
	parents  map[V]*Edge[V]
	children map[V]*Edge[V]
}

// Graph is a directed acyclic graph over comparable vertices. It is safe for
// concurrent use.
type Graph[V comparable] struct {
	mutex sync.RWMutex
	nodes map[V]*node[V]
	seq   uint64
	// topology mirrors the vertex and edge sets and rejects cycles.
	topology graph.Graph[V, V]
}

func identity[V comparable](v V) V { return v }

// New creates and returns an initialized, empty Graph.
func New[V comparable]() *Graph[V] {
	return &Graph[V]{
		nodes:    make(map[V]*node[V]),
		topology: graph.New(identity[V], graph.Directed(), graph.PreventCycles()),
	}
}

// AddVertex inserts v. It reports false if v is already present.
func (g *Graph[V]) AddVertex(v V) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[v]; ok {
		return false
	}
	if err := g.topology.AddVertex(v); err != nil {
		panic(fmt.Sprintf("dag: topology out of sync adding %v: %v", v, err))
	}
	g.seq++
	g.nodes[v] = &node[V]{
		value:    v,
		order:    g.seq,
		parents:  make(map[V]*Edge[V]),
		children: make(map[V]*Edge[V]),
	}
	return true
}

// RemoveVertex deletes v together with its incident edges. It reports false if
// v is absent.
func (g *Graph[V]) RemoveVertex(v V) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[v]
	if !ok {
		return false
	}
	for p := range n.parents {
		g.unlinkLocked(p, v)
	}
	for c := range n.children {
		g.unlinkLocked(v, c)
	}
	if err := g.topology.RemoveVertex(v); err != nil {
		panic(fmt.Sprintf("dag: topology out of sync removing %v: %v", v, err))
	}
	delete(g.nodes, v)
	return true
}

// AddEdge creates an edge from source to target with the given weight.
func (g *Graph[V]) AddEdge(source, target V, weight float64) (Edge[V], error) {
	if source == target {
		return Edge[V]{}, fmt.Errorf("%w: %v -> %v", ErrSelfLoop, source, target)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	src, ok := g.nodes[source]
	if !ok {
		return Edge[V]{}, fmt.Errorf("source %w: %v", ErrVertexNotFound, source)
	}
	dst, ok := g.nodes[target]
	if !ok {
		return Edge[V]{}, fmt.Errorf("destination %w: %v", ErrVertexNotFound, target)
	}
	if _, exists := src.children[target]; exists {
		return Edge[V]{}, fmt.Errorf("%w: %v -> %v", ErrEdgeExists, source, target)
	}

	if err := g.topology.AddEdge(source, target); err != nil {
		if errors.Is(err, graph.ErrEdgeCreatesCycle) {
			return Edge[V]{}, fmt.Errorf("%w: %v -> %v", ErrCycle, source, target)
		}
		panic(fmt.Sprintf("dag: topology out of sync linking %v -> %v: %v", source, target, err))
	}

	e := &Edge[V]{Source: source, Target: target, Weight: weight}
	src.children[target] = e
	dst.parents[source] = e
	return *e, nil
}

// RemoveEdge deletes the edge from source to target and returns it. It reports
// false if there is no such edge.
func (g *Graph[V]) RemoveEdge(source, target V) (Edge[V], bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	src, ok := g.nodes[source]
	if !ok {
		return Edge[V]{}, false
	}
	e, ok := src.children[target]
	if !ok {
		return Edge[V]{}, false
	}
	g.unlinkLocked(source, target)
	return *e, true
}

func (g *Graph[V]) unlinkLocked(source, target V) {
	delete(g.nodes[source].children, target)
	delete(g.nodes[target].parents, source)
	if err := g.topology.RemoveEdge(source, target); err != nil {
		panic(fmt.Sprintf("dag: topology out of sync unlinking %v -> %v: %v", source, target, err))
	}
}

// SetEdgeWeight changes the weight of an existing edge.
func (g *Graph[V]) SetEdgeWeight(source, target V, weight float64) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	src, ok := g.nodes[source]
	if !ok {
		return fmt.Errorf("source %w: %v", ErrVertexNotFound, source)
	}
	e, ok := src.children[target]
	if !ok {
		return fmt.Errorf("%w: %v -> %v", ErrEdgeNotFound, source, target)
	}
	e.Weight = weight
	return nil
}

// ContainsVertex reports whether v is in the graph.
func (g *Graph[V]) ContainsVertex(v V) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[v]
	return ok
}

// ContainsEdge reports whether an edge from source to target exists.
func (g *Graph[V]) ContainsEdge(source, target V) bool {
	_, ok := g.Edge(source, target)
	return ok
}

// Edge returns the edge from source to target.
func (g *Graph[V]) Edge(source, target V) (Edge[V], bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	src, ok := g.nodes[source]
	if !ok {
		return Edge[V]{}, false
	}
	e, ok := src.children[target]
	if !ok {
		return Edge[V]{}, false
	}
	return *e, true
}

// Len returns the number of vertices.
func (g *Graph[V]) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Size returns the number of edges.
func (g *Graph[V]) Size() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n := 0
	for _, nd := range g.nodes {
		n += len(nd.children)
	}
	return n
}

// Vertices returns every vertex in insertion order.
func (g *Graph[V]) Vertices() []V {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.orderedLocked(g.allLocked())
}

// Edges returns every edge ordered by source, then target.
func (g *Graph[V]) Edges() []Edge[V] {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var out []Edge[V]
	for _, v := range g.orderedLocked(g.allLocked()) {
		out = append(out, g.edgesLocked(g.nodes[v].children, true)...)
	}
	return out
}

func (g *Graph[V]) allLocked() map[V]struct{} {
	set := make(map[V]struct{}, len(g.nodes))
	for v := range g.nodes {
		set[v] = struct{}{}
	}
	return set
}

func (g *Graph[V]) lookupLocked(v V) (*node[V], error) {
	n, ok := g.nodes[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrVertexNotFound, v)
	}
	return n, nil
}
