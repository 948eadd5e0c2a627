package dag

import (
	"fmt"
	"math"
	"slices"

	"github.com/dominikbraun/graph"
)

// TopologicalOrder returns every vertex such that each edge points forward.
// Ties are broken by insertion order.
func (g *Graph[V]) TopologicalOrder() ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.topologicalLocked()
}

func (g *Graph[V]) topologicalLocked() ([]V, error) {
	order, err := graph.StableTopologicalSort(g.topology, func(a, b V) bool {
		return g.nodes[a].order < g.nodes[b].order
	})
	if err != nil {
		return nil, fmt.Errorf("topological sort: %w", err)
	}
	return order, nil
}

// PathsBetween returns every simple directed path from source to target, each
// as a vertex sequence starting with source and ending with target.
func (g *Graph[V]) PathsBetween(source, target V) ([][]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(source); err != nil {
		return nil, err
	}
	if _, err := g.lookupLocked(target); err != nil {
		return nil, err
	}
	if source == target {
		return [][]V{{source}}, nil
	}
	if _, ok := g.closureLocked(source, false)[target]; !ok {
		return nil, nil
	}

	paths, err := graph.AllPathsBetween(g.topology, source, target)
	if err != nil {
		return nil, fmt.Errorf("paths between %v and %v: %w", source, target, err)
	}
	slices.SortFunc(paths, func(a, b []V) int {
		for i := 0; i < len(a) && i < len(b); i++ {
			oa, ob := g.nodes[a[i]].order, g.nodes[b[i]].order
			if oa != ob {
				if oa < ob {
					return -1
				}
				return 1
			}
		}
		return len(a) - len(b)
	})
	return paths, nil
}

// ShortestPath returns the edges of the minimum-weight path from source to
// target. The result is empty if target is unreachable or equals source.
func (g *Graph[V]) ShortestPath(source, target V) ([]Edge[V], error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(source); err != nil {
		return nil, err
	}
	if _, err := g.lookupLocked(target); err != nil {
		return nil, err
	}
	if source == target {
		return nil, nil
	}
	reachable := g.closureLocked(source, false)
	if _, ok := reachable[target]; !ok {
		return nil, nil
	}

	order, err := g.topologicalLocked()
	if err != nil {
		return nil, err
	}

	// The graph is acyclic, so relaxing edges in topological order yields
	// shortest distances for any edge weights.
	dist := map[V]float64{source: 0}
	via := make(map[V]*Edge[V])
	for _, v := range order {
		d, ok := dist[v]
		if !ok {
			continue
		}
		for w, e := range g.nodes[v].children {
			if _, ok := reachable[w]; !ok {
				continue
			}
			cur, seen := dist[w]
			if !seen {
				cur = math.Inf(1)
			}
			if nd := d + e.Weight; nd < cur {
				dist[w] = nd
				via[w] = e
			}
		}
	}

	var path []Edge[V]
	for cur := target; cur != source; {
		e := via[cur]
		path = append(path, *e)
		cur = e.Source
	}
	slices.Reverse(path)
	return path, nil
}

// ShortestVertexPath returns the vertices along ShortestPath, including both
// endpoints. It is empty if target is unreachable.
func (g *Graph[V]) ShortestVertexPath(source, target V) ([]V, error) {
	edges, err := g.ShortestPath(source, target)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		if source == target {
			return []V{source}, nil
		}
		return nil, nil
	}
	out := make([]V, 0, len(edges)+1)
	out = append(out, source)
	for _, e := range edges {
		out = append(out, e.Target)
	}
	return out, nil
}

// PathWeight sums the weights of edges.
func PathWeight[V comparable](edges []Edge[V]) float64 {
	var total float64
	for _, e := range edges {
		total += e.Weight
	}
	return total
}
