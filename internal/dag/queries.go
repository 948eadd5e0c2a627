package dag

import "sort"

func (g *Graph[V]) orderedLocked(set map[V]struct{}) []V {
	out := make([]V, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.nodes[out[i]].order < g.nodes[out[j]].order
	})
	return out
}

func (g *Graph[V]) keysLocked(m map[V]*Edge[V]) []V {
	set := make(map[V]struct{}, len(m))
	for v := range m {
		set[v] = struct{}{}
	}
	return g.orderedLocked(set)
}

// edgesLocked returns the edges of m ordered by their far endpoint. byTarget
// selects which endpoint is the far one.
func (g *Graph[V]) edgesLocked(m map[V]*Edge[V], byTarget bool) []Edge[V] {
	out := make([]Edge[V], 0, len(m))
	for _, e := range m {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Source, out[j].Source
		if byTarget {
			a, b = out[i].Target, out[j].Target
		}
		return g.nodes[a].order < g.nodes[b].order
	})
	return out
}

// Parents returns the direct predecessors of v.
func (g *Graph[V]) Parents(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	return g.keysLocked(n.parents), nil
}

// Children returns the direct successors of v.
func (g *Graph[V]) Children(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	return g.keysLocked(n.children), nil
}

// Neighbors returns the parents and children of v.
func (g *Graph[V]) Neighbors(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	set := make(map[V]struct{}, len(n.parents)+len(n.children))
	for p := range n.parents {
		set[p] = struct{}{}
	}
	for c := range n.children {
		set[c] = struct{}{}
	}
	return g.orderedLocked(set), nil
}

// IncomingEdges returns the edges ending at v.
func (g *Graph[V]) IncomingEdges(v V) ([]Edge[V], error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	return g.edgesLocked(n.parents, false), nil
}

// OutgoingEdges returns the edges starting at v.
func (g *Graph[V]) OutgoingEdges(v V) ([]Edge[V], error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	return g.edgesLocked(n.children, true), nil
}

// InDegree returns the number of parents of v.
func (g *Graph[V]) InDegree(v V) (int, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return 0, err
	}
	return len(n.parents), nil
}

// OutDegree returns the number of children of v.
func (g *Graph[V]) OutDegree(v V) (int, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return 0, err
	}
	return len(n.children), nil
}

// Degree returns the number of edges incident to v.
func (g *Graph[V]) Degree(v V) (int, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return 0, err
	}
	return len(n.parents) + len(n.children), nil
}

// closureLocked walks from v along parents (up) or children (down) and
// returns every vertex reached, excluding v.
func (g *Graph[V]) closureLocked(v V, up bool) map[V]struct{} {
	seen := make(map[V]struct{})
	stack := []V{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		next := g.nodes[cur].children
		if up {
			next = g.nodes[cur].parents
		}
		for w := range next {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			stack = append(stack, w)
		}
	}
	return seen
}

// Ancestors returns every vertex from which v is reachable.
func (g *Graph[V]) Ancestors(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(v); err != nil {
		return nil, err
	}
	return g.orderedLocked(g.closureLocked(v, true)), nil
}

// Descendants returns every vertex reachable from v.
func (g *Graph[V]) Descendants(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(v); err != nil {
		return nil, err
	}
	return g.orderedLocked(g.closureLocked(v, false)), nil
}

// HasPath reports whether target is reachable from source. A vertex always
// reaches itself.
func (g *Graph[V]) HasPath(source, target V) (bool, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(source); err != nil {
		return false, err
	}
	if _, err := g.lookupLocked(target); err != nil {
		return false, err
	}
	if source == target {
		return true, nil
	}
	_, ok := g.closureLocked(source, false)[target]
	return ok, nil
}

// Roots returns the vertices without parents.
func (g *Graph[V]) Roots() []V {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	set := make(map[V]struct{})
	for v, n := range g.nodes {
		if len(n.parents) == 0 {
			set[v] = struct{}{}
		}
	}
	return g.orderedLocked(set)
}

// Sinks returns the vertices without children.
func (g *Graph[V]) Sinks() []V {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	set := make(map[V]struct{})
	for v, n := range g.nodes {
		if len(n.children) == 0 {
			set[v] = struct{}{}
		}
	}
	return g.orderedLocked(set)
}

// SourcesOf returns the roots from which v is reachable, including v itself
// when it has no parents.
func (g *Graph[V]) SourcesOf(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(v); err != nil {
		return nil, err
	}
	set := g.closureLocked(v, true)
	set[v] = struct{}{}
	for w := range set {
		if len(g.nodes[w].parents) > 0 {
			delete(set, w)
		}
	}
	return g.orderedLocked(set), nil
}

// SinksOf returns the sinks reachable from v, including v itself when it has
// no children.
func (g *Graph[V]) SinksOf(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if _, err := g.lookupLocked(v); err != nil {
		return nil, err
	}
	set := g.closureLocked(v, false)
	set[v] = struct{}{}
	for w := range set {
		if len(g.nodes[w].children) > 0 {
			delete(set, w)
		}
	}
	return g.orderedLocked(set), nil
}

// Siblings returns the vertices sharing at least one parent with v.
func (g *Graph[V]) Siblings(v V) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	return g.orderedLocked(g.siblingsLocked(n)), nil
}

func (g *Graph[V]) siblingsLocked(n *node[V]) map[V]struct{} {
	set := make(map[V]struct{})
	for p := range n.parents {
		for c := range g.nodes[p].children {
			if c != n.value {
				set[c] = struct{}{}
			}
		}
	}
	return set
}

// FullSiblings returns the siblings of v that have exactly the same parents.
func (g *Graph[V]) FullSiblings(v V) ([]V, error) {
	return g.filterSiblings(v, true)
}

// HalfSiblings returns the siblings of v whose parent set differs from v's.
func (g *Graph[V]) HalfSiblings(v V) ([]V, error) {
	return g.filterSiblings(v, false)
}

func (g *Graph[V]) filterSiblings(v V, full bool) ([]V, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, err := g.lookupLocked(v)
	if err != nil {
		return nil, err
	}
	set := g.siblingsLocked(n)
	for s := range set {
		if sameKeys(n.parents, g.nodes[s].parents) != full {
			delete(set, s)
		}
	}
	return g.orderedLocked(set), nil
}

func sameKeys[V comparable](a, b map[V]*Edge[V]) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
