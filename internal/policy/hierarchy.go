package policy

import (
	"fmt"
	"sort"
	"sync"
)

// Type is a declared element type used for type-keyed policies.
type Type string

// Any is the implicit supertype of every type.
const Any Type = "any"

// Subject is implemented by elements that declare their policy type.
type Subject interface {
	PolicyType() Type
}

// TypeOf returns the policy type of x. Values that are not a Subject are
// typed by their Go type name.
func TypeOf(x any) Type {
	if s, ok := x.(Subject); ok {
		if t := s.PolicyType(); t != "" {
			return t
		}
	}
	return Type(fmt.Sprintf("%T", x))
}

// Hierarchy is a lattice of declared types with a pre-computed table of
// inheritance distances.
type Hierarchy struct {
	mu     sync.RWMutex
	supers map[Type][]Type
	// dist[t][s] is the length of the shortest supertype chain from t to s.
	dist map[Type]map[Type]int
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		supers: make(map[Type][]Type),
		dist:   make(map[Type]map[Type]int),
	}
}

// Declare records t as a subtype of each supertype. Declaring a relation that
// would make a type its own ancestor is an error and leaves the hierarchy
// unchanged.
func (h *Hierarchy) Declare(t Type, supertypes ...Type) error {
	if t == "" || t == Any {
		return fmt.Errorf("cannot declare reserved type %q", t)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range supertypes {
		if s == t {
			return fmt.Errorf("type %q cannot extend itself", t)
		}
		if _, ok := h.dist[s][t]; ok {
			return fmt.Errorf("type %q cannot extend %q: %q already extends %q", t, s, s, t)
		}
	}

	existing := h.supers[t]
	for _, s := range supertypes {
		if s == Any || containsType(existing, s) {
			continue
		}
		existing = append(existing, s)
		if _, ok := h.supers[s]; !ok {
			h.supers[s] = nil
		}
	}
	h.supers[t] = existing
	h.rebuild()
	return nil
}

func containsType(ts []Type, t Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// rebuild recomputes the distance table with one breadth-first walk per type.
func (h *Hierarchy) rebuild() {
	dist := make(map[Type]map[Type]int, len(h.supers))
	for t := range h.supers {
		row := map[Type]int{t: 0}
		queue := []Type{t}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, s := range h.supers[cur] {
				if _, seen := row[s]; seen {
					continue
				}
				row[s] = row[cur] + 1
				queue = append(queue, s)
			}
		}
		depth := 0
		for _, d := range row {
			depth = max(depth, d)
		}
		row[Any] = depth + 1
		dist[t] = row
	}
	h.dist = dist
}

// Distance returns the length of the shortest supertype chain from t to
// super, and false if t is not a subtype of super.
func (h *Hierarchy) Distance(t, super Type) (int, bool) {
	if t == super {
		return 0, true
	}
	if h == nil {
		if super == Any {
			return 1, true
		}
		return 0, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	row, ok := h.dist[t]
	if !ok {
		if super == Any {
			return 1, true
		}
		return 0, false
	}
	d, ok := row[super]
	return d, ok
}

// IsA reports whether t is super or one of its subtypes.
func (h *Hierarchy) IsA(t, super Type) bool {
	_, ok := h.Distance(t, super)
	return ok
}

// MostSpecific picks, among candidates that t is assignable to, the one with
// the smallest distance from t. Ties go to the candidate that is a subtype of
// the other, then to the lexicographically smaller name.
func (h *Hierarchy) MostSpecific(t Type, candidates []Type) (Type, bool) {
	var (
		best     Type
		bestDist int
		found    bool
	)
	for _, c := range candidates {
		d, ok := h.Distance(t, c)
		if !ok {
			continue
		}
		if !found || d < bestDist || (d == bestDist && h.moreSpecific(c, best)) {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func (h *Hierarchy) moreSpecific(a, b Type) bool {
	switch {
	case h.IsA(a, b):
		return true
	case h.IsA(b, a):
		return false
	default:
		return a < b
	}
}

// Supertypes returns the direct supertypes of t.
func (h *Hierarchy) Supertypes(t Type) []Type {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Type(nil), h.supers[t]...)
}

// Types returns every declared type sorted by name.
func (h *Hierarchy) Types() []Type {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Type, 0, len(h.supers))
	for t := range h.supers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
