package policy

import (
	"fmt"
	"sync"
)

// Algorithm selects how object-keyed and type-keyed states combine.
type Algorithm uint8

const (
	// ObjectOrType is the disjunction of the object-keyed and the
	// type-keyed states.
	ObjectOrType Algorithm = iota
	ObjectOnly
	TypeOnly
	// ObjectAndType is the conjunction of both states.
	ObjectAndType
)

func (a Algorithm) String() string {
	switch a {
	case ObjectOrType:
		return "object_or_type"
	case ObjectOnly:
		return "object_only"
	case TypeOnly:
		return "type_only"
	case ObjectAndType:
		return "object_and_type"
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// ParseAlgorithm parses the snake_case algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range []Algorithm{ObjectOrType, ObjectOnly, TypeOnly, ObjectAndType} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown policy algorithm %q", s)
}

func (a Algorithm) combine(object State, typed func() State) State {
	switch a {
	case ObjectOnly:
		return object
	case TypeOnly:
		return typed()
	case ObjectAndType:
		return object.And(typed())
	default:
		return object.Or(typed())
	}
}

type space uint8

const (
	objectSpace space = iota + 1
	typeSpace
	pairSpace
	typePairSpace
)

// Handle identifies one registration. The zero Handle is valid and releases
// nothing.
type Handle struct {
	space space
	kind  Kind
	key   any
	gen   uint64
}

type entry struct {
	state State
	gen   uint64
}

type objectKey struct {
	kind    Kind
	subject any
}

type pairKey struct {
	kind Kind
	a, b any
}

type typePair struct {
	a, b Type
}

// Registry stores the policies of one graph or one vertex. It is safe for
// concurrent use.
type Registry struct {
	scope     Scope
	algorithm Algorithm
	hierarchy *Hierarchy

	mu        sync.RWMutex
	gen       uint64
	nullary   map[Kind]State
	objects   map[objectKey]entry
	types     map[Kind]map[Type]entry
	pairs     map[pairKey]entry
	typePairs map[Kind]map[typePair]entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithAlgorithm sets the default resolution algorithm.
func WithAlgorithm(a Algorithm) Option {
	return func(r *Registry) { r.algorithm = a }
}

// WithHierarchy sets the type hierarchy used for type-keyed resolution.
// Without one, type-keyed states match only the exact type and Any.
func WithHierarchy(h *Hierarchy) Option {
	return func(r *Registry) { r.hierarchy = h }
}

// NewRegistry returns an empty registry accepting kinds of the given scope.
func NewRegistry(scope Scope, opts ...Option) *Registry {
	r := &Registry{
		scope:     scope,
		nullary:   make(map[Kind]State),
		objects:   make(map[objectKey]entry),
		types:     make(map[Kind]map[Type]entry),
		pairs:     make(map[pairKey]entry),
		typePairs: make(map[Kind]map[typePair]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Algorithm returns the default resolution algorithm.
func (r *Registry) Algorithm() Algorithm { return r.algorithm }

// Hierarchy returns the type hierarchy, which may be nil.
func (r *Registry) Hierarchy() *Hierarchy { return r.hierarchy }

func (r *Registry) check(kind Kind, arity Arity) {
	if kind.Scope() != r.scope {
		panic(fmt.Sprintf("policy: %s is not a %s policy", kind, r.scope))
	}
	if kind.Arity() != arity {
		panic(fmt.Sprintf("policy: %s does not take %d subjects", kind, arity))
	}
}

func (r *Registry) next() uint64 {
	r.gen++
	return r.gen
}

// SetNullary sets the state of a policy that has no subject.
func (r *Registry) SetNullary(kind Kind, state State) {
	r.check(kind, Nullary)
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == Unset {
		delete(r.nullary, kind)
		return
	}
	r.nullary[kind] = state
}

// NullaryState returns the state of a policy that has no subject.
func (r *Registry) NullaryState(kind Kind) State {
	r.check(kind, Nullary)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nullary[kind]
}

// Set registers state for kind and a specific subject. Setting Unset removes
// the association and returns the zero Handle.
func (r *Registry) Set(kind Kind, subject any, state State) Handle {
	r.check(kind, Unary)
	key := objectKey{kind: kind, subject: subject}
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == Unset {
		delete(r.objects, key)
		return Handle{}
	}
	e := entry{state: state, gen: r.next()}
	r.objects[key] = e
	return Handle{space: objectSpace, kind: kind, key: key, gen: e.gen}
}

func (r *Registry) Accept(kind Kind, subject any) Handle { return r.Set(kind, subject, Accept) }
func (r *Registry) Reject(kind Kind, subject any) Handle { return r.Set(kind, subject, Reject) }
func (r *Registry) Unset(kind Kind, subject any)         { r.Set(kind, subject, Unset) }

// SetType registers state for kind and every element of type t.
func (r *Registry) SetType(kind Kind, t Type, state State) Handle {
	r.check(kind, Unary)
	r.mu.Lock()
	defer r.mu.Unlock()
	byType := r.types[kind]
	if state == Unset {
		delete(byType, t)
		return Handle{}
	}
	if byType == nil {
		byType = make(map[Type]entry)
		r.types[kind] = byType
	}
	e := entry{state: state, gen: r.next()}
	byType[t] = e
	return Handle{space: typeSpace, kind: kind, key: t, gen: e.gen}
}

func (r *Registry) AcceptType(kind Kind, t Type) Handle { return r.SetType(kind, t, Accept) }
func (r *Registry) RejectType(kind Kind, t Type) Handle { return r.SetType(kind, t, Reject) }
func (r *Registry) UnsetType(kind Kind, t Type)         { r.SetType(kind, t, Unset) }

// SetPair registers state for a binary kind and the ordered pair (a, b).
func (r *Registry) SetPair(kind Kind, a, b any, state State) Handle {
	r.check(kind, Binary)
	key := pairKey{kind: kind, a: a, b: b}
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == Unset {
		delete(r.pairs, key)
		return Handle{}
	}
	e := entry{state: state, gen: r.next()}
	r.pairs[key] = e
	return Handle{space: pairSpace, kind: kind, key: key, gen: e.gen}
}

func (r *Registry) AcceptPair(kind Kind, a, b any) Handle { return r.SetPair(kind, a, b, Accept) }
func (r *Registry) RejectPair(kind Kind, a, b any) Handle { return r.SetPair(kind, a, b, Reject) }
func (r *Registry) UnsetPair(kind Kind, a, b any)         { r.SetPair(kind, a, b, Unset) }

// SetTypePair registers state for a binary kind and every pair whose elements
// are of types ta and tb.
func (r *Registry) SetTypePair(kind Kind, ta, tb Type, state State) Handle {
	r.check(kind, Binary)
	key := typePair{a: ta, b: tb}
	r.mu.Lock()
	defer r.mu.Unlock()
	byPair := r.typePairs[kind]
	if state == Unset {
		delete(byPair, key)
		return Handle{}
	}
	if byPair == nil {
		byPair = make(map[typePair]entry)
		r.typePairs[kind] = byPair
	}
	e := entry{state: state, gen: r.next()}
	byPair[key] = e
	return Handle{space: typePairSpace, kind: kind, key: key, gen: e.gen}
}

func (r *Registry) AcceptTypePair(kind Kind, ta, tb Type) Handle {
	return r.SetTypePair(kind, ta, tb, Accept)
}

func (r *Registry) RejectTypePair(kind Kind, ta, tb Type) Handle {
	return r.SetTypePair(kind, ta, tb, Reject)
}

// Release removes the registration identified by h. It reports false if the
// association was overwritten or removed since h was issued.
func (r *Registry) Release(h Handle) bool {
	if h.space == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch h.space {
	case objectSpace:
		key := h.key.(objectKey)
		if e, ok := r.objects[key]; ok && e.gen == h.gen {
			delete(r.objects, key)
			return true
		}
	case typeSpace:
		t := h.key.(Type)
		if e, ok := r.types[h.kind][t]; ok && e.gen == h.gen {
			delete(r.types[h.kind], t)
			return true
		}
	case pairSpace:
		key := h.key.(pairKey)
		if e, ok := r.pairs[key]; ok && e.gen == h.gen {
			delete(r.pairs, key)
			return true
		}
	case typePairSpace:
		key := h.key.(typePair)
		if e, ok := r.typePairs[h.kind][key]; ok && e.gen == h.gen {
			delete(r.typePairs[h.kind], key)
			return true
		}
	}
	return false
}

// Forget drops every object-keyed and pair-keyed association that mentions
// subject and returns how many were removed.
func (r *Registry) Forget(subject any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key := range r.objects {
		if key.subject == subject {
			delete(r.objects, key)
			n++
		}
	}
	for key := range r.pairs {
		if key.a == subject || key.b == subject {
			delete(r.pairs, key)
			n++
		}
	}
	return n
}

// StateOf resolves kind for subject with the registry's default algorithm.
func (r *Registry) StateOf(kind Kind, subject any) State {
	return r.StateOfWith(kind, subject, r.algorithm)
}

// StateOfWith resolves kind for subject with an explicit algorithm.
func (r *Registry) StateOfWith(kind Kind, subject any, alg Algorithm) State {
	r.check(kind, Unary)
	r.mu.RLock()
	defer r.mu.RUnlock()
	object := r.objects[objectKey{kind: kind, subject: subject}].state
	return alg.combine(object, func() State { return r.typeStateLocked(kind, TypeOf(subject)) })
}

// ObjectState returns only the object-keyed state of subject.
func (r *Registry) ObjectState(kind Kind, subject any) State {
	return r.StateOfWith(kind, subject, ObjectOnly)
}

// StateOfType resolves kind for an element of type t using most-specific-type
// matching.
func (r *Registry) StateOfType(kind Kind, t Type) State {
	r.check(kind, Unary)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typeStateLocked(kind, t)
}

func (r *Registry) typeStateLocked(kind Kind, t Type) State {
	byType := r.types[kind]
	if len(byType) == 0 {
		return Unset
	}
	if e, ok := byType[t]; ok {
		return e.state
	}
	candidates := make([]Type, 0, len(byType))
	for c := range byType {
		candidates = append(candidates, c)
	}
	best, ok := r.hierarchy.MostSpecific(t, candidates)
	if !ok {
		return Unset
	}
	return byType[best].state
}

// StateOfPair resolves a binary kind for (a, b) with the default algorithm.
func (r *Registry) StateOfPair(kind Kind, a, b any) State {
	return r.StateOfPairWith(kind, a, b, r.algorithm)
}

// StateOfPairWith resolves a binary kind for (a, b) with an explicit algorithm.
func (r *Registry) StateOfPairWith(kind Kind, a, b any, alg Algorithm) State {
	r.check(kind, Binary)
	r.mu.RLock()
	defer r.mu.RUnlock()
	object := r.pairs[pairKey{kind: kind, a: a, b: b}].state
	return alg.combine(object, func() State { return r.typePairStateLocked(kind, TypeOf(a), TypeOf(b)) })
}

// StateOfTypePair resolves a binary kind for a pair of element types.
func (r *Registry) StateOfTypePair(kind Kind, ta, tb Type) State {
	r.check(kind, Binary)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typePairStateLocked(kind, ta, tb)
}

func (r *Registry) typePairStateLocked(kind Kind, ta, tb Type) State {
	byPair := r.typePairs[kind]
	if len(byPair) == 0 {
		return Unset
	}
	if e, ok := byPair[typePair{a: ta, b: tb}]; ok {
		return e.state
	}

	var (
		best     typePair
		bestDist int
		found    bool
	)
	for c := range byPair {
		da, okA := r.hierarchy.Distance(ta, c.a)
		db, okB := r.hierarchy.Distance(tb, c.b)
		if !okA || !okB {
			continue
		}
		d := da + db
		if !found || d < bestDist || (d == bestDist && r.pairMoreSpecific(c, best)) {
			best, bestDist, found = c, d, true
		}
	}
	if !found {
		return Unset
	}
	return byPair[best].state
}

func (r *Registry) pairMoreSpecific(x, y typePair) bool {
	if x.a != y.a {
		return r.hierarchy.moreSpecific(x.a, y.a)
	}
	return r.hierarchy.moreSpecific(x.b, y.b)
}

// Permits resolves kind for subject and applies acceptUnset to Unset.
func (r *Registry) Permits(kind Kind, subject any, acceptUnset bool) bool {
	return r.StateOf(kind, subject).Permits(acceptUnset)
}

// PermitsPair resolves a binary kind for (a, b) and applies acceptUnset to Unset.
func (r *Registry) PermitsPair(kind Kind, a, b any, acceptUnset bool) bool {
	return r.StateOfPair(kind, a, b).Permits(acceptUnset)
}
