package failure

import (
	"fmt"
	"math/bits"
	"strings"
)

// Kind is one of the recoverable failure causes.
type Kind uint8

const (
	RejectedByVertexPolicy Kind = iota + 1
	RejectedByVertexValidation
	RejectedByGraphPolicy
	RejectedByGraphValidation
	VertexAlreadyPresent
	VertexNotPresent
	EdgeAlreadyExists
	EdgeNotPresent
	SelfReference
	GraphCycleDetected
)

var kindNames = [...]string{
	RejectedByVertexPolicy:     "RejectedByVertexPolicy",
	RejectedByVertexValidation: "RejectedByVertexValidation",
	RejectedByGraphPolicy:      "RejectedByGraphPolicy",
	RejectedByGraphValidation:  "RejectedByGraphValidation",
	VertexAlreadyPresent:       "VertexAlreadyPresent",
	VertexNotPresent:           "VertexNotPresent",
	EdgeAlreadyExists:          "EdgeAlreadyExists",
	EdgeNotPresent:             "EdgeNotPresent",
	SelfReference:              "SelfReference",
	GraphCycleDetected:         "GraphCycleDetected",
}

// AllKinds lists every kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for k := RejectedByVertexPolicy; k <= GraphCycleDetected; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) valid() bool {
	return k >= RejectedByVertexPolicy && k <= GraphCycleDetected
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Error lets a Kind act as a sentinel for errors.Is.
func (k Kind) Error() string {
	return k.String()
}

// IsRejection reports whether the kind comes from a policy or validation check
// rather than from the structure of the graph.
func (k Kind) IsRejection() bool {
	switch k {
	case RejectedByVertexPolicy, RejectedByVertexValidation, RejectedByGraphPolicy, RejectedByGraphValidation:
		return true
	}
	return false
}

// Set is a bitmask of kinds.
type Set uint16

// SetOf builds a set from the given kinds.
func SetOf(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		if !k.valid() {
			panic(fmt.Sprintf("failure: invalid kind %d", uint8(k)))
		}
		s |= 1 << k
	}
	return s
}

// Has reports whether k is a member of the set.
func (s Set) Has(k Kind) bool {
	return k.valid() && s&(1<<k) != 0
}

// Union returns the kinds present in either set.
func (s Set) Union(other Set) Set {
	return s | other
}

// Contains reports whether every kind of other is also in s.
func (s Set) Contains(other Set) bool {
	return s&other == other
}

// Len returns the number of kinds in the set.
func (s Set) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Kinds returns the members in declaration order.
func (s Set) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds() {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, s.Len())
	for _, k := range s.Kinds() {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
