package policy

import (
	"fmt"
	"strings"
)

// State is the outcome of a policy lookup. The zero value is Unset.
type State uint8

const (
	Unset State = iota
	Accept
	Reject
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ParseState parses "accept", "reject" or "unset", ignoring case.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return Accept, nil
	case "reject":
		return Reject, nil
	case "unset", "":
		return Unset, nil
	}
	return Unset, fmt.Errorf("unknown policy state %q: must be 'accept', 'reject' or 'unset'", s)
}

// And: Accept∧x = x, Reject∧x = Reject, Unset∧x = Unset unless x is Reject.
func (s State) And(x State) State {
	switch s {
	case Accept:
		return x
	case Reject:
		return Reject
	default:
		if x == Reject {
			return Reject
		}
		return Unset
	}
}

// Or: Accept∨x = Accept, otherwise x.
func (s State) Or(x State) State {
	if s == Accept {
		return Accept
	}
	return x
}

// Xor: Accept⊕x = ¬x, Reject⊕x = x, Unset⊕x = Unset.
func (s State) Xor(x State) State {
	switch s {
	case Accept:
		return x.Not()
	case Reject:
		return x
	default:
		return Unset
	}
}

// Not swaps Accept and Reject and keeps Unset.
func (s State) Not() State {
	switch s {
	case Accept:
		return Reject
	case Reject:
		return Accept
	default:
		return Unset
	}
}

// Permits reports whether the state allows an operation, treating Unset as
// acceptUnset.
func (s State) Permits(acceptUnset bool) bool {
	return s == Accept || (s == Unset && acceptUnset)
}
