package failure

import "fmt"

// Failure is a recoverable outcome of an operation in domain D.
type Failure[D Domain] struct {
	Kind    Kind
	Message string

	// Rejector is the element whose policy or validation refused the
	// operation. It is nil for structural failures.
	Rejector any
}

// New builds a failure of the given kind. It panics with an *InvariantError if
// the kind is not part of domain D.
func New[D Domain](kind Kind, format string, args ...any) *Failure[D] {
	var d D
	if !d.Kinds().Has(kind) {
		Invariant("failure.New", "kind %s is outside the %s domain %s", kind, d.Name(), d.Kinds())
	}
	return &Failure[D]{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Rejected builds a rejection failure attributed to rejector.
func Rejected[D Domain](kind Kind, rejector any, format string, args ...any) *Failure[D] {
	f := New[D](kind, format, args...)
	f.Rejector = rejector
	return f
}

// Into re-tags f into domain To. It panics with an *InvariantError if the kind
// of f is not part of To. A nil failure stays nil.
func Into[To, From Domain](f *Failure[From]) *Failure[To] {
	if f == nil {
		return nil
	}
	var to To
	if !to.Kinds().Has(f.Kind) {
		Invariant("failure.Into", "kind %s cannot be reported in the %s domain", f.Kind, to.Name())
	}
	return &Failure[To]{Kind: f.Kind, Message: f.Message, Rejector: f.Rejector}
}

// Domain returns the name of the failure's domain.
func (f *Failure[D]) Domain() string {
	var d D
	return d.Name()
}

func (f *Failure[D]) Error() string {
	if f.Message == "" {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Message
}

// Unwrap exposes the kind so that errors.Is(f, VertexNotPresent) holds.
func (f *Failure[D]) Unwrap() error {
	return f.Kind
}
