package failure

import (
	"errors"
	"fmt"
)

// ErrInterrupted is reported when a blocking wait is cancelled through its context.
var ErrInterrupted = errors.New("interrupted")

// InvariantError signals that the graph or scheduler bookkeeping is corrupted.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}

// Invariant panics with an *InvariantError.
func Invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// FatalError wraps a cause that cannot be reported as a recoverable failure,
// such as a callback that failed after its mutation committed.
type FatalError struct {
	Op    string
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error in %s: %v", e.Op, e.Cause)
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// Fatal panics with a *FatalError wrapping cause.
func Fatal(op string, cause error) {
	panic(&FatalError{Op: op, Cause: cause})
}

// Interrupted wraps a context error so that both ErrInterrupted and the
// original cause match with errors.Is.
func Interrupted(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInterrupted, cause)
}
