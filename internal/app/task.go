package app

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/policy"
)

// Task is the object updated by a configured computation.
type Task struct {
	Name string
	Type policy.Type

	runs atomic.Int64
}

// PolicyType makes Task a policy.Subject.
func (t *Task) PolicyType() policy.Type { return t.Type }

func (t *Task) String() string { return t.Name }

// Runs returns how many times the task has been updated.
func (t *Task) Runs() int64 { return t.runs.Load() }

// execute is the update function of the application's updater.
func execute(ctx context.Context, t *Task) error {
	n := t.runs.Add(1)
	ctxlog.FromContext(ctx).Debug("Computation executed.", "computation", t.Name, "type", t.Type, "run", n)
	return nil
}
