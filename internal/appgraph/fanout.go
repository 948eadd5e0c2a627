package appgraph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridgraph/internal/failure"
	"golang.org/x/sync/errgroup"
)

// task is one notification of a fan-out batch.
type task func(ctx context.Context) error

// batch collects the notifications of one committed mutation.
type batch []task

func (b *batch) add(t task) {
	*b = append(*b, t)
}

// run dispatches every task concurrently and joins them. The first failure
// cancels the context seen by the remaining tasks and is returned.
func (b batch) run(ctx context.Context) error {
	if len(b) == 0 {
		return nil
	}
	eg, egCtx := errgroup.WithContext(ctx)
	for _, t := range b {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("callback panicked: %v", r)
				}
			}()
			return t(egCtx)
		})
	}
	return eg.Wait()
}

// mustRun dispatches the batch and escalates a failure to a fatal condition:
// the mutation has already committed and cannot be reported as rejected.
func (b batch) mustRun(ctx context.Context, op string) {
	if err := b.run(ctx); err != nil {
		failure.Fatal(op, err)
	}
}
