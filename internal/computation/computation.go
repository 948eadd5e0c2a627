package computation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/gridgraph/internal/appgraph"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/failure"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// State is the phase of the most recent execution of a computation.
type State int32

const (
	Idle State = iota
	Running
	NotifyingStart
	Executing
	NotifyingFinish
)

var stateNames = [...]string{"idle", "running", "notifying-start", "executing", "notifying-finish"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int32(s))
	}
	return stateNames[s]
}

// Computation wraps one updated object as a vertex of its updater's graph.
type Computation[O comparable] struct {
	updated     O
	kind        Kind
	updatedType policy.Type
	vertex      *appgraph.Vertex[*Computation[O]]
	admission   *semaphore.Weighted

	predMu sync.RWMutex
	preds  map[*Computation[O]]*atomic.Bool

	// triggered is set by the predecessor that admits this computation and
	// cleared when the computation starts.
	triggered atomic.Bool
	state     atomic.Int32
	runs      atomic.Uint64

	obsMu     sync.RWMutex
	observers []Observer[O]
}

// ComputationOption configures a Computation.
type ComputationOption func(*computationOptions)

type computationOptions struct {
	admission int64
	name      string
}

// WithAdmission overrides the updater's default admission limit.
func WithAdmission(n int64) ComputationOption {
	return func(o *computationOptions) {
		if n > 0 {
			o.admission = n
		}
	}
}

// WithComputationName names the vertex backing the computation.
func WithComputationName(name string) ComputationOption {
	return func(o *computationOptions) { o.name = name }
}

func newComputation[O comparable](u *Updater[O], updated O, opts ...ComputationOption) *Computation[O] {
	o := computationOptions{admission: u.admission}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = fmt.Sprintf("%s/%v", u.kind, updated)
	}

	c := &Computation[O]{
		updated:     updated,
		kind:        u.kind,
		updatedType: u.UpdatedTypeOf(updated),
		admission:   semaphore.NewWeighted(o.admission),
		preds:       make(map[*Computation[O]]*atomic.Bool),
	}
	c.vertex = appgraph.NewVertex(c,
		appgraph.WithName(o.name),
		appgraph.WithType(c.updatedType),
		appgraph.WithAcceptUnset(u.graph.AcceptUnset()),
		appgraph.WithVertexHierarchy(u.graph.Hierarchy()),
		appgraph.WithVertexAlgorithm(u.graph.Policies().Algorithm()),
	)
	c.hook()
	return c
}

// hook forwards subscription events to the updated object. Predecessor
// flags are maintained by the updater from the graph's edge events.
func (c *Computation[O]) hook() {
	c.vertex.OnConnectParent(func(ctx context.Context, _ *appgraph.Graph[*Computation[O]], _, parent *appgraph.Vertex[*Computation[O]]) error {
		if s, ok := any(c.updated).(ParentSubscriber[O]); ok {
			return s.ParentSubscribed(ctx, c.kind, parent.Value().updated)
		}
		return nil
	})
	c.vertex.OnConnectChild(func(ctx context.Context, _ *appgraph.Graph[*Computation[O]], _, child *appgraph.Vertex[*Computation[O]]) error {
		if s, ok := any(c.updated).(ChildSubscriber[O]); ok {
			return s.ChildSubscribed(ctx, c.kind, child.Value().updated)
		}
		return nil
	})
	c.vertex.OnEnterGraph(func(ctx context.Context, _ *appgraph.Graph[*Computation[O]], _ *appgraph.Vertex[*Computation[O]]) error {
		if s, ok := any(c.updated).(Subscriber); ok {
			return s.Subscribed(ctx, c.kind)
		}
		return nil
	})
}

func (c *Computation[O]) Updated() O { return c.updated }

func (c *Computation[O]) UpdaterKind() Kind { return c.kind }

func (c *Computation[O]) UpdatedType() policy.Type { return c.updatedType }

// Vertex returns the graph vertex backing c.
func (c *Computation[O]) Vertex() *appgraph.Vertex[*Computation[O]] { return c.vertex }

func (c *Computation[O]) String() string { return c.vertex.Name() }

func (c *Computation[O]) State() State { return State(c.state.Load()) }

// Runs returns how many times c finished executing.
func (c *Computation[O]) Runs() uint64 { return c.runs.Load() }

// Equivalent reports whether c and other share the updater kind and the type
// of their updated objects.
func (c *Computation[O]) Equivalent(other *Computation[O]) bool {
	return other != nil && c.kind == other.kind && c.updatedType == other.updatedType
}

func (c *Computation[O]) setState(s State) { c.state.Store(int32(s)) }

func (c *Computation[O]) addPredecessor(p *Computation[O]) *atomic.Bool {
	c.predMu.Lock()
	defer c.predMu.Unlock()
	f, ok := c.preds[p]
	if !ok {
		f = new(atomic.Bool)
		c.preds[p] = f
	}
	return f
}

func (c *Computation[O]) removePredecessor(p *Computation[O]) {
	c.predMu.Lock()
	defer c.predMu.Unlock()
	delete(c.preds, p)
}

func (c *Computation[O]) flags() []*atomic.Bool {
	c.predMu.RLock()
	defer c.predMu.RUnlock()
	out := make([]*atomic.Bool, 0, len(c.preds))
	for _, f := range c.preds {
		out = append(out, f)
	}
	return out
}

// Pending returns the number of predecessors that have not finished in the
// current cycle.
func (c *Computation[O]) Pending() int {
	n := 0
	for _, f := range c.flags() {
		if !f.Load() {
			n++
		}
	}
	return n
}

// StartBy acquires an admission permit, announces the start to parents and
// children, executes the update and announces the finish. Children whose
// predecessors have all finished are started by u. A cancelled context while
// waiting for the permit yields an error wrapping failure.ErrInterrupted.
func (c *Computation[O]) StartBy(ctx context.Context, u *Updater[O]) (err error) {
	ctx, span := tracer.Start(ctx, "computation.Run", trace.WithAttributes(
		attribute.String("computation.updater", string(c.kind)),
		attribute.String("computation.name", c.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := c.admission.Acquire(ctx, 1); err != nil {
		return failure.Interrupted("computation.StartBy", err)
	}
	defer c.admission.Release(1)
	defer c.setState(Idle)

	c.setState(Running)
	if initMetrics() == nil {
		admissionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("updater", string(c.kind))))
	}

	c.setState(NotifyingStart)
	if err := c.onStart(ctx, u); err != nil {
		return err
	}

	c.setState(Executing)
	if err := c.ComputeBy(ctx, u); err != nil {
		return err
	}
	c.runs.Add(1)
	if initMetrics() == nil {
		runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("updater", string(c.kind))))
	}

	c.setState(NotifyingFinish)
	if err := c.onFinish(ctx, u); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Computation finished.", "computation", c.String(), "runs", c.Runs())
	return nil
}

// ComputeBy applies the update of u to the object of c.
func (c *Computation[O]) ComputeBy(ctx context.Context, u *Updater[O]) error {
	return u.Update(ctx, c.updated)
}

// onStart resets every predecessor flag and tells parents and children that
// c started.
func (c *Computation[O]) onStart(ctx context.Context, u *Updater[O]) error {
	c.triggered.Store(false)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, f := range c.flags() {
		eg.Go(func() error {
			f.Store(false)
			return nil
		})
	}
	for _, child := range c.vertex.ChildrenIn(u.graph) {
		eg.Go(func() error {
			child.Value().notify(egCtx, func(o Observer[O]) {
				if o.ParentStarted != nil {
					o.ParentStarted(egCtx, child.Value(), c)
				}
			})
			return nil
		})
	}
	for _, parent := range c.vertex.ParentsIn(u.graph) {
		eg.Go(func() error {
			parent.Value().notify(egCtx, func(o Observer[O]) {
				if o.ChildStarted != nil {
					o.ChildStarted(egCtx, parent.Value(), c)
				}
			})
			return nil
		})
	}
	eg.Go(func() error {
		c.notify(egCtx, func(o Observer[O]) {
			if o.Started != nil {
				o.Started(egCtx, c)
			}
		})
		return nil
	})
	return eg.Wait()
}

// onFinish tells parents and children that c finished. A child whose
// predecessors have now all finished is started on a new goroutine.
func (c *Computation[O]) onFinish(ctx context.Context, u *Updater[O]) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		c.notify(egCtx, func(o Observer[O]) {
			if o.Finished != nil {
				o.Finished(egCtx, c)
			}
		})
		return nil
	})
	children, _ := u.graph.Children(c.vertex)
	for _, child := range children {
		eg.Go(func() error {
			child.Value().PredecessorFinished(ctx, u, c)
			return nil
		})
	}
	for _, parent := range c.vertex.ParentsIn(u.graph) {
		eg.Go(func() error {
			parent.Value().notify(egCtx, func(o Observer[O]) {
				if o.ChildFinished != nil {
					o.ChildFinished(egCtx, parent.Value(), c)
				}
			})
			return nil
		})
	}
	return eg.Wait()
}

// PredecessorFinished records that parent finished in the current cycle and
// starts c through u once every predecessor has. A parent that is not a
// predecessor of c means the graph and the flags disagree, which is fatal.
// An edge committed whose flag is still being registered is picked up here.
func (c *Computation[O]) PredecessorFinished(ctx context.Context, u *Updater[O], parent *Computation[O]) {
	c.predMu.RLock()
	flag, ok := c.preds[parent]
	c.predMu.RUnlock()
	if !ok && u.graph.ContainsEdge(parent.vertex, c.vertex) {
		flag, ok = c.addPredecessor(parent), true
	}
	if !ok {
		failure.Invariant("computation.PredecessorFinished", "%s reported finishing to %s, which does not depend on it", parent, c)
	}
	flag.Store(true)

	c.notify(ctx, func(o Observer[O]) {
		if o.ParentFinished != nil {
			o.ParentFinished(ctx, c, parent)
		}
	})

	if c.Pending() == 0 && c.triggered.CompareAndSwap(false, true) {
		u.Start(ctx, c)
	}
}
