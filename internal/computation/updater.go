package computation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridgraph/internal/appgraph"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/dag"
	"github.com/specialistvlad/gridgraph/internal/failure"
	"github.com/specialistvlad/gridgraph/internal/policy"
)

// Kind names an updater. Two computations are equivalent when they share the
// updater kind and the type of the updated object.
type Kind string

// UpdateFunc applies one update to an object. It is the only place business
// logic runs.
type UpdateFunc[O comparable] func(ctx context.Context, updated O) error

// Updater owns a computation graph and the update applied to every object in
// it.
type Updater[O comparable] struct {
	kind      Kind
	update    UpdateFunc[O]
	typeOf    func(O) policy.Type
	admission int64
	graph     *appgraph.Graph[*Computation[O]]

	// members indexes the computations in the graph by updated object.
	// detached holds those handed out by ComputationOf that are not in the
	// graph yet.
	indexMu  sync.Mutex
	members  map[O]*Computation[O]
	detached map[O]*Computation[O]

	inflight sync.WaitGroup
	mu       sync.Mutex
	errs     []error
}

// Option configures an Updater.
type Option[O comparable] func(*updaterOptions[O])

type updaterOptions[O comparable] struct {
	typeOf    func(O) policy.Type
	admission int64
	graphOpts []appgraph.GraphOption
}

// WithTypeOf sets the resolver for the type of updated objects. The default
// is policy.TypeOf.
func WithTypeOf[O comparable](fn func(O) policy.Type) Option[O] {
	return func(o *updaterOptions[O]) { o.typeOf = fn }
}

// WithAdmissionLimit sets the default number of concurrent executions allowed
// per computation. Values below one are ignored.
func WithAdmissionLimit[O comparable](n int64) Option[O] {
	return func(o *updaterOptions[O]) {
		if n > 0 {
			o.admission = n
		}
	}
}

// WithGraphOptions passes options to the computation graph. The graph accepts
// unset policies unless an option says otherwise.
func WithGraphOptions[O comparable](opts ...appgraph.GraphOption) Option[O] {
	return func(o *updaterOptions[O]) { o.graphOpts = append(o.graphOpts, opts...) }
}

// NewUpdater creates an updater of the given kind with an empty computation
// graph.
func NewUpdater[O comparable](kind Kind, update UpdateFunc[O], opts ...Option[O]) *Updater[O] {
	o := updaterOptions[O]{
		typeOf:    func(x O) policy.Type { return policy.TypeOf(x) },
		admission: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	graphOpts := append([]appgraph.GraphOption{
		appgraph.WithGraphName(string(kind)),
		appgraph.WithGraphAcceptUnset(true),
	}, o.graphOpts...)

	u := &Updater[O]{
		kind:      kind,
		update:    update,
		typeOf:    o.typeOf,
		admission: o.admission,
		graph:     appgraph.New[*Computation[O]](graphOpts...),
		members:   make(map[O]*Computation[O]),
		detached:  make(map[O]*Computation[O]),
	}
	u.track()
	return u
}

// track registers the ungated graph callbacks that keep predecessor flags and
// the object index in step with the graph.
func (u *Updater[O]) track() {
	u.graph.OnEdgeAdded(func(_ context.Context, _ *appgraph.Graph[*Computation[O]], e dag.Edge[*appgraph.Vertex[*Computation[O]]]) error {
		e.Target.Value().addPredecessor(e.Source.Value())
		return nil
	})
	u.graph.OnEdgeRemoved(func(_ context.Context, _ *appgraph.Graph[*Computation[O]], e dag.Edge[*appgraph.Vertex[*Computation[O]]]) error {
		e.Target.Value().removePredecessor(e.Source.Value())
		return nil
	})
	u.graph.OnVertexAdded(func(_ context.Context, _ *appgraph.Graph[*Computation[O]], v *appgraph.Vertex[*Computation[O]]) error {
		c := v.Value()
		u.indexMu.Lock()
		defer u.indexMu.Unlock()
		u.members[c.updated] = c
		if u.detached[c.updated] == c {
			delete(u.detached, c.updated)
		}
		return nil
	})
	u.graph.OnVertexRemoved(func(_ context.Context, _ *appgraph.Graph[*Computation[O]], v *appgraph.Vertex[*Computation[O]]) error {
		c := v.Value()
		u.indexMu.Lock()
		defer u.indexMu.Unlock()
		if u.members[c.updated] == c {
			delete(u.members, c.updated)
		}
		return nil
	})
}

func (u *Updater[O]) Kind() Kind { return u.kind }

// Graph returns the computation graph owned by u.
func (u *Updater[O]) Graph() *appgraph.Graph[*Computation[O]] { return u.graph }

// Update applies the update function to updated.
func (u *Updater[O]) Update(ctx context.Context, updated O) error {
	if u.update == nil {
		return nil
	}
	return u.update(ctx, updated)
}

// UpdatedTypeOf returns the policy type of updated.
func (u *Updater[O]) UpdatedTypeOf(updated O) policy.Type { return u.typeOf(updated) }

// Matches reports whether x can be updated by u.
func (u *Updater[O]) Matches(x any) bool {
	_, ok := x.(O)
	return ok
}

// NewComputation creates a computation of updated that is not yet part of
// the graph.
func (u *Updater[O]) NewComputation(updated O, opts ...ComputationOption) *Computation[O] {
	return newComputation(u, updated, opts...)
}

// Find returns the computation of updated already in the graph, or nil.
func (u *Updater[O]) Find(updated O) *Computation[O] {
	u.indexMu.Lock()
	defer u.indexMu.Unlock()
	return u.members[updated]
}

// Contains reports whether the graph holds a computation of updated.
func (u *Updater[O]) Contains(updated O) bool { return u.Find(updated) != nil }

// ComputationOf returns the computation of updated in the graph. Otherwise it
// returns the detached one created for updated by an earlier call, creating
// it on first use, so that the same object always yields the same instance.
func (u *Updater[O]) ComputationOf(updated O) *Computation[O] {
	return u.computationOf(updated)
}

func (u *Updater[O]) computationOf(updated O, opts ...ComputationOption) *Computation[O] {
	u.indexMu.Lock()
	defer u.indexMu.Unlock()
	if c, ok := u.members[updated]; ok {
		return c
	}
	c, ok := u.detached[updated]
	if !ok {
		c = u.NewComputation(updated, opts...)
		u.detached[updated] = c
	}
	return c
}

// Add places the computation of updated into the graph as a root. An object
// that already has a computation yields the existing one. Options apply only
// when the computation is created by this call.
func (u *Updater[O]) Add(ctx context.Context, updated O, opts ...ComputationOption) (*Computation[O], *failure.Failure[failure.VertexAddition]) {
	if c := u.Find(updated); c != nil {
		return c, nil
	}
	c := u.computationOf(updated, opts...)
	if f := u.graph.AddVertex(ctx, c.vertex); f != nil {
		return nil, f
	}
	return c, nil
}

// Start runs c on its own goroutine. Its error, if any, is reported by the
// next Wait.
func (u *Updater[O]) Start(ctx context.Context, c *Computation[O]) {
	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		if err := c.StartBy(ctx, u); err != nil {
			u.record(fmt.Errorf("computation %s: %w", c, err))
		}
	}()
}

func (u *Updater[O]) record(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errs = append(u.errs, err)
}

// Wait blocks until every started computation, including those triggered by
// their predecessors, has returned. It returns the joined errors collected
// since the previous Wait.
func (u *Updater[O]) Wait() error {
	u.inflight.Wait()
	u.mu.Lock()
	defer u.mu.Unlock()
	err := errors.Join(u.errs...)
	u.errs = nil
	return err
}

// RunCycle starts every root computation and waits for the whole graph to
// settle.
func (u *Updater[O]) RunCycle(ctx context.Context) error {
	id := uuid.New()
	logger := ctxlog.FromContext(ctx)
	roots := u.graph.Roots()
	logger.Debug("Starting computation cycle.", "updater", u.kind, "cycle_id", id, "roots", len(roots))
	for _, v := range roots {
		u.Start(ctx, v.Value())
	}
	if err := u.Wait(); err != nil {
		return fmt.Errorf("cycle %s: %w", id, err)
	}
	logger.Debug("Computation cycle settled.", "updater", u.kind, "cycle_id", id)
	return nil
}
