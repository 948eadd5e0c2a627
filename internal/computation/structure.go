package computation

import (
	"context"

	"github.com/specialistvlad/gridgraph/internal/failure"
)

// SetAfter schedules updated to run right after c and detaches its
// computation from every other predecessor.
func (c *Computation[O]) SetAfter(ctx context.Context, u *Updater[O], updated O) (*Computation[O], *failure.Failure[failure.Rewire]) {
	next := u.ComputationOf(updated)
	if f := c.vertex.AdoptChild(ctx, u.graph, next.vertex); f != nil {
		return nil, f
	}
	return next, nil
}

// AddAfter schedules updated to run after c, keeping its other predecessors.
func (c *Computation[O]) AddAfter(ctx context.Context, u *Updater[O], updated O) (*Computation[O], *failure.Failure[failure.Addition]) {
	next := u.ComputationOf(updated)
	if f := c.vertex.AddChild(ctx, u.graph, next.vertex); f != nil {
		return nil, f
	}
	return next, nil
}

// SetBefore schedules updated to run right before c and detaches its
// computation from every other successor.
func (c *Computation[O]) SetBefore(ctx context.Context, u *Updater[O], updated O) (*Computation[O], *failure.Failure[failure.Rewire]) {
	prev := u.ComputationOf(updated)
	if f := c.vertex.AdoptParent(ctx, u.graph, prev.vertex); f != nil {
		return nil, f
	}
	return prev, nil
}

// AddBefore schedules updated to run before c, keeping its other successors.
func (c *Computation[O]) AddBefore(ctx context.Context, u *Updater[O], updated O) (*Computation[O], *failure.Failure[failure.Addition]) {
	prev := u.ComputationOf(updated)
	if f := c.vertex.AddParent(ctx, u.graph, prev.vertex); f != nil {
		return nil, f
	}
	return prev, nil
}

// Unlink removes the ordering between c and the computation of updated, in
// whichever direction it exists.
func (c *Computation[O]) Unlink(ctx context.Context, u *Updater[O], updated O) *failure.Failure[failure.Disconnection] {
	other := u.Find(updated)
	if other == nil {
		return failure.New[failure.Disconnection](failure.VertexNotPresent, "no computation of %v in %s", updated, u.kind)
	}
	if c.vertex.HasParent(u.graph, other.vertex) {
		return c.vertex.DisconnectParent(ctx, u.graph, other.vertex)
	}
	return c.vertex.DisconnectChild(ctx, u.graph, other.vertex)
}
