package computation

import "context"

// Observer receives the start and finish events of a computation and of its
// neighbours. Nil fields are skipped. Observers run concurrently with each
// other and must not block.
type Observer[O comparable] struct {
	Started  func(ctx context.Context, self *Computation[O])
	Finished func(ctx context.Context, self *Computation[O])

	ParentStarted  func(ctx context.Context, self, parent *Computation[O])
	ChildStarted   func(ctx context.Context, self, child *Computation[O])
	ParentFinished func(ctx context.Context, self, parent *Computation[O])
	ChildFinished  func(ctx context.Context, self, child *Computation[O])
}

// Observe registers o on c.
func (c *Computation[O]) Observe(o Observer[O]) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, o)
}

func (c *Computation[O]) notify(ctx context.Context, fn func(Observer[O])) {
	if ctx.Err() != nil {
		return
	}
	c.obsMu.RLock()
	observers := append([]Observer[O](nil), c.observers...)
	c.obsMu.RUnlock()
	for _, o := range observers {
		fn(o)
	}
}

// Subscriber is implemented by updated objects that want to know when their
// computation enters an updater's graph.
type Subscriber interface {
	Subscribed(ctx context.Context, updater Kind) error
}

// ParentSubscriber is implemented by updated objects that want to know when
// another object is scheduled before them.
type ParentSubscriber[O comparable] interface {
	ParentSubscribed(ctx context.Context, updater Kind, parent O) error
}

// ChildSubscriber is implemented by updated objects that want to know when
// another object is scheduled after them.
type ChildSubscriber[O comparable] interface {
	ChildSubscribed(ctx context.Context, updater Kind, child O) error
}
