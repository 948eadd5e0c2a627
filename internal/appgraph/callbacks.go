package appgraph

import (
	"context"
	"sync"

	"github.com/specialistvlad/gridgraph/internal/dag"
)

// Event names a callback slot.
type Event uint8

const (
	VertexAdded Event = iota + 1
	VertexRemoved
	VertexEntered
	VertexLeft
	EdgeAdded
	EdgeRemoved
	EdgeConnected
	EdgeDisconnected

	ChildConnected
	ParentConnected
	ChildDisconnected
	ParentDisconnected
	EnteredGraph
	LeftGraph
)

// VertexCallback observes a vertex entering or leaving a graph.
type VertexCallback[T any] func(ctx context.Context, g *Graph[T], v *Vertex[T]) error

// EdgeCallback observes an edge being created or removed.
type EdgeCallback[T any] func(ctx context.Context, g *Graph[T], e dag.Edge[*Vertex[T]]) error

// RelationCallback is invoked on a vertex when another vertex becomes, or
// stops being, its child or parent.
type RelationCallback[T any] func(ctx context.Context, g *Graph[T], self, other *Vertex[T]) error

// MembershipCallback is invoked on a vertex when it enters or leaves a graph.
type MembershipCallback[T any] func(ctx context.Context, g *Graph[T], self *Vertex[T]) error

// CallbackHandle identifies one registered callback.
type CallbackHandle struct {
	event Event
	id    uint64
}

type callbackEntry[F any] struct {
	id uint64
	fn F
}

// callbackTable keeps callbacks per event in registration order.
type callbackTable[F any] struct {
	mu      sync.RWMutex
	next    uint64
	entries map[Event][]callbackEntry[F]
}

func (t *callbackTable[F]) add(event Event, fn F) CallbackHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[Event][]callbackEntry[F])
	}
	t.next++
	t.entries[event] = append(t.entries[event], callbackEntry[F]{id: t.next, fn: fn})
	return CallbackHandle{event: event, id: t.next}
}

func (t *callbackTable[F]) remove(h CallbackHandle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	list := t.entries[h.event]
	for i, e := range list {
		if e.id == h.id {
			t.entries[h.event] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (t *callbackTable[F]) snapshot(event Event) []F {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := t.entries[event]
	out := make([]F, len(list))
	for i, e := range list {
		out[i] = e.fn
	}
	return out
}

func (t *callbackTable[F]) len(event Event) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries[event])
}
