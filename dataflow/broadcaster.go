// Package dataflow provides the push-based snapshot source that feeds the
// tree providers.
package dataflow

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives published values.
type Handler[T any] func(T)

// Broadcaster delivers every published value to all subscribers, in the
// publisher's goroutine. A new subscriber first receives the latest value,
// if any, so it never misses the current state.
//
// Broadcaster is safe for concurrent use. Handlers may call Unsubscribe but
// must not call Publish or Subscribe on the same broadcaster.
type Broadcaster[T any] struct {
	mu       sync.RWMutex
	handlers map[string]Handler[T]
	order    []string
	latest   T
	has      bool
	// deliver serializes deliveries so handlers never run concurrently.
	deliver sync.Mutex
}

// NewBroadcaster creates a broadcaster with no value.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{handlers: make(map[string]Handler[T])}
}

// Subscribe registers h and returns a subscription ID for Unsubscribe.
func (b *Broadcaster[T]) Subscribe(h Handler[T]) string {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	id := uuid.NewString()
	b.handlers[id] = h
	b.order = append(b.order, id)
	latest, has := b.latest, b.has
	b.mu.Unlock()

	if has {
		h(latest)
	}
	return id
}

// Unsubscribe removes a subscription. It reports whether id was found.
func (b *Broadcaster[T]) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.handlers[id]; !ok {
		return false
	}
	delete(b.handlers, id)
	for i, o := range b.order {
		if o == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// Publish stores v as the latest value and hands it to every subscriber in
// subscription order.
func (b *Broadcaster[T]) Publish(v T) {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	b.latest, b.has = v, true
	handlers := make([]Handler[T], 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(v)
	}
}

// Latest returns the most recently published value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.has
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
