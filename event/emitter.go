// Package event implements typed fan-out emitters. Each event kind gets its own
// Emitter; subscribers are removed through the Subscription handle returned
// when they registered.
package event

import "sync"

// Subscription identifies one registered handler.
type Subscription struct {
	id uint64
}

// Valid reports whether the subscription was returned by Subscribe
func (s Subscription) Valid() bool {
	return s.id != 0
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Emitter delivers every emitted value to all current subscribers, in
// registration order. The zero value is ready to use.
type Emitter[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber[T]
}

func (e *Emitter[T]) Subscribe(fn func(T)) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.subs = append(e.subs, subscriber[T]{id: e.nextID, fn: fn})
	return Subscription{id: e.nextID}
}

// Unsubscribe removes the handler registered under s. It returns false if the
// handler was not registered.
func (e *Emitter[T]) Unsubscribe(s Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, sub := range e.subs {
		if sub.id == s.id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every subscriber with v. Handlers registered or removed while an
// emission is in progress take effect from the next Emit.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	subs := make([]subscriber[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Len returns the number of subscribers
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
