// Package setting holds the shared cursor settings, their change
// notifications and the small behaviours that forward them.
package setting

import "sync"

// Bus delivers values of one type to subscribed handlers.
//
// Dispatch is synchronous and follows registration order. Handlers may
// subscribe or unsubscribe from inside a handler; the change applies to the
// next Publish.
type Bus[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []busEntry[T]
}

type busEntry[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns the function that removes it again.
// Calling the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, busEntry[T]{id: id, fn: fn})
	b.mu.Unlock()

	return func() { b.remove(id) }
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, h := range b.handlers {
		if h.id == id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Publish calls every handler with v.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	handlers := make([]busEntry[T], len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, h := range handlers {
		h.fn(v)
	}
}

// Len returns the number of registered handlers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
