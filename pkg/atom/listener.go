package atom

import "sync/atomic"

// Callback is notified with the new value and the value most recently
// delivered to this same callback.
type Callback[T any] func(next, prev T)

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Listener is a subscriber with a stable identity.
// Subscribing the same listener twice keeps a single membership.
type Listener[T any] interface {
	// Notify is called after every committed update.
	Notify(next, prev T)

	// ID returns a unique identifier for this listener.
	ID() uint64
}

// ListenerFunc adapts a Callback into a Listener with a fresh ID.
type ListenerFunc[T any] struct {
	id uint64
	fn Callback[T]
}

// NewListener wraps fn with a newly allocated listener ID.
func NewListener[T any](fn Callback[T]) *ListenerFunc[T] {
	return &ListenerFunc[T]{id: NextID(), fn: fn}
}

// Notify calls the wrapped callback.
func (l *ListenerFunc[T]) Notify(next, prev T) {
	l.fn(next, prev)
}

// ID returns the listener ID.
func (l *ListenerFunc[T]) ID() uint64 {
	return l.id
}

// idCounter is the source of subscriber and atom IDs.
var idCounter uint64

// NextID returns a process-unique, monotonically increasing ID.
// View hosts use it to give their own listeners identities that never
// collide with callbacks subscribed directly.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
