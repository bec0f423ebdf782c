package atom

import (
	"sync"
	"time"
)

// Updater computes the complete next value from the previous one.
type Updater[T any] func(prev T) T

// SetFunc is the shape of Atom.Update as a value.
// Binding adapters hand it to consumers as the setter.
type SetFunc[T any] func(fn Updater[T])

// Replace returns an Updater that ignores the previous value.
func Replace[T any](v T) Updater[T] {
	return func(T) T { return v }
}

// subscriber is one registered listener in subscription order.
type subscriber[T any] struct {
	id uint64
	l  Listener[T]
}

// Atom is an observable value container.
// The zero value is not usable; create atoms with New or NewFunc.
type Atom[T any] struct {
	id uint64

	// wmu serializes writers from reading the current value to storing the
	// next one. It is released before subscribers are notified.
	wmu sync.Mutex

	// mu protects value, subs, members and previous.
	// It is never held while a subscriber runs.
	mu sync.RWMutex

	value T

	// subs are kept in subscription order.
	subs []subscriber[T]

	// members indexes subs by subscriber ID.
	members map[uint64]struct{}

	// previous is the value most recently delivered to each subscriber.
	previous map[uint64]T

	opts options
}

// New creates an atom holding initial.
func New[T any](initial T, opts ...Option) *Atom[T] {
	return &Atom[T]{
		id:       NextID(),
		value:    initial,
		members:  make(map[uint64]struct{}),
		previous: make(map[uint64]T),
		opts:     applyOptions(opts),
	}
}

// NewFunc creates an atom whose initial value is produced by init.
// init is called exactly once, before NewFunc returns.
func NewFunc[T any](init func() T, opts ...Option) *Atom[T] {
	return New(init(), opts...)
}

// ID returns the unique identifier for this atom.
func (a *Atom[T]) ID() uint64 {
	return a.id
}

// Name returns the name given with WithName.
func (a *Atom[T]) Name() string {
	return a.opts.name
}

// Get returns the current value. The value is shared, not copied.
func (a *Atom[T]) Get() T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// Set replaces the stored value with v and notifies subscribers.
func (a *Atom[T]) Set(v T) {
	_ = a.write(func(T) (T, error) { return v, nil })
}

// Update replaces the stored value with fn(current) and notifies subscribers.
// fn is resolved before anything is committed, so a panicking updater
// leaves the atom unchanged. Concurrent updates never lose a write: each fn
// sees the value stored by the writer before it.
//
// fn must not write to the same atom.
func (a *Atom[T]) Update(fn Updater[T]) {
	_ = a.write(func(prev T) (T, error) { return fn(prev), nil })
}

// TryUpdate is Update for updaters that can fail.
// When fn returns an error nothing is committed and the error is returned
// unchanged.
func (a *Atom[T]) TryUpdate(fn func(prev T) (T, error)) error {
	return a.write(fn)
}

// Subscribe registers fn and returns a function that removes it.
// fn's first "previous" value is the atom's value at the time of this call.
// Every call registers a distinct subscriber.
func (a *Atom[T]) Subscribe(fn Callback[T]) Unsubscribe {
	return a.SubscribeListener(NewListener(fn))
}

// SubscribeListener registers l and returns a function that removes it.
// If l is already subscribed its position is kept and its previous value is
// reset to the current value.
func (a *Atom[T]) SubscribeListener(l Listener[T]) Unsubscribe {
	id := l.ID()

	a.mu.Lock()
	if _, ok := a.members[id]; !ok {
		a.members[id] = struct{}{}
		a.subs = append(a.subs, subscriber[T]{id: id, l: l})
	}
	a.previous[id] = a.value
	count := len(a.subs)
	a.mu.Unlock()

	a.opts.logger.Debug("subscribed", "subscriber", id, "subscribers", count)
	if a.opts.observer != nil {
		a.opts.observer.Subscribed(a.opts.name, count)
	}

	var once sync.Once
	return func() {
		once.Do(func() { a.remove(id) })
	}
}

// Len returns the number of current subscribers.
func (a *Atom[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.subs)
}

// remove drops a subscriber and its previous value record.
func (a *Atom[T]) remove(id uint64) {
	a.mu.Lock()
	if _, ok := a.members[id]; !ok {
		a.mu.Unlock()
		return
	}
	delete(a.members, id)
	delete(a.previous, id)
	for i, s := range a.subs {
		if s.id == id {
			// Preserve order: notification order is subscription order.
			a.subs = append(a.subs[:i], a.subs[i+1:]...)
			break
		}
	}
	count := len(a.subs)
	a.mu.Unlock()

	a.opts.logger.Debug("unsubscribed", "subscriber", id, "subscribers", count)
	if a.opts.observer != nil {
		a.opts.observer.Unsubscribed(a.opts.name, count)
	}
}

// write resolves fn against the current value, stores the result and runs
// a notification pass over a snapshot of the current subscribers.
func (a *Atom[T]) write(fn func(prev T) (T, error)) error {
	start := time.Now()

	snapshot, err := a.store(fn)
	if err != nil {
		return err
	}

	for _, s := range snapshot {
		a.deliver(s)
	}
	a.prune(snapshot)

	elapsed := time.Since(start)
	a.opts.logger.Debug("updated", "notified", len(snapshot), "elapsed", elapsed)
	if a.opts.observer != nil {
		a.opts.observer.Updated(a.opts.name, len(snapshot), elapsed)
	}
	return nil
}

// store holds wmu while fn runs so no other writer can commit in between.
func (a *Atom[T]) store(fn func(prev T) (T, error)) ([]subscriber[T], error) {
	a.wmu.Lock()
	defer a.wmu.Unlock()

	next, err := fn(a.Get())
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = next
	snapshot := make([]subscriber[T], len(a.subs))
	copy(snapshot, a.subs)
	return snapshot, nil
}

// deliver notifies one subscriber with the live value.
// The delivered value is recorded before the callback runs so that a nested
// Set inside the callback leaves the newest value on record.
func (a *Atom[T]) deliver(s subscriber[T]) {
	a.mu.Lock()
	cur := a.value
	prev, ok := a.previous[s.id]
	if !ok {
		prev = cur
	}
	if _, live := a.members[s.id]; live {
		a.previous[s.id] = cur
	}
	a.mu.Unlock()

	s.l.Notify(cur, prev)
}

// prune removes previous-value records of snapshot members that
// unsubscribed while the pass was running.
func (a *Atom[T]) prune(snapshot []subscriber[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range snapshot {
		if _, live := a.members[s.id]; !live {
			delete(a.previous, s.id)
		}
	}
}
