package bind

import "github.com/vango-dev/atom/pkg/atom"

// Source is the part of an atom the adapter needs.
// *atom.Atom satisfies it.
type Source[T any] interface {
	Get() T
	Update(fn atom.Updater[T])
	Subscribe(fn atom.Callback[T]) atom.Unsubscribe
}

// Store is the generic "subscribe to change + pull current snapshot"
// contract a reactive view host consumes.
type Store[S any] interface {
	// Subscribe arranges for onChange to be called after every update and
	// returns a function that cancels the subscription.
	Subscribe(onChange func()) (unsubscribe func())

	// Snapshot returns the value to render with now.
	Snapshot() S

	// InitialSnapshot returns the value for a first render that happens
	// before any subscription exists (server render, initial mount).
	InitialSnapshot() S
}

// Sync is a host's external-store synchronization primitive.
// It returns the snapshot the current render should use and owns the
// subscription lifecycle.
type Sync[S any] func(subscribe func(onChange func()) func(), snapshot func() S, initial func() S) S

// Static returns a Sync that reads the initial snapshot once and never
// subscribes. It is what a one-shot render (e.g. an HTTP response) uses.
func Static[S any]() Sync[S] {
	return func(_ func(func()) func(), _ func() S, initial func() S) S {
		return initial()
	}
}

// valueStore exposes a Source's full value.
type valueStore[T any] struct {
	src Source[T]
}

// Of returns a Store over the full value of src.
func Of[T any](src Source[T]) Store[T] {
	return valueStore[T]{src: src}
}

func (s valueStore[T]) Subscribe(onChange func()) func() {
	return s.src.Subscribe(func(T, T) { onChange() })
}

func (s valueStore[T]) Snapshot() T {
	return s.src.Get()
}

func (s valueStore[T]) InitialSnapshot() T {
	return s.src.Get()
}

// selectStore exposes a derived slice of a Source.
type selectStore[T, S any] struct {
	src Source[T]
	sel func(T) S
}

// Select returns a Store whose snapshot is sel(src.Get()).
// sel runs on every read; a panicking selector propagates to the reader.
func Select[T, S any](src Source[T], sel func(T) S) Store[S] {
	return selectStore[T, S]{src: src, sel: sel}
}

func (s selectStore[T, S]) Subscribe(onChange func()) func() {
	return s.src.Subscribe(func(T, T) { onChange() })
}

func (s selectStore[T, S]) Snapshot() S {
	return s.sel(s.src.Get())
}

func (s selectStore[T, S]) InitialSnapshot() S {
	return s.sel(s.src.Get())
}

// Use hands store to the host primitive and returns the snapshot to render.
func Use[S any](sync Sync[S], store Store[S]) S {
	return sync(store.Subscribe, store.Snapshot, store.InitialSnapshot)
}

// Bind observes the full value of src.
// The setter is src.Update itself.
func Bind[T any](sync Sync[T], src Source[T]) (T, atom.SetFunc[T]) {
	return Use(sync, Of(src)), src.Update
}

// BindSelect observes sel(value) and returns src's setter.
func BindSelect[T, S any](sync Sync[S], src Source[T], sel func(T) S) (S, atom.SetFunc[T]) {
	return Use(sync, Select(src, sel)), src.Update
}

// BindValue observes the full value of src for read-only consumers.
func BindValue[T any](sync Sync[T], src Source[T]) T {
	return Use(sync, Of(src))
}
