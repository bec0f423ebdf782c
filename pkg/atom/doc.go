// Package atom provides a minimal observable state container.
//
// An Atom owns a single value, a list of subscribers and, for each
// subscriber, the value it was last notified with. It knows nothing about
// rendering; view layers bind to it through package bind.
//
// # Core Types
//
// Atom[T] holds the value:
//
//	fields := atom.New([]Pair{})
//	v := fields.Get()                     // Read (shared, not copied)
//	fields.Set(next)                      // Replace the whole value
//	fields.Update(func(prev []Pair) []Pair {
//	    return append(slices.Clone(prev), Pair{})
//	})
//
// Subscribe registers a callback that receives the new value and the value
// that callback was last notified with:
//
//	unsubscribe := fields.Subscribe(func(next, prev []Pair) {
//	    fmt.Println(len(prev), "->", len(next))
//	})
//	defer unsubscribe()
//
// # Replacement, not merge
//
// Set and Update always replace the stored value with the resolved result.
// There is no field-level merge. Updaters are expected to return the
// complete next value; returning a mutated previous value is accepted but
// subscribers holding the old reference will observe the mutation.
//
// # Notification
//
// Notification is synchronous. Subscribers are called in subscription order
// from a snapshot taken when the new value is committed, so a subscriber that
// unsubscribes a peer mid-pass does not prevent that peer's delivery in the
// current pass. No lock is held while callbacks run: callbacks may read the
// atom, set it again (the nested Set completes its own pass before
// returning) and subscribe or unsubscribe.
//
// # Thread Safety
//
// All methods are safe to call from multiple goroutines. Writers are
// serialized from reading the current value to storing the next one, so
// concurrent Update calls never lose a write. Notification order
// across concurrent writers is not defined, so applications that need a
// single, ordered history should funnel writes through one goroutine.
package atom
