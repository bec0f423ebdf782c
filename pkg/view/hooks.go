package view

import (
	"reflect"

	"github.com/vango-dev/atom/pkg/bind"
)

// storeHook is the per-component state behind UseSyncExternalStore.
type storeHook[S any] struct {
	last  S
	equal func(a, b S) bool
}

// UseSyncExternalStore reads an external store during render.
//
// On the first render it returns initial(), subscribes and registers the
// unsubscribe as a cleanup. A change that lands between initial() and the
// subscription is caught by re-reading snapshot() once subscribed, which
// marks the component dirty. On change it calls snapshot() and marks the
// component dirty only if the snapshot differs from the last one seen,
// according to equal (Equal when nil). Later renders return snapshot().
func UseSyncExternalStore[S any](ctx *Ctx, subscribe func(onChange func()) func(), snapshot func() S, initial func() S, equal func(a, b S) bool) S {
	r := ctx.c.root

	if slot := ctx.UseHookSlot(); slot != nil {
		h := slot.(*storeHook[S])
		v := snapshot()
		r.mu.Lock()
		h.last = v
		r.mu.Unlock()
		return v
	}

	if equal == nil {
		equal = Equal[S]
	}
	h := &storeHook[S]{last: initial(), equal: equal}
	ctx.SetHookSlot(h)

	c := ctx.c
	unsubscribe := subscribe(func() {
		next := snapshot()
		r.mu.Lock()
		changed := !h.equal(h.last, next)
		if changed {
			h.last = next
		}
		r.mu.Unlock()
		if changed {
			r.markDirty(c)
		}
	})
	ctx.OnCleanup(unsubscribe)

	v := h.last
	next := snapshot()
	r.mu.Lock()
	missed := !h.equal(h.last, next)
	if missed {
		h.last = next
	}
	r.mu.Unlock()
	if missed {
		r.markDirty(c)
	}
	return v
}

// Sync returns the bind.Sync primitive for the component being rendered.
func Sync[S any](ctx *Ctx) bind.Sync[S] {
	return SyncFunc[S](ctx, nil)
}

// SyncFunc is Sync with a custom snapshot equality function.
func SyncFunc[S any](ctx *Ctx, equal func(a, b S) bool) bind.Sync[S] {
	return func(subscribe func(func()) func(), snapshot func() S, initial func() S) S {
		return UseSyncExternalStore(ctx, subscribe, snapshot, initial, equal)
	}
}

// Equal provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for others.
func Equal[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		// Fall back to reflect.DeepEqual for slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}
