// Package view is a minimal reactive view host.
//
// Components are render functions producing markup. Each component owns
// hook slots that keep state across renders, cleanups that run when it is
// unmounted, and a set of keyed children. A Root tracks which components are
// dirty and re-renders them on Flush.
//
// The host's external-store primitive is UseSyncExternalStore. It subscribes
// on the first render, unsubscribes on unmount and, on every change
// notification, pulls a fresh snapshot and compares it with the last one it
// saw. Only a different snapshot marks the component dirty. Sync adapts the
// primitive to bind.Sync:
//
//	root := view.NewRoot()
//	root.Mount("Display", func(ctx *view.Ctx) string {
//	    name := bind.BindValue(view.Sync[string](ctx), nameAtom)
//	    return "<p>" + html.EscapeString(name) + "</p>"
//	})
//	nameAtom.Set("Ada")
//	root.Flush() // re-renders Display
//
// Children are keyed and memoized: a parent re-render reuses a child's last
// output unless that child is itself dirty. Children whose keys are not
// requested during a render are unmounted.
//
// # Thread Safety
//
// Change notifications may arrive on any goroutine. Mount, Flush and Unmount
// are serialized by the Root; render functions never run concurrently within
// one Root.
package view
