// Package bind connects atoms to reactive view hosts.
//
// A view host exposes a single synchronization primitive: given a way to
// subscribe to change notifications, a way to read the current snapshot and
// a way to read the snapshot for the very first render, it returns the value
// the view should render with, and takes care of subscribing on mount and
// unsubscribing on unmount. That primitive is modelled by Sync.
//
// The adapter itself is stateless:
//
//	value, set := bind.Bind(sync, fields)
//	first, set := bind.BindSelect(sync, fields, func(f form.Fields) string {
//	    return f[3].First
//	})
//	all := bind.BindValue(sync, fields)
//
// A selector is evaluated on every read and on every notification. The
// adapter never memoizes a derived slice and never suppresses a change;
// deciding whether a new snapshot actually warrants a re-render is the
// host's job.
package bind
