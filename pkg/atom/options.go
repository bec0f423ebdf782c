package atom

import (
	"io"
	"log/slog"
	"time"
)

// Option is a functional option for configuring atoms.
type Option func(*options)

// options holds configuration shared by every Atom instantiation.
type options struct {
	// name labels the atom in logs and metrics.
	name string

	logger *slog.Logger

	observer Observer
}

// Observer receives lifecycle events from an atom.
// It is the hook used by metrics collectors; implementations must be fast
// and must not call back into the atom.
type Observer interface {
	// Subscribed is called after a subscriber is added.
	Subscribed(name string, subscribers int)

	// Unsubscribed is called after a subscriber is removed.
	Unsubscribed(name string, subscribers int)

	// Updated is called after a notification pass completes.
	// notified is the size of the snapshot that was delivered to.
	Updated(name string, notified int, elapsed time.Duration)
}

// WithName sets the name used in logs and metrics labels.
// Unnamed atoms are reported as "atom".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger for debug output.
// By default atoms log nowhere.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver attaches an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// applyOptions applies the given options and returns the resulting config.
func applyOptions(opts []Option) options {
	o := options{name: "atom"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	o.logger = o.logger.With("atom", o.name)
	return o
}
