package view

import (
	"io"
	"log/slog"
)

// Option is a functional option for configuring a Root.
type Option func(*rootOptions)

type rootOptions struct {
	logger *slog.Logger

	// onRender is called after every component render with the fresh output.
	onRender func(c *Component)

	// onDirty is called when a component becomes dirty.
	// It runs on the notifying goroutine, outside the Root's locks.
	onDirty func()
}

// WithLogger sets the logger for render diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *rootOptions) {
		o.logger = logger
	}
}

// OnRender registers a hook called after each component render.
// Live transports use it to collect patches.
func OnRender(fn func(c *Component)) Option {
	return func(o *rootOptions) {
		o.onRender = fn
	}
}

// OnDirty registers a hook called whenever a component is newly marked
// dirty. Typical use is waking the goroutine that calls Flush.
func OnDirty(fn func()) Option {
	return func(o *rootOptions) {
		o.onDirty = fn
	}
}

func applyOptions(opts []Option) rootOptions {
	var o rootOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
