// Package bench simulates typing into the form and reports how much of the
// view tree re-renders.
package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	apperrors "github.com/vango-dev/atom/internal/errors"
	"github.com/vango-dev/atom/pkg/atom"
	"github.com/vango-dev/atom/pkg/form"
	"github.com/vango-dev/atom/pkg/view"
)

// Options configures a run.
type Options struct {
	// Fields is the number of first/last pairs.
	Fields int

	// Edits is the number of simulated keystrokes.
	Edits int

	// Seed makes the sequence of edited fields reproducible.
	Seed uint64

	// Observer is attached to the form atom in addition to the run's own
	// counter. It may be nil.
	Observer atom.Observer

	Logger *slog.Logger
}

// Report is the outcome of a run.
type Report struct {
	Fields int
	Edits  int

	// Mount holds render counts by component kind for the initial mount.
	Mount map[string]int

	// Renders holds render counts by component kind caused by the edits.
	Renders map[string]int

	// Notifications is the number of subscriber callbacks delivered.
	Notifications int64

	// Subscribers is the subscriber count while mounted.
	Subscribers int

	Elapsed time.Duration
}

// PerEdit returns the mean time from edit to flushed re-render.
func (r Report) PerEdit() time.Duration {
	if r.Edits == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Edits)
}

// RendersPerEdit returns the mean number of components rendered per edit.
func (r Report) RendersPerEdit() float64 {
	if r.Edits == 0 {
		return 0
	}
	total := 0
	for _, n := range r.Renders {
		total += n
	}
	return float64(total) / float64(r.Edits)
}

// counter is an atom.Observer that counts delivered notifications.
type counter struct {
	notified atomic.Int64
	next     atom.Observer
}

func (c *counter) Subscribed(name string, n int) {
	if c.next != nil {
		c.next.Subscribed(name, n)
	}
}

func (c *counter) Unsubscribed(name string, n int) {
	if c.next != nil {
		c.next.Unsubscribed(name, n)
	}
}

func (c *counter) Updated(name string, notified int, elapsed time.Duration) {
	c.notified.Add(int64(notified))
	if c.next != nil {
		c.next.Updated(name, notified, elapsed)
	}
}

// Run mounts the form and applies opts.Edits random single-field edits,
// flushing after each one.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Fields <= 0 {
		return Report{}, apperrors.New("E106").WithDetail(fmt.Sprintf("fields must be positive, got %d", opts.Fields))
	}
	if opts.Edits < 0 {
		return Report{}, apperrors.Newf(apperrors.CategoryCLI, "edits must not be negative, got %d", opts.Edits)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	obs := &counter{next: opts.Observer}
	fields := form.NewStore(opts.Fields,
		atom.WithName("bench"),
		atom.WithLogger(logger),
		atom.WithObserver(obs),
	)
	root := view.NewRoot(view.WithLogger(logger))
	v := form.Mount(root, fields)
	defer v.Close()

	report := Report{
		Fields:      opts.Fields,
		Mount:       form.Stats(root),
		Subscribers: fields.Len(),
	}
	obs.notified.Store(0)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	start := time.Now()
	for k := 0; k < opts.Edits; k++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		i := rng.IntN(opts.Fields)
		side := form.Sides[rng.IntN(len(form.Sides))]

		target, ok := v.Target(i, side)
		if !ok {
			return report, fmt.Errorf("no input mounted for %s", side.Label(i))
		}
		// Every value is distinct, so every edit is a visible change.
		if err := v.Input(target, fmt.Sprintf("v%d", k)); err != nil {
			return report, err
		}
		root.Flush()
		report.Edits++
	}
	report.Elapsed = time.Since(start)
	report.Notifications = obs.notified.Load()

	after := form.Stats(root)
	report.Renders = make(map[string]int, len(after))
	for kind, n := range after {
		report.Renders[kind] = n - report.Mount[kind]
	}

	logger.Debug("bench complete",
		"fields", report.Fields,
		"edits", report.Edits,
		"elapsed", report.Elapsed,
		"notifications", report.Notifications)
	return report, nil
}
