package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	apperrors "github.com/vango-dev/atom/internal/errors"
)

// Loop runs every write to shared state on one goroutine.
// Atom notifications, and with them every subscriber callback, therefore
// never run concurrently with each other.
type Loop struct {
	jobs    chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// NewLoop starts a Loop.
func NewLoop(logger *slog.Logger) *Loop {
	l := &Loop{
		jobs:    make(chan func()),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case job := <-l.jobs:
			job()
		case <-l.done:
			return
		}
	}
}

// Do runs fn on the loop and waits for its result.
// It returns E204 once the loop is closed, and ctx.Err() if ctx ends first.
// A panic in fn is recovered and returned as an error.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	job := func() { res <- l.execute(fn) }

	select {
	case l.jobs <- job:
	case <-l.done:
		return apperrors.New("E204")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) execute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("edit panic", "panic", r, "stack", string(debug.Stack()))
			err = apperrors.Newf(apperrors.CategoryRuntime, "edit panicked: %v", r)
		}
	}()
	return fn()
}

// Close stops the loop after the job in progress, if any, finishes.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
	<-l.stopped
}
