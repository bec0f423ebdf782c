package tui

import (
	"sync"

	"github.com/vango-dev/atom/pkg/bind"
)

// cell is one bound field on screen.
type cell struct {
	value       string
	dirty       bool
	renders     int
	unsubscribe func()
}

// host is the terminal's bind.Sync implementation. Each cell subscribes on
// first use and caches its snapshot; a change notification only dirties the
// cell when the snapshot actually changed.
type host struct {
	mu      sync.Mutex
	cells   map[string]*cell
	changed chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newHost() *host {
	return &host{
		cells:   make(map[string]*cell),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// sync returns the bind.Sync primitive for the cell named key.
func (h *host) sync(key string) bind.Sync[string] {
	return func(subscribe func(func()) func(), snapshot func() string, initial func() string) string {
		h.mu.Lock()
		c, ok := h.cells[key]
		if ok {
			if c.dirty {
				c.dirty = false
				c.renders++
			}
			v := c.value
			h.mu.Unlock()
			return v
		}
		c = &cell{value: initial(), renders: 1}
		h.cells[key] = c
		h.mu.Unlock()

		unsubscribe := subscribe(func() {
			next := snapshot()
			h.mu.Lock()
			changed := next != c.value
			if changed {
				c.value = next
				c.dirty = true
			}
			h.mu.Unlock()
			if changed {
				h.signal()
			}
		})

		// Catch a change made before the subscription existed.
		next := snapshot()
		h.mu.Lock()
		c.unsubscribe = unsubscribe
		v := c.value
		missed := next != c.value
		if missed {
			c.value = next
			c.dirty = true
		}
		h.mu.Unlock()
		if missed {
			h.signal()
		}
		return v
	}
}

func (h *host) signal() {
	select {
	case h.changed <- struct{}{}:
	default:
	}
}

// retain releases every cell not in keep.
func (h *host) retain(keep map[string]bool) {
	h.mu.Lock()
	var release []func()
	for key, c := range h.cells {
		if !keep[key] {
			delete(h.cells, key)
			if c.unsubscribe != nil {
				release = append(release, c.unsubscribe)
			}
		}
	}
	h.mu.Unlock()

	for _, fn := range release {
		fn()
	}
}

// renders returns how many times the cell named key produced a new value.
func (h *host) renders(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.cells[key]; ok {
		return c.renders
	}
	return 0
}

func (h *host) close() {
	h.once.Do(func() { close(h.done) })
	h.retain(nil)
}
