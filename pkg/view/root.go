package view

import (
	"sync"

	"github.com/vango-dev/atom/pkg/atom"
)

// maxFlushPasses bounds how many times Flush drains the dirty queue.
// Components that dirty themselves on every render would otherwise spin.
const maxFlushPasses = 64

// Root owns a tree of mounted components and their dirty queue.
type Root struct {
	id   uint64
	opts rootOptions

	// renderMu serializes Mount, Flush and Unmount.
	renderMu sync.Mutex

	// mu protects dirty, the dirty/disposed flags of every component,
	// hook snapshots and render statistics.
	mu sync.Mutex

	dirty   []*Component
	top     []*Component
	renders map[string]int
}

// NewRoot creates an empty Root.
func NewRoot(opts ...Option) *Root {
	return &Root{
		id:      atom.NextID(),
		opts:    applyOptions(opts),
		renders: make(map[string]int),
	}
}

// ID returns the unique identifier for this Root.
func (r *Root) ID() uint64 {
	return r.id
}

// Mount creates a top-level component and renders it once.
func (r *Root) Mount(name string, render RenderFunc) *Component {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	c := r.newComponent(name, "", nil, render)
	r.top = append(r.top, c)
	r.renderComponent(c)
	return c
}

// Unmount disposes c and everything below it.
func (r *Root) Unmount(c *Component) {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	for i, t := range r.top {
		if t == c {
			r.top = append(r.top[:i], r.top[i+1:]...)
			break
		}
	}
	if c.parent != nil {
		delete(c.parent.children, c.key)
	}
	r.dispose(c)
}

// Close unmounts every top-level component.
func (r *Root) Close() {
	r.renderMu.Lock()
	top := r.top
	r.top = nil
	r.renderMu.Unlock()

	for i := len(top) - 1; i >= 0; i-- {
		r.renderMu.Lock()
		r.dispose(top[i])
		r.renderMu.Unlock()
	}
}

// Flush re-renders every dirty component, in the order they became dirty,
// and returns the components that were rendered.
// A panic from a render function (for example a failing selector)
// propagates to the caller.
func (r *Root) Flush() []*Component {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	var rendered []*Component
	for pass := 0; ; pass++ {
		r.mu.Lock()
		batch := r.dirty
		r.dirty = nil
		r.mu.Unlock()

		if len(batch) == 0 {
			return rendered
		}
		if pass == maxFlushPasses {
			r.opts.logger.Warn("flush pass limit reached, deferring dirty components",
				"root", r.id, "pending", len(batch))
			r.mu.Lock()
			r.dirty = append(batch, r.dirty...)
			r.mu.Unlock()
			return rendered
		}

		for _, c := range batch {
			r.mu.Lock()
			skip := !c.dirty || c.disposed
			r.mu.Unlock()
			if skip {
				continue
			}
			r.renderComponent(c)
			rendered = append(rendered, c)
		}
	}
}

// Pending returns the number of components waiting for Flush.
func (r *Root) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.dirty {
		if c.dirty && !c.disposed {
			n++
		}
	}
	return n
}

// Renders returns how many times components named name have rendered.
func (r *Root) Renders(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders[name]
}

// RenderStats returns a copy of the per-name render counts.
func (r *Root) RenderStats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.renders))
	for k, v := range r.renders {
		out[k] = v
	}
	return out
}

// markDirty queues c for the next Flush.
func (r *Root) markDirty(c *Component) {
	r.mu.Lock()
	if c.dirty || c.disposed {
		r.mu.Unlock()
		return
	}
	c.dirty = true
	r.dirty = append(r.dirty, c)
	r.mu.Unlock()

	if r.opts.onDirty != nil {
		r.opts.onDirty()
	}
}

// renderComponent runs c's render function. Callers hold renderMu.
func (r *Root) renderComponent(c *Component) {
	r.mu.Lock()
	c.dirty = false
	r.mu.Unlock()

	c.slotIdx = 0
	c.seen = make(map[string]bool, len(c.children))

	out := c.render(&Ctx{c: c})

	for key, child := range c.children {
		if !c.seen[key] {
			delete(c.children, key)
			r.dispose(child)
		}
	}
	c.output = out
	c.renders++

	r.mu.Lock()
	r.renders[c.name]++
	r.mu.Unlock()

	if r.opts.onRender != nil {
		r.opts.onRender(c)
	}
}

// dispose runs cleanups below and including c. Callers hold renderMu.
func (r *Root) dispose(c *Component) {
	r.mu.Lock()
	if c.disposed {
		r.mu.Unlock()
		return
	}
	c.disposed = true
	r.mu.Unlock()

	for _, child := range c.children {
		r.dispose(child)
	}
	c.children = nil

	// Run cleanups in reverse order
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}
