package view

import (
	"strconv"

	"github.com/vango-dev/atom/pkg/atom"
)

// RenderFunc produces a component's markup.
type RenderFunc func(ctx *Ctx) string

// Component is a mounted render function.
type Component struct {
	id     uint64
	name   string
	key    string
	root   *Root
	parent *Component
	render RenderFunc

	children map[string]*Component
	seen     map[string]bool

	// Hook slot storage for stable identity across renders.
	slots   []any
	slotIdx int

	cleanups []func()

	output  string
	renders int

	// dirty and disposed are guarded by root.mu.
	dirty    bool
	disposed bool
}

func (r *Root) newComponent(name, key string, parent *Component, render RenderFunc) *Component {
	return &Component{
		id:     atom.NextID(),
		name:   name,
		key:    key,
		root:   r,
		parent: parent,
		render: render,
	}
}

// ID returns the unique identifier for this component.
func (c *Component) ID() uint64 { return c.id }

// DOMID returns the element id the component's markup should carry.
func (c *Component) DOMID() string { return "v" + strconv.FormatUint(c.id, 10) }

// Name returns the component's kind, used for render statistics.
func (c *Component) Name() string { return c.name }

// Key returns the key the parent mounted this component under.
func (c *Component) Key() string { return c.key }

// Parent returns the parent component, or nil for top-level components.
func (c *Component) Parent() *Component { return c.parent }

// Output returns the markup from the last render.
func (c *Component) Output() string { return c.output }

// RenderCount returns how many times this component has rendered.
func (c *Component) RenderCount() int { return c.renders }

// Ctx is the render-time handle to the component being rendered.
type Ctx struct {
	c *Component
}

// Component returns the component being rendered.
func (ctx *Ctx) Component() *Component {
	return ctx.c
}

// DOMID is shorthand for ctx.Component().DOMID().
func (ctx *Ctx) DOMID() string {
	return ctx.c.DOMID()
}

// OnCleanup registers fn to run when the component is unmounted.
func (ctx *Ctx) OnCleanup(fn func()) {
	ctx.c.cleanups = append(ctx.c.cleanups, fn)
}

// Child renders (or reuses) the child mounted under key and returns its
// markup. A child that is not dirty keeps its previous output.
func (ctx *Ctx) Child(name, key string, render RenderFunc) string {
	c := ctx.c
	r := c.root
	if c.children == nil {
		c.children = make(map[string]*Component)
	}
	c.seen[key] = true

	child, ok := c.children[key]
	if !ok {
		child = r.newComponent(name, key, c, render)
		c.children[key] = child
		r.renderComponent(child)
		return child.output
	}

	child.render = render

	r.mu.Lock()
	dirty := child.dirty
	r.mu.Unlock()
	if dirty {
		r.renderComponent(child)
	}
	return child.output
}

// UseHookSlot returns the stored value for the current hook slot,
// or nil on the first render.
//
// Usage pattern:
//
//	slot := ctx.UseHookSlot()
//	if slot != nil {
//	    return slot.(*state)
//	}
//	s := &state{}
//	ctx.SetHookSlot(s)
func (ctx *Ctx) UseHookSlot() any {
	c := ctx.c
	idx := c.slotIdx
	c.slotIdx++
	if idx < len(c.slots) {
		return c.slots[idx]
	}
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil.
func (ctx *Ctx) SetHookSlot(value any) {
	ctx.c.slots = append(ctx.c.slots, value)
}
