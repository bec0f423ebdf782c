package form

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/atom/pkg/bind"
	"github.com/vango-dev/atom/pkg/view"
)

// ErrUnknownTarget is returned by Input for an id no mounted input owns.
var ErrUnknownTarget = errors.New("form: unknown input target")

// Component kinds, as reported by view.Root render statistics.
const (
	KindApp              = "App"
	KindContent          = "ContentContainer"
	KindFormContainer    = "FormContainer"
	KindDisplayContainer = "DisplayContainer"
	KindTextInput        = "TextInput"
	KindDisplay          = "Display"
)

type fieldKey struct {
	index int
	side  Side
}

// View is the mounted component tree of one form.
type View struct {
	fields bind.Source[Fields]
	root   *view.Root
	app    *view.Component

	mu       sync.Mutex
	handlers map[string]func(value string)
	targets  map[fieldKey]string
}

// Mount renders the form tree into root.
func Mount(root *view.Root, fields bind.Source[Fields]) *View {
	v := &View{
		fields:   fields,
		root:     root,
		handlers: make(map[string]func(string)),
		targets:  make(map[fieldKey]string),
	}
	v.app = root.Mount(KindApp, v.renderApp)
	return v
}

// HTML returns the markup of the whole tree as of the last render.
func (v *View) HTML() string {
	return v.app.Output()
}

// Root returns the host the tree is mounted in.
func (v *View) Root() *view.Root {
	return v.root
}

// Close unmounts the tree, releasing every subscription.
func (v *View) Close() {
	v.root.Unmount(v.app)
}

// Target returns the element id of the input for a field.
func (v *View) Target(index int, side Side) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.targets[fieldKey{index, side}]
	return id, ok
}

// Input delivers a value typed into the input with element id target.
// It calls the input's setter synchronously, so it must run wherever the
// application performs writes.
func (v *View) Input(target, value string) error {
	v.mu.Lock()
	h, ok := v.handlers[target]
	v.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	h(value)
	return nil
}

func (v *View) renderApp(ctx *view.Ctx) string {
	return container(ctx.DOMID(), "App", ctx.Child(KindContent, "content", v.renderContent))
}

func (v *View) renderContent(ctx *view.Ctx) string {
	return container(ctx.DOMID(), "ContentContainer",
		ctx.Child(KindFormContainer, "form", v.renderFormContainer)+
			ctx.Child(KindDisplayContainer, "display", v.renderDisplayContainer))
}

func (v *View) renderFormContainer(ctx *view.Ctx) string {
	n, _ := bind.BindSelect(view.Sync[int](ctx), v.fields, Count)

	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(`<div>`)
		for _, side := range Sides {
			b.WriteString(ctx.Child(KindTextInput, side.Label(i), v.textInput(i, side)))
		}
		b.WriteString(`</div>`)
	}
	return container(ctx.DOMID(), "FormContainer", b.String())
}

func (v *View) renderDisplayContainer(ctx *view.Ctx) string {
	n, _ := bind.BindSelect(view.Sync[int](ctx), v.fields, Count)

	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(`<div>`)
		for _, side := range Sides {
			b.WriteString(ctx.Child(KindDisplay, side.Label(i), v.display(i, side)))
		}
		b.WriteString(`</div>`)
	}
	return container(ctx.DOMID(), "DisplayContainer", b.String())
}

func (v *View) textInput(index int, side Side) view.RenderFunc {
	return func(ctx *view.Ctx) string {
		value, set := bind.BindSelect(view.Sync[string](ctx), v.fields, Field(index, side))

		id := ctx.DOMID()
		if ctx.Component().RenderCount() == 0 {
			key := fieldKey{index, side}
			v.mu.Lock()
			v.handlers[id] = func(s string) { set(SetField(index, side, s)) }
			v.targets[key] = id
			v.mu.Unlock()
			ctx.OnCleanup(func() {
				v.mu.Lock()
				delete(v.handlers, id)
				if v.targets[key] == id {
					delete(v.targets, key)
				}
				v.mu.Unlock()
			})
		}

		label := side.Label(index)
		return `<div class="field" id="` + id + `">` + label + `: <input data-target="` + id +
			`" name="` + label + `" value="` + html.EscapeString(value) + `"></div>`
	}
}

func (v *View) display(index int, side Side) view.RenderFunc {
	return func(ctx *view.Ctx) string {
		value, _ := bind.BindSelect(view.Sync[string](ctx), v.fields, Field(index, side))
		return `<div class="value" id="` + ctx.DOMID() + `">` + side.Label(index) + ": " +
			html.EscapeString(value) + `</div>`
	}
}

func container(id, title, body string) string {
	return `<div class="container" id="` + id + `"><h5>` + title + `</h5>` + body + `</div>`
}

// Stats summarizes render counts by component kind.
func Stats(root *view.Root) map[string]int {
	stats := root.RenderStats()
	for _, kind := range []string{KindApp, KindContent, KindFormContainer, KindDisplayContainer, KindTextInput, KindDisplay} {
		if _, ok := stats[kind]; !ok {
			stats[kind] = 0
		}
	}
	return stats
}

// FormatStats renders Stats as "Kind=N" pairs in tree order.
func FormatStats(stats map[string]int) string {
	kinds := []string{KindApp, KindContent, KindFormContainer, KindDisplayContainer, KindTextInput, KindDisplay}
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, k+"="+strconv.Itoa(stats[k]))
	}
	return strings.Join(parts, " ")
}
