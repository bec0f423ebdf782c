package view

import (
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/atom/pkg/atom"
	"github.com/vango-dev/atom/pkg/bind"
)

func TestMountRendersOnce(t *testing.T) {
	root := NewRoot()
	c := root.Mount("Hello", func(ctx *Ctx) string { return "hi" })

	if c.Output() != "hi" {
		t.Errorf("expected hi, got %q", c.Output())
	}
	if c.RenderCount() != 1 || root.Renders("Hello") != 1 {
		t.Errorf("expected 1 render, got %d / %d", c.RenderCount(), root.Renders("Hello"))
	}
}

func TestSyncRerendersOnChange(t *testing.T) {
	name := atom.New("Ada")
	root := NewRoot()

	c := root.Mount("Name", func(ctx *Ctx) string {
		return "<p>" + bind.BindValue(Sync[string](ctx), name) + "</p>"
	})

	name.Set("Grace")
	if root.Pending() != 1 {
		t.Fatalf("expected 1 pending component, got %d", root.Pending())
	}

	rendered := root.Flush()
	if len(rendered) != 1 || rendered[0] != c {
		t.Fatalf("expected Name to re-render, got %v", rendered)
	}
	if c.Output() != "<p>Grace</p>" {
		t.Errorf("unexpected output %q", c.Output())
	}
}

func TestEqualSnapshotDoesNotDirty(t *testing.T) {
	type pair struct{ First, Last string }
	fields := atom.New([]pair{{"a", "A"}, {"b", "B"}})
	root := NewRoot()

	selectorCalls := 0
	c := root.Mount("Display", func(ctx *Ctx) string {
		v, _ := bind.BindSelect(Sync[string](ctx), fields, func(p []pair) string {
			selectorCalls++
			return p[1].First
		})
		return v
	})

	fields.Update(func(prev []pair) []pair {
		next := append([]pair(nil), prev...)
		next[0].First = "z"
		return next
	})

	// Initial read, the re-read after subscribing, then the notification.
	if selectorCalls != 3 {
		t.Errorf("selector must run on every notification, got %d calls", selectorCalls)
	}
	if root.Pending() != 0 {
		t.Errorf("unchanged slice must not dirty the component, pending=%d", root.Pending())
	}
	if len(root.Flush()) != 0 || c.RenderCount() != 1 {
		t.Errorf("expected no re-render, render count %d", c.RenderCount())
	}
}

func TestWriteBeforeSubscribeIsNotLost(t *testing.T) {
	n := atom.New(1)
	root := NewRoot()

	c := root.Mount("N", func(ctx *Ctx) string {
		v := UseSyncExternalStore(ctx, func(onChange func()) func() {
			// Another writer lands after the initial read.
			n.Set(2)
			return n.Subscribe(func(int, int) { onChange() })
		}, n.Get, n.Get, nil)
		return strconv.Itoa(v)
	})

	if root.Pending() != 1 {
		t.Fatalf("expected the missed write to dirty the component, pending=%d", root.Pending())
	}
	root.Flush()
	if c.Output() != "2" {
		t.Errorf("output = %q after flush, atom = %d", c.Output(), n.Get())
	}
	if c.RenderCount() != 2 {
		t.Errorf("expected 2 renders, got %d", c.RenderCount())
	}
}

func TestUnchangedSnapshotAfterSubscribeDoesNotDirty(t *testing.T) {
	n := atom.New(1)
	root := NewRoot()
	root.Mount("N", func(ctx *Ctx) string {
		return strconv.Itoa(bind.BindValue(Sync[int](ctx), n))
	})
	if root.Pending() != 0 {
		t.Errorf("expected nothing pending after mount, got %d", root.Pending())
	}
}

func TestSyncFuncCustomEquality(t *testing.T) {
	n := atom.New(1)
	root := NewRoot()

	parity := func(a, b int) bool { return a%2 == b%2 }
	c := root.Mount("Parity", func(ctx *Ctx) string {
		return strconv.Itoa(bind.BindValue(SyncFunc(ctx, parity), n))
	})

	n.Set(3)
	root.Flush()
	if c.RenderCount() != 1 {
		t.Errorf("same parity must not re-render, got %d renders", c.RenderCount())
	}

	n.Set(4)
	root.Flush()
	if c.RenderCount() != 2 || c.Output() != "4" {
		t.Errorf("expected re-render with 4, got %d renders, output %q", c.RenderCount(), c.Output())
	}
}

func TestUnmountUnsubscribes(t *testing.T) {
	n := atom.New(0)
	root := NewRoot()

	c := root.Mount("Counter", func(ctx *Ctx) string {
		return strconv.Itoa(bind.BindValue(Sync[int](ctx), n))
	})
	if n.Len() != 1 {
		t.Fatalf("expected 1 subscriber after mount, got %d", n.Len())
	}

	root.Unmount(c)
	if n.Len() != 0 {
		t.Errorf("expected 0 subscribers after unmount, got %d", n.Len())
	}

	n.Set(5)
	if root.Pending() != 0 {
		t.Errorf("unmounted component must not be dirtied")
	}
}

func TestChildrenAreKeyedAndMemoized(t *testing.T) {
	items := atom.New([]string{"a", "b", "c"})
	root := NewRoot()

	list := root.Mount("List", func(ctx *Ctx) string {
		all := bind.BindValue(Sync[[]string](ctx), items)
		var b strings.Builder
		for i := range all {
			i := i
			b.WriteString(ctx.Child("Item", strconv.Itoa(i), func(ctx *Ctx) string {
				v, _ := bind.BindSelect(Sync[string](ctx), items, func(s []string) string {
					if i >= len(s) {
						return ""
					}
					return s[i]
				})
				return v
			}))
		}
		return b.String()
	})

	if list.Output() != "abc" {
		t.Fatalf("unexpected output %q", list.Output())
	}
	if root.Renders("Item") != 3 {
		t.Fatalf("expected 3 item renders, got %d", root.Renders("Item"))
	}

	items.Set([]string{"a", "X", "c"})
	root.Flush()

	if list.Output() != "aXc" {
		t.Errorf("unexpected output %q", list.Output())
	}
	if got := root.Renders("Item"); got != 4 {
		t.Errorf("only the changed item should re-render, item renders=%d", got)
	}

	items.Set([]string{"a"})
	root.Flush()

	if list.Output() != "a" {
		t.Errorf("unexpected output %q", list.Output())
	}
	// List plus the one remaining item.
	if items.Len() != 2 {
		t.Errorf("removed children must unsubscribe, subscribers=%d", items.Len())
	}
}

func TestOnRenderAndOnDirtyHooks(t *testing.T) {
	n := atom.New(0)
	wakes := 0
	var rendered []string

	root := NewRoot(
		OnDirty(func() { wakes++ }),
		OnRender(func(c *Component) { rendered = append(rendered, c.Output()) }),
	)
	root.Mount("N", func(ctx *Ctx) string {
		return strconv.Itoa(bind.BindValue(Sync[int](ctx), n))
	})

	n.Set(1)
	n.Set(2)
	if wakes != 1 {
		t.Errorf("a dirty component is queued once, got %d wakes", wakes)
	}

	root.Flush()
	if len(rendered) != 2 || rendered[1] != "2" {
		t.Errorf("rendered = %v, want [0 2]", rendered)
	}
}

func TestCloseRunsCleanupsInReverse(t *testing.T) {
	root := NewRoot()
	var order []string

	root.Mount("A", func(ctx *Ctx) string {
		ctx.OnCleanup(func() { order = append(order, "a1") })
		ctx.OnCleanup(func() { order = append(order, "a2") })
		return ""
	})

	root.Close()
	root.Close()

	if strings.Join(order, ",") != "a2,a1" {
		t.Errorf("cleanup order = %v, want [a2 a1]", order)
	}
}

func TestSelectorFaultPropagatesToNotifier(t *testing.T) {
	items := atom.New([]string{"a"})
	root := NewRoot()
	root.Mount("Bad", func(ctx *Ctx) string {
		v, _ := bind.BindSelect(Sync[string](ctx), items, func(s []string) string { return s[0] })
		return v
	})

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected selector fault to propagate")
		}
	}()
	// The selector runs in the change notification, on the setter's call.
	items.Set([]string{})
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		eq   bool
	}{
		{"int", Equal(1, 1)},
		{"string", Equal("a", "a")},
		{"slice", Equal([]int{1, 2}, []int{1, 2})},
		{"struct", Equal(struct{ A int }{1}, struct{ A int }{1})},
	}
	for _, tt := range tests {
		if !tt.eq {
			t.Errorf("%s: expected equal", tt.name)
		}
	}
	if Equal("a", "b") || Equal([]int{1}, []int{2}) {
		t.Error("expected different values to be unequal")
	}
}
