// Package tui is a terminal front end for the paired-field form. It binds
// every visible field through bind.BindSelect with its own host, so it
// exercises the adapter without the HTML view tree.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/atom/pkg/bind"
	"github.com/vango-dev/atom/pkg/form"
)

const defaultRows = 20

// changedMsg reports that at least one bound cell has a new value.
type changedMsg struct{}

// Model is the bubbletea model of the form.
type Model struct {
	fields bind.Source[form.Fields]
	host   *host
	styles Styles

	row    int
	side   int
	offset int
	rows   int

	editing bool
	input   textinput.Model
}

// New creates a Model over fields.
func New(fields bind.Source[form.Fields]) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 22

	return Model{
		fields: fields,
		host:   newHost(),
		styles: DefaultStyles(),
		rows:   defaultRows,
		input:  ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Close releases every subscription the model holds.
func (m Model) Close() {
	m.host.close()
}

// waitForChange blocks until a bound cell changes.
func (m Model) waitForChange() tea.Cmd {
	h := m.host
	return func() tea.Msg {
		select {
		case <-h.changed:
			return changedMsg{}
		case <-h.done:
			return nil
		}
	}
}

// count reads the number of pairs without subscribing.
func (m Model) count() int {
	n, _ := bind.BindSelect(bind.Static[int](), m.fields, form.Count)
	return n
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.rows = max(1, msg.Height-4)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Close()
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	// Cursor blinks and other input internals.
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.count()
	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < n-1 {
			m.row++
		}
	case "left", "h", "right", "l", "tab":
		m.side = 1 - m.side
	case "enter":
		m.editing = true
		m.input.SetValue(form.Field(m.row, form.Sides[m.side])(m.fields.Get()))
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	}
	m.scroll()
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		_, set := bind.Bind(bind.Static[form.Fields](), m.fields)
		set(form.SetField(m.row, form.Sides[m.side], after))
	}
	return m, cmd
}

// scroll keeps the selected row visible and releases cells that scrolled
// out of view.
func (m *Model) scroll() {
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+m.rows {
		m.offset = m.row - m.rows + 1
	}

	keep := make(map[string]bool, 2*m.rows)
	for i := m.offset; i < m.offset+m.rows; i++ {
		for _, side := range form.Sides {
			keep[side.Label(i)] = true
		}
	}
	m.host.retain(keep)
}

// View implements tea.Model.
func (m Model) View() string {
	fields, _ := bind.Bind(bind.Static[form.Fields](), m.fields)
	n := form.Count(fields)

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("atomdemo"))
	b.WriteString(" ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d/%d filled", form.Filled(fields), 2*n)))
	b.WriteString("\n\n")

	end := min(n, m.offset+m.rows)
	for i := m.offset; i < end; i++ {
		for s, side := range form.Sides {
			label := side.Label(i)
			value, _ := bind.BindSelect(m.host.sync(label), m.fields, form.Field(i, side))

			b.WriteString(m.styles.Label.Render(label))
			selected := i == m.row && s == m.side
			switch {
			case selected && m.editing:
				b.WriteString(m.styles.Selected.Render(m.input.View()))
			case selected:
				b.WriteString(m.styles.Selected.Render(value))
			default:
				b.WriteString(m.styles.Value.Render(value))
			}
		}
		b.WriteString("\n")
	}

	help := "↑/↓ move • ←/→ side • enter edit • q quit"
	if m.editing {
		help = "type to edit • enter/esc done"
	}
	b.WriteString(m.styles.Help.Render(help))
	return b.String()
}
