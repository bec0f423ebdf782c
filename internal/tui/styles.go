package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#8BC34A")
	accent  = lipgloss.Color("#2196F3")
	muted   = lipgloss.Color("#7a8599")
	danger  = lipgloss.Color("#e53935")
)

// Styles holds the lipgloss styles of the form.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Label:    lipgloss.NewStyle().Foreground(muted).Width(10),
		Value:    lipgloss.NewStyle().Width(24),
		Selected: lipgloss.NewStyle().Width(24).Bold(true).Foreground(accent),
		Error:    lipgloss.NewStyle().Foreground(danger),
		Help:     lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
