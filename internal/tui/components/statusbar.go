package components

import (
	"strings"

	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar is the content of the bottom line.
type StatusBar struct {
	Width       int
	Loading     bool
	Spinner     string
	Error       string
	Flash       string
	DataAge     string
	AutoRefresh bool
}

// RenderStatusBar renders the bottom status bar. An error outranks a flash
// message, which outranks the key hints.
func RenderStatusBar(s StatusBar) string {
	t := theme.Active

	hint := lipgloss.NewStyle().Foreground(t.TextMuted)
	left := hint.Render(" [?]help  [r]efresh  [q]uit")
	switch {
	case s.Error != "":
		left = lipgloss.NewStyle().Foreground(t.Danger).Bold(true).Render(" ✗ " + s.Error)
	case s.Flash != "":
		left = lipgloss.NewStyle().Foreground(t.Accent).Render(" " + s.Flash)
	}

	var right []string
	if s.Loading {
		right = append(right, lipgloss.NewStyle().Foreground(t.Accent).Render(s.Spinner+" syncing"))
	}
	if s.DataAge != "" {
		right = append(right, hint.Render("Data: "+s.DataAge))
	}
	if s.AutoRefresh {
		right = append(right, lipgloss.NewStyle().Foreground(t.Income).Render("auto"))
	}
	r := strings.Join(right, hint.Render(" │ ")) + " "

	padding := s.Width - lipgloss.Width(left) - lipgloss.Width(r)
	if padding < 0 {
		padding = 0
	}
	return left + strings.Repeat(" ", padding) + r
}
