package components

import (
	"strings"

	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is a single entry in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs. Each shortcut is the first letter.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o'},
	{Name: "Transactions", Key: 't'},
	{Name: "Analytics", Key: 'a'},
}

// TabVisualWidth is the rendered width of a tab. Inactive tabs show their
// shortcut in brackets, which adds two columns.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += 2
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Selection).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		// "[o]verview" with one column of padding either side.
		parts[i] = " " + dimStyle.Render("[") + keyStyle.Render(tab.Name[:1]) + dimStyle.Render("]") +
			inactiveStyle.Render(tab.Name[1:]) + " "
	}
	return strings.Join(parts, " ")
}

// TabIdxByKey returns the tab index for a shortcut key, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
