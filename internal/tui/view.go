package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/tui/components"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const brand = " ◈ finsight "

func headerWidth() int {
	return lipgloss.Width(brand) + 1
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.settingsForm != nil {
		return a.viewForm(a.settingsForm.View())
	}
	if a.confirmForm != nil {
		return a.viewForm(a.confirmForm.View())
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  finsight needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm(body string) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(1, 2).
		Width(min(a.width-4, 72)).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ finsight"))
	b.WriteString(subtitleStyle.Render(" · personal finance"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Fetching recent transactions..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Hotkey).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o t a", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k g G", "Move through transactions"},
		}},
		{"Dashboard", [][2]string{
			{"r", "Refresh (skipped while data is fresh)"},
			{"f", "Force refresh"},
			{"d", "Delete selected transaction"},
			{"R", "Toggle auto-refresh"},
		}},
		{"Analytics", [][2]string{
			{"1 2 3 4", "Daily / Monthly / Yearly / All time"},
			{"[ ]", "Previous / Next period"},
			{"i", "Switch income / expense breakdown"},
			{"r", "Reload period"},
		}},
		{"General", [][2]string{
			{"s", "Display settings"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()
	bodyH := max(a.height-chromeHeight, minContentHeight)

	brandStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	header := brandStyle.Render(brand) + " " + components.RenderTabBar(a.activeTab)

	var body string
	switch a.activeTab {
	case tabTransactions:
		body = a.renderTransactionsTab(cw, bodyH)
	case tabAnalytics:
		body = a.renderAnalyticsTab(cw)
	default:
		body = a.renderOverviewTab(cw)
	}
	body = padHeight(truncateHeight(body, bodyH), bodyH)

	dataAge := ""
	if !a.snap.FetchedAt.IsZero() {
		dataAge = cli.FormatAge(a.snap.FetchedAt, a.now())
	}
	status := components.RenderStatusBar(components.StatusBar{
		Width:       a.width,
		Loading:     a.busy(),
		Spinner:     a.spinner.View(),
		Error:       a.status.Message,
		Flash:       a.flash,
		DataAge:     dataAge,
		AutoRefresh: a.autoRefresh,
	})

	return header + "\n\n" + body + "\n\n" + status
}
