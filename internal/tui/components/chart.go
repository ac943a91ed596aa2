package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a row of block glyphs scaled to the peak.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// CategoryBars renders one labelled bar per breakdown entry, scaled to the
// largest amount. Entries carry their own color from the server; a missing
// or malformed color falls back to the theme accent.
func CategoryBars(entries []model.CategoryBreakdown, currency string, width int) string {
	t := theme.Active
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No data for this period")
	}

	labelW := 0
	peak := 0.0
	for _, e := range entries {
		labelW = max(labelW, lipgloss.Width(e.CategoryName))
		peak = max(peak, e.Amount)
	}
	labelW = min(labelW, 18)

	const valueW = 22
	barW := width - labelW - valueW - 2
	if barW < 5 {
		barW = 5
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Width(labelW)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	trackStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		filled := 0
		if peak > 0 {
			filled = int(e.Amount / peak * float64(barW))
		}
		filled = min(max(filled, 0), barW)

		barStyle := lipgloss.NewStyle().Foreground(barColor(e.Color, t))
		bar := barStyle.Render(strings.Repeat("█", filled)) +
			trackStyle.Render(strings.Repeat("░", barW-filled))

		value := fmt.Sprintf("%s %s", cli.FormatMoney(e.Amount, currency), cli.FormatPercent(e.Percentage))
		lines = append(lines, labelStyle.Render(cli.Truncate(e.CategoryName, labelW))+" "+bar+" "+valueStyle.Render(value))
	}
	return strings.Join(lines, "\n")
}

func barColor(hex string, t theme.Theme) lipgloss.Color {
	if len(hex) == 7 && hex[0] == '#' {
		return lipgloss.Color(hex)
	}
	return t.Accent
}

// RatioBar renders a horizontal bar for a 0..1 ratio with its percentage.
// Ratios above 1 fill the bar and are drawn in the over-spend color.
func RatioBar(ratio float64, width int) string {
	t := theme.Active

	color := t.Spend(ratio)

	filled := int(ratio * float64(width))
	filled = min(max(filled, 0), width)

	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		" " + pctStyle.Render(fmt.Sprintf("%.0f%%", ratio*100))
}
