package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finsight/internal/model"
)

// Palette (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorIncome    = lipgloss.Color("#879A39")
	ColorExpense   = lipgloss.Color("#D14D41")
	ColorWarn      = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle   = lipgloss.NewStyle().Foreground(ColorText)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorTextMuted)
	incomeStyle  = lipgloss.NewStyle().Foreground(ColorIncome)
	expenseStyle = lipgloss.NewStyle().Foreground(ColorExpense)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// SeparatorRow marks a horizontal rule inside Table.Rows.
var SeparatorRow = []string{"---"}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned and the rest right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(row(t.Headers, widths, headerStyle, true))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == SeparatorRow[0] {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(row(r, widths, valueStyle, false))
	}
	b.WriteString(rule(widths, "╰", "┴", "╯"))

	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i, cell := range cells {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	grow(t.Headers)
	for _, r := range t.Rows {
		grow(r)
	}
	return widths
}

func rule(widths []int, left, mid, right string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
}

func row(cells []string, widths []int, style lipgloss.Style, leftAlignAll bool) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("│"))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := max(w-lipgloss.Width(cell), 0)
		if i == 0 || leftAlignAll {
			cell = " " + cell + strings.Repeat(" ", pad) + " "
		} else {
			cell = " " + strings.Repeat(" ", pad) + cell + " "
		}
		b.WriteString(style.Render(cell))
		b.WriteString(dimStyle.Render("│"))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderStats renders the income / expenses / net summary line.
func RenderStats(s model.Stats, currency string) string {
	netStyle := incomeStyle
	if s.Net < 0 {
		netStyle = expenseStyle
	}
	return fmt.Sprintf("  %s %s   %s %s   %s %s",
		mutedStyle.Render("Income"), incomeStyle.Render(FormatMoney(s.TotalIncome, currency)),
		mutedStyle.Render("Expenses"), expenseStyle.Render(FormatMoney(s.TotalExpenses, currency)),
		mutedStyle.Render("Net"), netStyle.Render(FormatSignedMoney(s.Net, currency)),
	)
}

// RenderAmount colors an amount by transaction type.
func RenderAmount(t model.Transaction, currency string) string {
	if t.Currency != "" {
		currency = t.Currency
	}
	if t.Type == model.Income {
		return incomeStyle.Render("+" + FormatMoney(t.Amount, currency))
	}
	return expenseStyle.Render("-" + FormatMoney(t.Amount, currency))
}

// RenderWarning renders a one-line warning.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}

// RenderHorizontalBar renders a bar scaled to maxValue, followed by label.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return "  " + label
	}
	barLen := max(int(value/maxValue*float64(maxWidth)), 0)
	return fmt.Sprintf("  %s %s", dimStyle.Render(strings.Repeat("█", barLen)), label)
}
