package tui

import (
	"strings"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/tui/components"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	colDate     = 10
	colCategory = 16
	colAmount   = 14
)

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	txns := a.snap.Transactions

	if len(txns) == 0 {
		return components.ContentCard("Transactions", lipgloss.NewStyle().Foreground(t.TextMuted).Render("No transactions"), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := max(inner-colDate-colCategory-colAmount-8, 10)

	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Selection).Bold(true)

	cell := func(s string, w int) string {
		return lipgloss.NewStyle().Width(w).Render(cli.Truncate(s, w))
	}

	// Card border, title, column header and scroll hint take five lines.
	rows := max(h-5, 1)
	offset := max(a.cursor-rows+1, 0)
	end := min(offset+rows, len(txns))

	var b strings.Builder
	b.WriteString(headerStyle.Render("  " + cell("Date", colDate) + "  " + cell("Description", labelW) + "  " +
		cell("Category", colCategory) + "  " + lipgloss.NewStyle().Width(colAmount).Align(lipgloss.Right).Render("Amount")))

	for i := offset; i < end; i++ {
		txn := txns[i]
		amount := lipgloss.NewStyle().Width(colAmount).Align(lipgloss.Right).Render(amountCell(txn, a.currency))
		line := cell(cli.FormatDate(txn.Date), colDate) + "  " + cell(txn.Label(), labelW) + "  " +
			cell(txn.Category(), colCategory) + "  "

		b.WriteString("\n")
		if i == a.cursor {
			b.WriteString(selStyle.Render("▸ "+line) + amount)
		} else {
			b.WriteString(rowStyle.Render("  "+line) + amount)
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(cli.FormatNumber(int64(a.cursor+1)) + "/" + cli.FormatNumber(int64(len(txns))) + "  [d]elete  [j/k] move"))

	return components.ContentCard("Transactions", b.String(), cw)
}
