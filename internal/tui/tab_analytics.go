package tui

import (
	"strings"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/tui/components"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderAnalyticsTab(cw int) string {
	t := theme.Active
	p := a.period

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	activeStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var kinds []string
	for i, k := range model.PeriodKinds {
		label := string(rune('1'+i)) + " " + string(k)
		if k == p.Kind {
			kinds = append(kinds, activeStyle.Render(label))
		} else {
			kinds = append(kinds, pillStyle.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(" " + strings.Join(kinds, pillStyle.Render("  │  ")))
	b.WriteString(pillStyle.Render("    period: "))
	b.WriteString(activeStyle.Render(cli.FormatPeriod(string(p.Kind), p.Year, p.Month)))
	if a.analyticsLoading {
		b.WriteString(" " + a.spinner.View())
	}
	b.WriteString("\n")

	if a.analyticsErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Danger).Bold(true).Render(" ✗ " + a.analyticsErr))
		b.WriteString("\n")
	}

	if !a.hasAnalytics {
		msg := "Loading..."
		if !a.analyticsLoading {
			msg = "Press r to load this period"
		}
		b.WriteString(components.ContentCard("Analytics", pillStyle.Render(msg), cw))
		return b.String()
	}

	s := a.analytics.Stats
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatMoney(s.TotalIncome, a.currency), Color: t.Income},
		{Label: "Expenses", Value: cli.FormatMoney(s.TotalExpenses, a.currency), Color: t.Expense},
		{Label: "Net", Value: cli.FormatSignedMoney(s.Net, a.currency), Color: t.Signed(s.Net)},
		{Label: "Transactions", Value: cli.FormatNumber(int64(s.TransactionCount))},
	}, cw))
	b.WriteString("\n")

	title, entries := "Expenses by category", a.analytics.ExpenseBreakdown
	if a.showIncome {
		title, entries = "Income by category", a.analytics.IncomeBreakdown
	}
	b.WriteString(components.ContentCard(title+"  [i] switch",
		components.CategoryBars(entries, a.currency, components.CardInnerWidth(cw)), cw))
	return b.String()
}
