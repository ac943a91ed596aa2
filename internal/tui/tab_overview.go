package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/pipeline"
	"github.com/theirongolddev/finsight/internal/tui/components"
	"github.com/theirongolddev/finsight/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	recentRows       = 6
	topCategories    = 4
	maxSparklineDays = 60
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	stats := a.snap.Stats
	txns := a.snap.Transactions

	if len(txns) == 0 {
		msg := "No transactions yet"
		if a.status.Message != "" {
			msg = "No data loaded. Press f to retry."
		}
		return components.ContentCard("Overview", lipgloss.NewStyle().Foreground(t.TextMuted).Render(msg), cw)
	}

	var incomeN, expenseN int
	for _, txn := range txns {
		if txn.Type == model.Income {
			incomeN++
		} else {
			expenseN++
		}
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatMoney(stats.TotalIncome, a.currency), Note: plural(incomeN, "record"), Color: t.Income},
		{Label: "Expenses", Value: cli.FormatMoney(stats.TotalExpenses, a.currency), Note: plural(expenseN, "record"), Color: t.Expense},
		{Label: "Net", Value: cli.FormatSignedMoney(stats.Net, a.currency), Note: "last " + plural(len(txns), "transaction"), Color: t.Signed(stats.Net)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw}
	}

	spentBody := lipgloss.NewStyle().Foreground(t.TextMuted).Render("No income in this window")
	if stats.TotalIncome > 0 {
		spentBody = components.RatioBar(stats.TotalExpenses/stats.TotalIncome, components.CardInnerWidth(halves[0])-6)
	}
	spent := components.ContentCard("Spent of income", spentBody, halves[0])

	trendW := halves[len(halves)-1]
	daily := dailyExpenses(txns)
	if inner := components.CardInnerWidth(trendW); len(daily) > inner {
		daily = daily[len(daily)-inner:]
	}
	trendBody := components.Sparkline(daily, t.Expense)
	if trendBody == "" {
		trendBody = lipgloss.NewStyle().Foreground(t.TextMuted).Render("No expenses")
	}
	trend := components.ContentCard(fmt.Sprintf("Daily expenses (%dd)", len(daily)), trendBody, trendW)

	if len(halves) == 2 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, spent, trend))
	} else {
		b.WriteString(spent + "\n" + trend)
	}
	b.WriteString("\n")

	if top := topSpending(txns, topCategories); len(top) > 0 {
		b.WriteString(components.ContentCard("Top spending",
			components.CategoryBars(top, a.currency, components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
	}

	b.WriteString(components.ContentCard("Recent", a.renderRecent(txns, components.CardInnerWidth(cw)), cw))
	return b.String()
}

// topSpending ranks expense categories across the loaded records.
func topSpending(txns []model.Transaction, n int) []model.CategoryBreakdown {
	totals := pipeline.CategoryTotals(txns, model.Expense)
	out := make([]model.CategoryBreakdown, 0, min(len(totals), n))
	for _, ct := range totals[:min(len(totals), n)] {
		out = append(out, model.CategoryBreakdown{
			CategoryName: ct.Category,
			Amount:       ct.Amount,
			Percentage:   ct.SharePercent,
		})
	}
	return out
}

func (a App) renderRecent(txns []model.Transaction, w int) string {
	t := theme.Active
	dateStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	n := min(len(txns), recentRows)
	lines := make([]string, 0, n)
	for _, txn := range txns[:n] {
		amount := amountCell(txn, a.currency)
		labelW := max(w-12-lipgloss.Width(amount)-1, 8)
		label := lipgloss.NewStyle().Width(labelW).Render(labelStyle.Render(cli.Truncate(txn.Label(), labelW)))
		lines = append(lines, dateStyle.Render(cli.FormatDate(txn.Date))+"  "+label+" "+amount)
	}
	return strings.Join(lines, "\n")
}

// amountCell renders an amount signed and colored by direction. The record's
// own currency wins over the display default.
func amountCell(txn model.Transaction, currency string) string {
	t := theme.Active
	if txn.Currency != "" {
		currency = txn.Currency
	}
	if txn.Type == model.Income {
		return lipgloss.NewStyle().Foreground(t.Income).Render("+" + cli.FormatMoney(txn.Amount, currency))
	}
	return lipgloss.NewStyle().Foreground(t.Expense).Render("-" + cli.FormatMoney(txn.Amount, currency))
}

// dailyExpenses sums expense amounts per calendar day from the oldest to
// the newest record, with empty days as zero. The span is capped at
// maxSparklineDays, keeping the most recent days.
func dailyExpenses(txns []model.Transaction) []float64 {
	byDay := make(map[time.Time]float64)
	var days []time.Time
	for _, txn := range txns {
		if txn.Date.IsZero() {
			continue
		}
		d := truncateDay(txn.Date)
		if _, ok := byDay[d]; !ok {
			days = append(days, d)
			byDay[d] = 0
		}
		if txn.Type == model.Expense {
			byDay[d] += txn.Amount
		}
	}
	if len(days) == 0 {
		return nil
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first, last := days[0], days[len(days)-1]
	if span := int(last.Sub(first).Hours()/24) + 1; span > maxSparklineDays {
		first = last.AddDate(0, 0, -(maxSparklineDays - 1))
	}

	var out []float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, byDay[d])
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return cli.FormatNumber(int64(n)) + " " + noun + "s"
}
