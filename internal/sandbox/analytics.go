package sandbox

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/store"
)

const (
	minYear = 2000
	maxYear = 2100

	defaultCategoryColor = "#6B7280"
	uncategorized        = "uncategorized"
)

// errBadPeriod is reported to clients as 400.
var errBadPeriod = errors.New("Period must be 'daily', 'monthly', 'yearly', or 'all'")

// periodRange resolves the inclusive [start, end] window for an analytics
// request. Absent year or month default to the current ones; daily always
// means today.
func periodRange(kind model.PeriodKind, year, month int, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	switch kind {
	case model.Daily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.Add(24*time.Hour - 1), nil
	case model.Monthly:
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0).Add(-1), nil
	case model.Yearly:
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0).Add(-1), nil
	case model.All:
		return time.Date(minYear, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(maxYear, 12, 31, 23, 59, 59, 0, time.UTC), nil
	default:
		return time.Time{}, time.Time{}, errBadPeriod
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// periodStats totals records already filtered to the window.
func periodStats(records []model.Transaction) model.PeriodStats {
	income, expenses := decimal.Zero, decimal.Zero
	for _, r := range records {
		amt := decimal.NewFromFloat(r.Amount)
		if r.Type == model.Income {
			income = income.Add(amt)
		} else {
			expenses = expenses.Add(amt)
		}
	}
	return model.PeriodStats{
		TotalIncome:      income.Round(2).InexactFloat64(),
		TotalExpenses:    expenses.Round(2).InexactFloat64(),
		Net:              income.Sub(expenses).Round(2).InexactFloat64(),
		TransactionCount: len(records),
	}
}

// categoryBreakdown splits records of typ by category, largest first.
// Categories are named and colored from cats; unknown ids fall back to
// "Uncategorized" in the default color.
func categoryBreakdown(records []model.Transaction, typ model.TransactionType, cats map[string]store.Category) []model.CategoryBreakdown {
	totals := make(map[string]float64)
	var order []string
	var total float64

	for _, r := range records {
		if r.Type != typ {
			continue
		}
		id := uncategorized
		if r.CategoryID != nil {
			id = *r.CategoryID
		}
		if _, seen := totals[id]; !seen {
			order = append(order, id)
		}
		totals[id] += r.Amount
		total += r.Amount
	}

	out := make([]model.CategoryBreakdown, 0, len(order))
	for _, id := range order {
		amount := totals[id]
		var pct float64
		if total > 0 {
			pct = amount / total * 100
		}

		entry := model.CategoryBreakdown{
			CategoryName: "Uncategorized",
			Amount:       round2(amount),
			Percentage:   round2(pct),
			Color:        defaultCategoryColor,
		}
		if id != uncategorized {
			catID := id
			entry.CategoryID = &catID
		}
		if c, ok := cats[id]; ok {
			entry.CategoryName = c.Name
			entry.Color = c.Color
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}
