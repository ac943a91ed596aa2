// Package pipeline reduces transaction records into derived statistics.
package pipeline

import (
	"sort"

	"github.com/theirongolddev/finsight/internal/model"
)

// Aggregate sums records into income, expense and net totals.
// Summation follows input order so results are reproducible for a given
// server response. Any type other than income counts as an expense.
func Aggregate(records []model.Transaction) model.Stats {
	var stats model.Stats
	for _, r := range records {
		if r.Type == model.Income {
			stats.TotalIncome += r.Amount
		} else {
			stats.TotalExpenses += r.Amount
		}
	}
	stats.Net = stats.TotalIncome - stats.TotalExpenses
	return stats
}

// CategoryTotal is the summed amount for one category.
type CategoryTotal struct {
	Category     string
	Amount       float64
	Count        int
	SharePercent float64
}

// CategoryTotals groups records of the given type by category name.
// Result is sorted by amount descending, ties broken by name.
func CategoryTotals(records []model.Transaction, typ model.TransactionType) []CategoryTotal {
	byCat := make(map[string]*CategoryTotal)
	var total float64

	for _, r := range records {
		if r.Type != typ {
			continue
		}
		name := r.Category()
		ct, ok := byCat[name]
		if !ok {
			ct = &CategoryTotal{Category: name}
			byCat[name] = ct
		}
		ct.Amount += r.Amount
		ct.Count++
		total += r.Amount
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		if total > 0 {
			ct.SharePercent = ct.Amount / total * 100
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}
