package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/finsight/internal/model"
)

func benchRecords(n int) []model.Transaction {
	cats := []string{"groceries", "rent", "salary", "travel"}
	records := make([]model.Transaction, n)
	for i := range records {
		typ := model.Expense
		if i%5 == 0 {
			typ = model.Income
		}
		cat := cats[i%len(cats)]
		records[i] = model.Transaction{
			ID:           fmt.Sprintf("tx-%d", i),
			Type:         typ,
			Amount:       float64(i%97) + 0.35,
			CategoryName: &cat,
		}
	}
	return records
}

func BenchmarkAggregate(b *testing.B) {
	records := benchRecords(50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(records)
	}
}

func BenchmarkAggregateLarge(b *testing.B) {
	records := benchRecords(10_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(records)
	}
}

func BenchmarkCategoryTotals(b *testing.B) {
	records := benchRecords(10_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CategoryTotals(records, model.Expense)
	}
}
