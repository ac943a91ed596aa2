package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/finsight/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "€0.00"},
		{0.125, "€0.13"},
		{80, "€80.00"},
		{1234.5, "€1,234.50"},
		{-80, "-€80.00"},
		{1000000.999, "€1,000,001.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount, "€"); got != tt.want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(120, "$"); got != "+$120.00" {
		t.Fatalf("got %q", got)
	}
	if got := FormatSignedMoney(-80, "$"); got != "-$80.00" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := FormatAge(time.Time{}, now); got != "never" {
		t.Fatalf("zero age = %q", got)
	}
	if got := FormatAge(now.Add(-12*time.Second), now); got != "12s ago" {
		t.Fatalf("12s age = %q", got)
	}
	if got := FormatAge(now.Add(-125*time.Second), now); got != "2m ago" {
		t.Fatalf("125s age = %q", got)
	}
}

func TestFormatPeriod(t *testing.T) {
	if got := FormatPeriod("monthly", 2026, 3); got != "monthly 2026-03" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPeriod("yearly", 2025, 0); got != "yearly 2025" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPeriod("all", 0, 0); got != "all" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Groceries", 5); got != "Groc…" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("Rent", 10); got != "Rent" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTableContainsCells(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Recent",
		Headers: []string{"Date", "Amount"},
		Rows: [][]string{
			{"2026-03-01", "€200.00"},
			SeparatorRow,
			{"Total", "€200.00"},
		},
	})
	for _, want := range []string{"Recent", "Date", "2026-03-01", "Total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if RenderTable(Table{}) != "" {
		t.Fatal("empty table should render nothing")
	}
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(model.Stats{TotalIncome: 0, TotalExpenses: 80, Net: -80}, "€")
	if !strings.Contains(out, "-€80.00") {
		t.Fatalf("stats line missing net: %q", out)
	}
}
