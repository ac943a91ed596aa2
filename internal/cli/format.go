// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with two decimals, thousands separators and a
// currency symbol. Rounding is done in decimal so 0.125 prints as 0.13.
// e.g., 1234.5 -> "€1,234.50", -80 -> "-€80.00"
func FormatMoney(amount float64, currency string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	frac := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s%s%s.%02d", sign, currency, FormatNumber(whole.IntPart()), frac)
}

// FormatSignedMoney is FormatMoney with an explicit "+" on non-negative values.
func FormatSignedMoney(amount float64, currency string) string {
	if decimal.NewFromFloat(amount).Round(2).IsNegative() {
		return FormatMoney(amount, currency)
	}
	return "+" + FormatMoney(amount, currency)
}

// FormatAge formats how long ago t was, relative to now.
// e.g., 12s -> "12s ago", 125s -> "2m ago"; zero t -> "never"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t).Seconds())
	if secs < 0 {
		secs = 0
	}
	return FormatDuration(secs) + " ago"
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already expressed in percent.
// e.g., 37.5 -> "37.5%"
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDate renders a transaction date; zero dates render as "-".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatPeriod renders an analytics window label.
// e.g., ("monthly", 2026, 3) -> "monthly 2026-03", ("yearly", 2025, 0) -> "yearly 2025"
func FormatPeriod(kind string, year, month int) string {
	switch {
	case year != 0 && month != 0:
		return fmt.Sprintf("%s %04d-%02d", kind, year, month)
	case year != 0:
		return fmt.Sprintf("%s %04d", kind, year)
	case month != 0:
		return fmt.Sprintf("%s month %d", kind, month)
	default:
		return kind
	}
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
