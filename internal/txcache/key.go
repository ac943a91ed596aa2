package txcache

import (
	"net/url"
	"strconv"

	"github.com/theirongolddev/finsight/internal/model"
)

// AnalyticsKey builds the cache slot key for a period: kind, year and month
// joined by "-", with an absent (zero) year or month rendered as "".
// Periods that normalize to the same key share one slot.
func AnalyticsKey(p model.AnalyticsPeriod) string {
	return string(p.Kind) + "-" + optionalInt(p.Year) + "-" + optionalInt(p.Month)
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// AnalyticsPath returns the request path for a period kind.
func AnalyticsPath(kind model.PeriodKind) string {
	return "/transactions/analytics/" + url.PathEscape(string(kind))
}

// AnalyticsQuery returns the year/month query, omitting absent dimensions.
func AnalyticsQuery(p model.AnalyticsPeriod) url.Values {
	q := url.Values{}
	if p.Year != 0 {
		q.Set("year", strconv.Itoa(p.Year))
	}
	if p.Month != 0 {
		q.Set("month", strconv.Itoa(p.Month))
	}
	return q
}
