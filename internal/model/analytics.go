package model

// PeriodKind selects the analytics window on the server.
type PeriodKind string

const (
	Daily   PeriodKind = "daily"
	Monthly PeriodKind = "monthly"
	Yearly  PeriodKind = "yearly"
	All     PeriodKind = "all"
)

// PeriodKinds lists every kind the server accepts.
var PeriodKinds = []PeriodKind{Daily, Monthly, Yearly, All}

// ValidPeriodKind reports whether s names a known period kind.
func ValidPeriodKind(s string) bool {
	for _, k := range PeriodKinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// AnalyticsPeriod describes an analytics request. Zero Year or Month means the
// dimension is absent.
type AnalyticsPeriod struct {
	Kind  PeriodKind
	Year  int
	Month int
}

// PeriodStats is the server's summary for one analytics window.
type PeriodStats struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	Net              float64 `json:"net"`
	TransactionCount int     `json:"transaction_count"`
}

// CategoryBreakdown is one slice of the per-category split.
type CategoryBreakdown struct {
	CategoryID   *string `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Amount       float64 `json:"amount"`
	Percentage   float64 `json:"percentage"`
	Color        string  `json:"color"`
}

// AnalyticsPayload is the server's analytics response. The cache stores it
// whole and never looks inside.
type AnalyticsPayload struct {
	Period           string              `json:"period"`
	Stats            PeriodStats         `json:"stats"`
	ExpenseBreakdown []CategoryBreakdown `json:"expense_breakdown"`
	IncomeBreakdown  []CategoryBreakdown `json:"income_breakdown"`
}
