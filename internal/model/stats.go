package model

import "time"

// Stats is the aggregate over the dashboard's record sequence.
type Stats struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Net           float64 `json:"net"`
}

// DashboardSnapshot is the bounded list of recent records plus its aggregate.
// A zero FetchedAt means no dashboard fetch has succeeded yet.
type DashboardSnapshot struct {
	Transactions []Transaction `json:"transactions"`
	Stats        Stats         `json:"stats"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// HasData reports whether the snapshot holds at least one record.
func (s DashboardSnapshot) HasData() bool {
	return len(s.Transactions) > 0
}
