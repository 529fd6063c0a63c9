// Package usage describes embedding token budget reports.
package usage

import "time"

// Period is the budget window of a report.
type Period string

// Budget windows.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts "day" and "month". An empty string means day.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, true
	case PeriodMonth:
		return PeriodMonth, true
	}
	return "", false
}

// Budget is a snapshot of one token window. A zero limit means unlimited,
// in which case Remaining is -1.
type Budget struct {
	Limit     int64 `json:"tokens_limit"`
	Used      int64 `json:"tokens_used"`
	Remaining int64 `json:"tokens_remaining"`
	Exhausted bool  `json:"is_exhausted"`
}

// NewBudget derives Remaining and Exhausted from limit and used.
func NewBudget(limit, used int64) Budget {
	b := Budget{Limit: limit, Used: used, Remaining: -1}
	if limit > 0 {
		b.Remaining = max(limit-used, 0)
		b.Exhausted = b.Remaining == 0
	}
	return b
}

// Report is the embedding usage of one window.
type Report struct {
	Period      Period    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Budget      Budget    `json:"budget"`
}

// Window returns the UTC bounds of the period containing now.
func Window(p Period, now time.Time) (start, end time.Time) {
	now = now.UTC()
	if p == PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
