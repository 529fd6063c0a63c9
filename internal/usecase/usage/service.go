package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/chatdesk/internal/domain/usage"
)

// Service reports embedding token usage.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when no budget is configured; usage
// is then reported as zero against an unlimited budget.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds the report for the window of period containing now.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := domusage.Window(period, s.now())

	var limit, used int64
	if s.br != nil {
		if period == domusage.PeriodMonth {
			limit, used = s.br.MonthlyLimit(), s.br.MonthlyUsed()
		} else {
			limit, used = s.br.DailyLimit(), s.br.DailyUsed()
		}
	}

	return domusage.Report{
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		Budget:      domusage.NewBudget(limit, used),
	}
}
