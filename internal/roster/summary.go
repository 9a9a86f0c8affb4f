package roster

import (
	"github.com/shopspring/decimal"

	"github.com/wardroster/engine/internal/domain"
)

var (
	quarterDay = decimal.RequireFromString("0.25")
	halfDay    = decimal.RequireFromString("0.5")
)

// WorkerSummary aggregates one worker's month.
type WorkerSummary struct {
	Worker         string                  `json:"worker"`
	Counts         map[domain.DutyCode]int `json:"counts"`
	Off            int                     `json:"off"`
	TotalWork      int                     `json:"total_work"`
	WeekendWork    int                     `json:"weekend_work"`
	LeaveUsed      decimal.Decimal         `json:"leave_used"`
	CarryOverLeave decimal.Decimal         `json:"carry_over_leave"`
	RemainingLeave decimal.Decimal         `json:"remaining_leave"`
}

// Report is the summary of a whole grid, one row per worker in roster order.
type Report struct {
	Rows []WorkerSummary `json:"rows"`
}

// Row returns the summary for worker.
func (r Report) Row(worker string) (WorkerSummary, bool) {
	for _, s := range r.Rows {
		if s.Worker == worker {
			return s, true
		}
	}
	return WorkerSummary{}, false
}

// Summarize counts duty codes, weekend work and leave balances. It only
// reads the grid; an empty grid yields an empty report.
func Summarize(g *domain.Grid, ledger domain.LeaveLedger, p domain.Policy) Report {
	if g.Empty() {
		return Report{}
	}
	report := Report{Rows: make([]WorkerSummary, 0, len(g.Workers))}
	for _, w := range g.Workers {
		s := WorkerSummary{
			Worker:         w,
			Counts:         map[domain.DutyCode]int{},
			CarryOverLeave: ledger.CarryOver,
		}
		used := decimal.Zero
		for _, day := range g.Days {
			code := g.Get(w, day.Index)
			if code.IsUnset() {
				continue
			}
			s.Counts[code]++
			switch {
			case code == domain.DutyOff:
				s.Off++
			case p.IsWork(code):
				s.TotalWork++
				if day.Weekend {
					s.WeekendWork++
				}
			case code == domain.DutyMakeup:
				s.TotalWork++
			}
			switch code {
			case domain.LeaveFull:
				used = used.Add(decimal.NewFromInt(1))
			case domain.LeaveHalf:
				used = used.Add(halfDay)
			case domain.LeaveQuarter:
				used = used.Add(quarterDay)
			}
		}
		s.LeaveUsed = used
		s.RemainingLeave = ledger.Allotment(w).Sub(used)
		report.Rows = append(report.Rows, s)
	}
	return report
}
