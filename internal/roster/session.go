package roster

import (
	"math/rand"

	"github.com/wardroster/engine/internal/domain"
)

// Session is the caller-owned state of one roster month. It is not safe
// for concurrent use; callers serialize generations per roster.
type Session struct {
	Year         int
	Month        int
	Workers      []domain.Worker
	Policy       domain.Policy
	Grid         *domain.Grid
	Manual       domain.ManualEditSet
	PreviousTail domain.Tail
	Ledger       domain.LeaveLedger
	// Notices from the most recent generation.
	Notices []Notice
}

// NewSession starts an empty session for the month.
func NewSession(year, month int, workers []domain.Worker, p domain.Policy) *Session {
	return &Session{
		Year:    year,
		Month:   month,
		Workers: workers,
		Policy:  p,
		Manual:  domain.ManualEditSet{},
		Ledger:  domain.NewLeaveLedger(p),
	}
}

// Generate regenerates the grid in place and returns the tail for the next
// month.
func (s *Session) Generate(rng *rand.Rand) (domain.Tail, error) {
	res, err := Generate(Request{
		Year:         s.Year,
		Month:        s.Month,
		Current:      s.Grid,
		Manual:       s.Manual,
		PreviousTail: s.PreviousTail,
		Workers:      s.Workers,
		Policy:       s.Policy,
		Rand:         rng,
	})
	if err != nil {
		return nil, err
	}
	s.Grid = res.Grid
	s.Manual = res.Manual
	s.Notices = res.Notices
	return res.Tail, nil
}

// Edit applies a manual edit to the current grid.
func (s *Session) Edit(worker string, day int, code domain.DutyCode) error {
	if s.Grid == nil {
		return domain.ErrScheduleNotFound
	}
	return ApplyManualEdit(s.Grid, s.Manual, s.Policy, worker, day, code)
}

// Summary summarizes the current grid.
func (s *Session) Summary() Report {
	if s.Grid == nil {
		return Report{}
	}
	return Summarize(s.Grid, s.Ledger, s.Policy)
}
