package roster

import (
	"github.com/wardroster/engine/internal/domain"
)

// AllocationContext holds the counters every phase reads and advances.
// It is rebuilt from the grid once per generation and passed explicitly
// to each phase.
type AllocationContext struct {
	// Usage is the per-day count of each base work code.
	Usage []map[domain.DutyCode]int
	// Counts is the per-worker count of each base work code this month.
	Counts map[string]map[domain.DutyCode]int
	// Blocks is the number of fresh night blocks given to each worker.
	Blocks map[string]int
}

// newAllocationContext recounts usage from the grid. Cells of capExempt
// count toward the worker's own totals but not toward per-day caps.
func newAllocationContext(g *domain.Grid, p domain.Policy, capExempt string) *AllocationContext {
	ac := &AllocationContext{
		Usage:  make([]map[domain.DutyCode]int, g.Len()),
		Counts: make(map[string]map[domain.DutyCode]int, len(g.Workers)),
		Blocks: make(map[string]int, len(g.Workers)),
	}
	for d := range ac.Usage {
		ac.Usage[d] = map[domain.DutyCode]int{}
	}
	for _, w := range g.Workers {
		ac.Counts[w] = map[domain.DutyCode]int{}
		for d := 0; d < g.Len(); d++ {
			code := g.Get(w, d)
			if !p.IsWork(code) {
				continue
			}
			ac.Counts[w][code.Base()]++
			if w != capExempt {
				ac.Usage[d][code.Base()]++
			}
		}
	}
	return ac
}

func (ac *AllocationContext) record(worker string, day int, code domain.DutyCode, p domain.Policy, capped bool) {
	if !p.IsWork(code) {
		return
	}
	ac.Counts[worker][code.Base()]++
	if capped {
		ac.Usage[day][code.Base()]++
	}
}

// plan carries the read-only inputs of one generation plus the grid the
// phases fill in.
type plan struct {
	grid   *domain.Grid
	manual domain.ManualEditSet
	tail   domain.Tail
	policy domain.Policy

	// headNurse is the worker on autopilot, or "" when the mode is off.
	headNurse string
	// nightWorkers excludes head-nurse-category workers, in roster order.
	nightWorkers []string
	fallback     bool

	notices []Notice
}

// assign writes code into an unset, non-manual cell and advances the
// counters. It reports whether the cell was written.
func (pl *plan) assign(ac *AllocationContext, worker string, day int, code domain.DutyCode) bool {
	if pl.manual.Has(worker, day) || !pl.grid.Get(worker, day).IsUnset() {
		return false
	}
	if err := pl.grid.Set(worker, day, code); err != nil {
		return false
	}
	ac.record(worker, day, code, pl.policy, worker != pl.headNurse)
	return true
}

func (pl *plan) notice(kind *domain.EngineError, worker string, day int, msg string) {
	pl.notices = append(pl.notices, Notice{Code: kind.Code, Worker: worker, Day: day, Message: msg})
}

// previousDuty returns the code offset days before day, reading into the
// previous month's tail when day-offset is negative.
func (pl *plan) previousDuty(worker string, day, offset int) domain.DutyCode {
	if day-offset >= 0 {
		return pl.grid.Get(worker, day-offset)
	}
	prev := pl.tail[worker]
	i := len(prev) - (offset - day)
	if i < 0 || i >= len(prev) {
		return domain.Unset
	}
	return prev[i]
}

// workRunBefore counts consecutive work days ending the day before day.
func (pl *plan) workRunBefore(worker string, day int) int {
	n := 0
	limit := day + len(pl.tail[worker])
	for off := 1; off <= limit; off++ {
		if !pl.policy.IsWork(pl.previousDuty(worker, day, off)) {
			break
		}
		n++
	}
	return n
}

// workRunAfter counts consecutive work days already placed after day. A run
// that reaches month end on an unfinished night block is extended by the
// nights the next month will be forced to continue.
func (pl *plan) workRunAfter(worker string, day int) int {
	n, nights := 0, 0
	last := pl.grid.Len() - 1
	for d := day + 1; d <= last; d++ {
		code := pl.grid.Get(worker, d)
		if !pl.policy.IsWork(code) {
			return n
		}
		n++
		if code == domain.DutyNight {
			nights++
		} else {
			nights = 0
		}
	}
	if nights > 0 && nights < pl.policy.NightBlockNights {
		n += pl.policy.NightBlockNights - nights
	}
	return n
}
