package roster

import "github.com/wardroster/engine/internal/domain"

// seedMonthEnd puts one worker on night duty on the last day when nobody
// is, so the next month has a block to continue.
func seedMonthEnd(pl *plan, ac *AllocationContext) {
	last := pl.grid.Len() - 1
	if last < 0 {
		return
	}
	for _, w := range pl.nightWorkers {
		if pl.grid.Get(w, last) == domain.DutyNight {
			return
		}
	}
	if !nightCapOpen(pl, ac, last) {
		return
	}

	best := ""
	for _, w := range pl.nightWorkers {
		if !pl.grid.Get(w, last).IsUnset() {
			continue
		}
		if pl.workRunBefore(w, last)+pl.policy.NightBlockNights > pl.policy.MaxConsecutiveWork {
			continue
		}
		if best == "" || ac.Blocks[w] < ac.Blocks[best] {
			best = w
		}
	}
	if best != "" {
		pl.assign(ac, best, last, domain.DutyNight)
	}
}
