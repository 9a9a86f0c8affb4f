package roster

import (
	"math/rand"

	"github.com/wardroster/engine/internal/calendar"
	"github.com/wardroster/engine/internal/domain"
)

// targetPerWorker is the fair share of each work code per worker:
// ceil(weekdays × distinct work codes / duty workers), at least 1.
func targetPerWorker(pl *plan) int {
	dutyWorkers := len(pl.grid.Workers)
	if pl.headNurse != "" {
		dutyWorkers--
	}
	if dutyWorkers <= 0 {
		return 0
	}
	kinds := map[domain.DutyCode]bool{}
	for _, c := range pl.policy.WorkCodes {
		kinds[c.Base()] = true
	}
	total := calendar.CountWeekdays(pl.grid.Days) * len(kinds)
	target := (total + dutyWorkers - 1) / dutyWorkers
	if target < 1 {
		target = 1
	}
	return target
}

// allocateRotation fills every remaining empty cell day by day.
func allocateRotation(pl *plan, ac *AllocationContext, rng *rand.Rand) {
	target := targetPerWorker(pl)
	for day := 0; day < pl.grid.Len(); day++ {
		var pending []string
		for _, w := range pl.grid.Workers {
			if w == pl.headNurse {
				continue
			}
			if pl.grid.Get(w, day).IsUnset() && !pl.manual.Has(w, day) {
				pending = append(pending, w)
			}
		}
		rng.Shuffle(len(pending), func(i, j int) { pending[i], pending[j] = pending[j], pending[i] })

		for _, w := range pending {
			pl.assign(ac, w, day, chooseRotation(pl, ac, w, day, target))
		}
	}
}

// mandatoryOff applies the rest rules: the day after a night, the rest
// days that follow a night run, and the maximum run of work days.
func mandatoryOff(pl *plan, worker string, day int) bool {
	if pl.previousDuty(worker, day, 1) == domain.DutyNight {
		return true
	}

	offs := 0
	for pl.previousDuty(worker, day, offs+1) == domain.DutyOff {
		offs++
	}
	if offs >= 1 && offs < pl.policy.NightBlockRest {
		nights := 0
		for pl.previousDuty(worker, day, offs+nights+1) == domain.DutyNight {
			nights++
		}
		if nights >= pl.policy.RestAfterNights {
			return true
		}
	}

	return pl.workRunBefore(worker, day)+1+pl.workRunAfter(worker, day) > pl.policy.MaxConsecutiveWork
}

// chooseRotation picks the code for one empty cell, falling back to off.
func chooseRotation(pl *plan, ac *AllocationContext, worker string, day, target int) domain.DutyCode {
	if mandatoryOff(pl, worker, day) {
		return domain.DutyOff
	}

	prev := pl.previousDuty(worker, day, 1)
	forbidden := map[domain.DutyCode]bool{}
	preferred := domain.Unset

	if prev == domain.DutyEvening {
		forbidden[domain.DutyDay] = true
		preferred = domain.DutyEvening
	}
	if prev == domain.DutyOff && pl.previousDuty(worker, day, 2) == domain.DutyNight {
		forbidden[domain.DutyDay] = true
	}
	if preferred.IsUnset() && prev.Base() == domain.DutyDay {
		preferred = domain.DutyEvening
	}
	if preferred.IsUnset() || !contains(pl.policy.RotationCodes, preferred) {
		preferred = leastUsed(pl.policy.RotationCodes, ac.Counts[worker])
	}

	candidates := []domain.DutyCode{preferred}
	for _, c := range pl.policy.RotationCodes {
		if c != preferred {
			candidates = append(candidates, c)
		}
	}

	weekend := pl.grid.Days[day].Weekend
	for _, c := range candidates {
		if forbidden[c] {
			continue
		}
		if limit, ok := pl.policy.Cap(c, weekend); ok && ac.Usage[day][c] >= limit {
			continue
		}
		if ac.Counts[worker][c] >= target+pl.policy.WorkerCapSlack {
			continue
		}
		return c
	}

	pl.notice(domain.ErrUnderCapacity, worker, day, "no rotation code available, assigning off")
	return domain.DutyOff
}

// leastUsed returns the code with the fewest assignments, earliest first on ties.
func leastUsed(codes []domain.DutyCode, counts map[domain.DutyCode]int) domain.DutyCode {
	best := codes[0]
	for _, c := range codes[1:] {
		if counts[c] < counts[best] {
			best = c
		}
	}
	return best
}

func contains(codes []domain.DutyCode, code domain.DutyCode) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
