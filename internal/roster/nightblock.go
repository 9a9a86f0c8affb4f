package roster

import "github.com/wardroster/engine/internal/domain"

// nightCapOpen reports whether one more night worker fits on day.
func nightCapOpen(pl *plan, ac *AllocationContext, day int) bool {
	limit, ok := pl.policy.Cap(domain.DutyNight, pl.grid.Days[day].Weekend)
	return !ok || ac.Usage[day][domain.DutyNight] < limit
}

// windowEmpty reports whether every cell in [start, end) is unset for worker.
func windowEmpty(pl *plan, worker string, start, end int) bool {
	for d := start; d < end; d++ {
		if !pl.grid.Get(worker, d).IsUnset() {
			return false
		}
	}
	return true
}

// allocateNightBlocks places fresh night blocks left to right, giving each
// to the eligible worker with the fewest blocks so far.
func allocateNightBlocks(pl *plan, ac *AllocationContext) {
	nights := pl.policy.NightBlockNights
	last := pl.grid.Len()

	for start := 0; start+nights <= last; start++ {
		open := true
		for d := start; d < start+nights; d++ {
			if !nightCapOpen(pl, ac, d) {
				open = false
				break
			}
		}
		if !open {
			continue
		}

		restStart := start + nights
		restLen := pl.policy.NightBlockRest
		if restStart+restLen > last {
			restLen = last - restStart
		}

		best := ""
		for _, w := range pl.nightWorkers {
			if ac.Blocks[w] >= pl.policy.NightBlockCap {
				continue
			}
			if !windowEmpty(pl, w, start, restStart+restLen) {
				continue
			}
			if pl.workRunBefore(w, start)+nights > pl.policy.MaxConsecutiveWork {
				continue
			}
			if best == "" || ac.Blocks[w] < ac.Blocks[best] {
				best = w
			}
		}
		if best == "" {
			continue
		}

		for d := start; d < restStart; d++ {
			pl.assign(ac, best, d, domain.DutyNight)
		}
		for d := restStart; d < restStart+restLen; d++ {
			pl.assign(ac, best, d, domain.DutyOff)
		}
		ac.Blocks[best]++
	}
}
