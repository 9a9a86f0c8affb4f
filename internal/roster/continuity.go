package roster

import (
	"fmt"

	"github.com/wardroster/engine/internal/domain"
)

// continuationFor returns the codes the new month must open with to finish
// a night block left in progress by the previous month's tail.
func continuationFor(prev []domain.DutyCode, p domain.Policy) []domain.DutyCode {
	if len(prev) == 0 {
		return nil
	}
	pattern := make([]domain.DutyCode, 0, p.NightBlockNights+p.NightBlockRest)
	for i := 0; i < p.NightBlockNights; i++ {
		pattern = append(pattern, domain.DutyNight)
	}
	for i := 0; i < p.NightBlockRest; i++ {
		pattern = append(pattern, domain.DutyOff)
	}

	nights := trailingRun(prev, domain.DutyNight)
	if nights >= 1 && nights <= p.NightBlockNights {
		return pattern[nights:]
	}

	// A finished block whose rest days were cut off by the month end.
	offs := trailingRun(prev, domain.DutyOff)
	if offs >= 1 && offs < p.NightBlockRest {
		if trailingRun(prev[:len(prev)-offs], domain.DutyNight) >= p.NightBlockNights {
			return pattern[p.NightBlockNights+offs:]
		}
	}
	return nil
}

func trailingRun(codes []domain.DutyCode, code domain.DutyCode) int {
	n := 0
	for i := len(codes) - 1; i >= 0 && codes[i] == code; i-- {
		n++
	}
	return n
}

// resolveContinuity forces the first days of the month to continue night
// blocks from the previous month. A conflicting manual cell ends that
// worker's forced sequence.
func resolveContinuity(pl *plan, ac *AllocationContext) {
	for _, w := range pl.nightWorkers {
		forced := continuationFor(pl.tail[w], pl.policy)
		for day, code := range forced {
			if day >= pl.grid.Len() {
				break
			}
			existing := pl.grid.Get(w, day)
			if !existing.IsUnset() {
				if existing == code {
					continue
				}
				pl.notice(domain.ErrManualEditConflict, w, day,
					fmt.Sprintf("continuation needs %s, cell holds %s", code, existing))
				break
			}
			pl.assign(ac, w, day, code)
		}
	}
}
