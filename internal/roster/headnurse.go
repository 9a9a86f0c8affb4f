package roster

import "github.com/wardroster/engine/internal/domain"

// headNurseOf returns the worker put on autopilot: the first worker in
// roster order, only when the mode is on and the category matches.
func headNurseOf(workers []domain.Worker, p domain.Policy) string {
	if !p.HeadNurseMode || len(workers) == 0 {
		return ""
	}
	if workers[0].Category != domain.CategoryHeadNurse {
		return ""
	}
	return workers[0].Name
}

// fillHeadNurse gives the head nurse the weekday/weekend default code on
// every empty cell.
func fillHeadNurse(pl *plan, ac *AllocationContext) {
	if pl.headNurse == "" {
		return
	}
	for _, day := range pl.grid.Days {
		code := pl.policy.HeadNurseWeekday
		if day.Weekend {
			code = pl.policy.HeadNurseWeekend
		}
		pl.assign(ac, pl.headNurse, day.Index, code)
	}
}
