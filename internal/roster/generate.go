// Package roster assigns daily duty codes to a ward roster for one month.
//
// Generate runs a single greedy pass in fixed phase order: continuity from
// the previous month, head-nurse autopilot, night blocks, the month-end
// night seed, then the daily day/evening rotation. Cells listed in the
// manual edit set are never overwritten by any phase.
package roster

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/wardroster/engine/internal/calendar"
	"github.com/wardroster/engine/internal/domain"
)

// Notice records a situation the engine recovered from locally.
type Notice struct {
	Code    int    `json:"code"`
	Worker  string `json:"worker,omitempty"`
	Day     int    `json:"day"`
	Message string `json:"message"`
}

// Request is the input of one generation run.
type Request struct {
	Year  int
	Month int
	// Current is the stored grid for the month, if any. Only cells in
	// Manual are carried over; everything else is regenerated.
	Current      *domain.Grid
	Manual       domain.ManualEditSet
	PreviousTail domain.Tail
	Workers      []domain.Worker
	Policy       domain.Policy
	// Rand drives tie-break shuffling. A nil Rand is seeded from the clock.
	Rand *rand.Rand
}

// Result is the output of one generation run.
type Result struct {
	Grid *domain.Grid
	// Tail is the last Policy.TailLength days of Grid, for the next month.
	Tail domain.Tail
	// Manual is the manual edit set restricted to cells that still exist.
	Manual           domain.ManualEditSet
	CalendarFallback bool
	Notices          []Notice
}

// Generate produces a complete grid for the month.
func Generate(req Request) (*Result, error) {
	pl, err := newPlan(req)
	if err != nil {
		return nil, err
	}

	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	ac := newAllocationContext(pl.grid, pl.policy, pl.headNurse)
	resolveContinuity(pl, ac)
	fillHeadNurse(pl, ac)
	allocateNightBlocks(pl, ac)
	seedMonthEnd(pl, ac)
	allocateRotation(pl, ac, rng)

	return &Result{
		Grid:             pl.grid,
		Tail:             pl.grid.Tail(pl.policy.TailLength),
		Manual:           pl.manual,
		CalendarFallback: pl.fallback,
		Notices:          pl.notices,
	}, nil
}

// newPlan validates the request and seeds the grid with the manual cells.
func newPlan(req Request) (*plan, error) {
	if len(req.Workers) == 0 {
		return nil, domain.ErrEmptyRoster
	}
	if err := req.Policy.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(req.Workers))
	seen := make(map[string]bool, len(req.Workers))
	for _, w := range req.Workers {
		if seen[w.Name] {
			return nil, domain.NewEngineError(domain.ErrDuplicateWorker.Code,
				fmt.Sprintf("%s: %q", domain.ErrDuplicateWorker.Message, w.Name))
		}
		seen[w.Name] = true
		names = append(names, w.Name)
	}

	days, fallback := calendar.MonthDays(req.Year, req.Month)
	grid := domain.NewGrid(names, days)

	pl := &plan{
		grid:      grid,
		manual:    seedManual(grid, req.Current, req.Manual),
		tail:      req.PreviousTail,
		policy:    req.Policy,
		headNurse: headNurseOf(req.Workers, req.Policy),
		fallback:  fallback,
	}
	if pl.tail == nil {
		pl.tail = domain.Tail{}
	}
	for _, w := range req.Workers {
		if w.Category != domain.CategoryHeadNurse {
			pl.nightWorkers = append(pl.nightWorkers, w.Name)
		}
	}
	if fallback {
		pl.notice(domain.ErrInvalidCalendar, "", 0,
			fmt.Sprintf("year %d month %d unresolvable, using %d days", req.Year, req.Month, calendar.FallbackDays))
	}
	return pl, nil
}

// seedManual copies every manually edited cell of current into grid and
// returns the keys that were carried over. Keys for removed workers, days
// past the month end or empty cells are dropped.
func seedManual(grid *domain.Grid, current *domain.Grid, manual domain.ManualEditSet) domain.ManualEditSet {
	kept := domain.ManualEditSet{}
	if current == nil {
		return kept
	}
	for key := range manual {
		code := current.Get(key.Worker, key.Day)
		if code.IsUnset() || !grid.HasWorker(key.Worker) || key.Day >= grid.Len() {
			continue
		}
		if err := grid.Set(key.Worker, key.Day, code); err != nil {
			continue
		}
		kept[key] = struct{}{}
	}
	return kept
}
