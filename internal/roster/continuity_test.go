package roster

import (
	"testing"

	"github.com/wardroster/engine/internal/domain"
)

const (
	n = domain.DutyNight
	o = domain.DutyOff
	d = domain.DutyDay
	e = domain.DutyEvening
)

func codesEqual(a, b []domain.DutyCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestContinuationFor(t *testing.T) {
	p := domain.DefaultPolicy()
	tests := []struct {
		name string
		tail []domain.DutyCode
		want []domain.DutyCode
	}{
		{"no tail", nil, nil},
		{"one night", []domain.DutyCode{d, o, d, e, n}, []domain.DutyCode{n, n, o, o}},
		{"two nights", []domain.DutyCode{d, o, d, n, n}, []domain.DutyCode{n, o, o}},
		{"three nights", []domain.DutyCode{d, o, n, n, n}, []domain.DutyCode{o, o}},
		{"block with one rest", []domain.DutyCode{o, n, n, n, o}, []domain.DutyCode{o}},
		{"block fully rested", []domain.DutyCode{n, n, n, o, o}, nil},
		{"short run then off", []domain.DutyCode{d, d, n, n, o}, nil},
		{"over-long night run", []domain.DutyCode{n, n, n, n, n}, nil},
		{"day work", []domain.DutyCode{d, e, e, o, d}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := continuationFor(tt.tail, p)
			if !codesEqual(got, tt.want) {
				t.Errorf("continuationFor(%v) = %v, want %v", tt.tail, got, tt.want)
			}
		})
	}
}

func newTestPlan(t *testing.T, req Request) (*plan, *AllocationContext) {
	t.Helper()
	if req.Policy.WorkCodes == nil {
		req.Policy = domain.DefaultPolicy()
	}
	pl, err := newPlan(req)
	if err != nil {
		t.Fatalf("newPlan: %v", err)
	}
	return pl, newAllocationContext(pl.grid, pl.policy, pl.headNurse)
}

func TestResolveContinuity_WritesForcedCells(t *testing.T) {
	pl, ac := newTestPlan(t, Request{
		Year: 2025, Month: 3,
		Workers:      testWorkers("A", "B"),
		PreviousTail: domain.Tail{"A": {d, o, d, e, n}, "B": {o, n, n, n, o}},
	})
	resolveContinuity(pl, ac)

	if got := pl.grid.Row("A")[:4]; !codesEqual(got, []domain.DutyCode{n, n, o, o}) {
		t.Errorf("A = %v, want [N N O O]", got)
	}
	if got := pl.grid.Get("B", 0); got != o {
		t.Errorf("B day 0 = %s, want O", got)
	}
	if got := pl.grid.Get("B", 1); !got.IsUnset() {
		t.Errorf("B day 1 = %s, want unset", got)
	}
	if ac.Usage[0][n] != 1 || ac.Usage[1][n] != 1 {
		t.Errorf("night usage = %d,%d, want 1,1", ac.Usage[0][n], ac.Usage[1][n])
	}
	if ac.Counts["A"][n] != 2 {
		t.Errorf("A night count = %d, want 2", ac.Counts["A"][n])
	}
}

func TestResolveContinuity_ManualConflictTruncates(t *testing.T) {
	p := domain.DefaultPolicy()
	current := domain.NewGrid([]string{"A", "B"}, make([]domain.Day, 31))
	manual := domain.ManualEditSet{}
	if err := ApplyManualEdit(current, manual, p, "A", 1, d); err != nil {
		t.Fatalf("ApplyManualEdit: %v", err)
	}

	pl, ac := newTestPlan(t, Request{
		Year: 2025, Month: 3,
		Current: current, Manual: manual,
		Workers:      testWorkers("A", "B"),
		PreviousTail: domain.Tail{"A": {d, o, d, n, n}},
		Policy:       p,
	})
	resolveContinuity(pl, ac)

	if got := pl.grid.Get("A", 0); got != n {
		t.Errorf("A day 0 = %s, want N", got)
	}
	if got := pl.grid.Get("A", 1); got != d {
		t.Errorf("A day 1 = %s, want manual D", got)
	}
	if got := pl.grid.Get("A", 2); !got.IsUnset() {
		t.Errorf("A day 2 = %s, want unset after broken continuation", got)
	}
	if len(pl.notices) != 1 || pl.notices[0].Code != domain.ErrManualEditConflict.Code {
		t.Fatalf("notices = %+v, want one manual edit conflict", pl.notices)
	}
}

func TestResolveContinuity_MatchingManualCellContinues(t *testing.T) {
	p := domain.DefaultPolicy()
	current := domain.NewGrid([]string{"A"}, make([]domain.Day, 31))
	manual := domain.ManualEditSet{}
	if err := ApplyManualEdit(current, manual, p, "A", 0, n); err != nil {
		t.Fatalf("ApplyManualEdit: %v", err)
	}

	pl, ac := newTestPlan(t, Request{
		Year: 2025, Month: 3,
		Current: current, Manual: manual,
		Workers:      testWorkers("A"),
		PreviousTail: domain.Tail{"A": {d, o, d, n, n}},
		Policy:       p,
	})
	resolveContinuity(pl, ac)

	if got := pl.grid.Row("A")[:3]; !codesEqual(got, []domain.DutyCode{n, o, o}) {
		t.Errorf("A = %v, want [N O O]", got)
	}
	if len(pl.notices) != 0 {
		t.Errorf("unexpected notices: %+v", pl.notices)
	}
}

func TestResolveContinuity_SkipsHeadNurseCategory(t *testing.T) {
	pl, ac := newTestPlan(t, Request{
		Year: 2025, Month: 3,
		Workers:      []domain.Worker{{Name: "HN", Category: domain.CategoryHeadNurse}},
		PreviousTail: domain.Tail{"HN": {d, o, d, n, n}},
	})
	resolveContinuity(pl, ac)
	if got := pl.grid.Get("HN", 0); !got.IsUnset() {
		t.Errorf("HN day 0 = %s, want unset", got)
	}
}
