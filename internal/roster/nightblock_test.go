package roster

import (
	"testing"

	"github.com/wardroster/engine/internal/domain"
)

func TestAllocateNightBlocks_ShapeAndCap(t *testing.T) {
	pl, ac := newTestPlan(t, Request{Year: 2025, Month: 6, Workers: testWorkers("A", "B", "C")})
	allocateNightBlocks(pl, ac)

	for day := 0; day < pl.grid.Len(); day++ {
		if ac.Usage[day][n] > 1 {
			t.Fatalf("day %d: %d nights", day, ac.Usage[day][n])
		}
	}
	for _, w := range pl.grid.Workers {
		if ac.Blocks[w] > pl.policy.NightBlockCap {
			t.Errorf("%s: %d blocks, cap %d", w, ac.Blocks[w], pl.policy.NightBlockCap)
		}
	}
	// First block goes to the first worker in roster order.
	want := []domain.DutyCode{n, n, n, o, o}
	if got := pl.grid.Row("A")[:5]; !codesEqual(got, want) {
		t.Errorf("A = %v, want %v", got, want)
	}
}

func TestAllocateNightBlocks_FewestBlocksFirst(t *testing.T) {
	pl, ac := newTestPlan(t, Request{Year: 2025, Month: 6, Workers: testWorkers("A", "B")})
	allocateNightBlocks(pl, ac)
	if ac.Blocks["A"] != 2 || ac.Blocks["B"] != 2 {
		t.Errorf("blocks A=%d B=%d, want 2 and 2", ac.Blocks["A"], ac.Blocks["B"])
	}
	if got := pl.grid.Get("B", 3); got != n {
		t.Errorf("B day 3 = %s, want N", got)
	}
}

func TestAllocateNightBlocks_RespectsPriorWorkRun(t *testing.T) {
	pl, ac := newTestPlan(t, Request{
		Year: 2025, Month: 6,
		Workers:      testWorkers("A", "B"),
		PreviousTail: domain.Tail{"A": {o, d, d, e, e}},
	})
	allocateNightBlocks(pl, ac)
	if got := pl.grid.Get("A", 0); got == n {
		t.Error("A given a night block straight after four work days")
	}
	if got := pl.grid.Get("B", 0); got != n {
		t.Errorf("B day 0 = %s, want N", got)
	}
}

func TestAllocateNightBlocks_TruncatesRestAtMonthEnd(t *testing.T) {
	p := domain.DefaultPolicy()
	p.NightBlockCap = 10
	pl, ac := newTestPlan(t, Request{Year: 2025, Month: 6, Workers: testWorkers("A"), Policy: p})
	allocateNightBlocks(pl, ac)
	// Blocks start at 0, 5, 10, 15, 20, 25; the last one has no room to rest.
	row := pl.grid.Row("A")
	want := []domain.DutyCode{n, n, n, o, o}
	if !codesEqual(row[25:30], want) {
		t.Errorf("tail of A = %v, want %v", row[25:30], want)
	}
	if ac.Blocks["A"] != 6 {
		t.Errorf("blocks = %d, want 6", ac.Blocks["A"])
	}
}

func TestSeedMonthEnd(t *testing.T) {
	pl, ac := newTestPlan(t, Request{Year: 2025, Month: 6, Workers: testWorkers("A", "B")})
	ac.Blocks["A"] = 1
	seedMonthEnd(pl, ac)
	last := pl.grid.Len() - 1
	if got := pl.grid.Get("B", last); got != n {
		t.Errorf("B last day = %s, want N (fewest blocks)", got)
	}
	if got := pl.grid.Get("A", last); !got.IsUnset() {
		t.Errorf("A last day = %s, want unset", got)
	}

	// Already covered: no second seed.
	seedMonthEnd(pl, ac)
	if got := pl.grid.Get("A", last); !got.IsUnset() {
		t.Errorf("A last day = %s after second seed, want unset", got)
	}
}

func TestSeedMonthEnd_NoEligibleWorker(t *testing.T) {
	pl, ac := newTestPlan(t, Request{Year: 2025, Month: 6, Workers: testWorkers("A")})
	last := pl.grid.Len() - 1
	pl.assign(ac, "A", last, domain.LeaveFull)
	seedMonthEnd(pl, ac)
	if got := pl.grid.Get("A", last); got != domain.LeaveFull {
		t.Errorf("A last day = %s, want V", got)
	}
}
