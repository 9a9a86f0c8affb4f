package store

import (
	"context"
	"errors"
	"testing"

	"github.com/wardroster/engine/internal/calendar"
	"github.com/wardroster/engine/internal/domain"
)

func juneGrid(t *testing.T) *domain.Grid {
	t.Helper()
	days, _ := calendar.MonthDays(2025, 6)
	g := domain.NewGrid([]string{"A", "B"}, days)
	if err := g.Set("A", 0, domain.DutyNight); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := g.Set("B", 29, domain.LeaveFull); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return g
}

func TestScheduleRepo_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &ScheduleRepo{}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	rec := domain.ScheduleRecord{Month: "2025-06", Grid: juneGrid(t), StateVersion: 1, UpdatedAtUnix: 100}
	if err := repo.CreateTx(ctx, tx, rec); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.GetByMonth(ctx, db, "2025-06")
	if err != nil {
		t.Fatalf("GetByMonth: %v", err)
	}
	if got.StateVersion != 1 {
		t.Errorf("StateVersion = %d, want 1", got.StateVersion)
	}
	if got.Grid.Len() != 30 {
		t.Errorf("grid days = %d, want 30", got.Grid.Len())
	}
	if got.Grid.Get("A", 0) != domain.DutyNight || got.Grid.Get("B", 29) != domain.LeaveFull {
		t.Errorf("grid cells not restored")
	}
	if !got.Grid.Days[0].Weekend {
		t.Error("June 1 2025 should be a weekend day")
	}
}

func TestScheduleRepo_OptimisticLock(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &ScheduleRepo{}

	tx, _ := db.Begin()
	rec := domain.ScheduleRecord{Month: "2025-06", Grid: juneGrid(t), StateVersion: 1}
	if err := repo.CreateTx(ctx, tx, rec); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	tx.Commit()

	// First update with the right version succeeds and bumps it to 2.
	tx, _ = db.Begin()
	rec.LastEventSeq = 1
	if err := repo.UpdateTx(ctx, tx, rec); err != nil {
		t.Fatalf("UpdateTx: %v", err)
	}
	tx.Commit()

	// A stale writer still holding version 1 loses.
	tx, _ = db.Begin()
	defer tx.Rollback()
	if err := repo.UpdateTx(ctx, tx, rec); !errors.Is(err, domain.ErrOptimisticLock) {
		t.Errorf("err = %v, want %v", err, domain.ErrOptimisticLock)
	}
}

func TestScheduleRepo_NotFoundAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &ScheduleRepo{}

	if _, err := repo.GetByMonth(ctx, db, "2025-06"); !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Fatalf("err = %v, want %v", err, domain.ErrScheduleNotFound)
	}

	tx, _ := db.Begin()
	for _, m := range []string{"2025-07", "2025-06"} {
		if err := repo.CreateTx(ctx, tx, domain.ScheduleRecord{Month: m, Grid: juneGrid(t), StateVersion: 1}); err != nil {
			t.Fatalf("CreateTx %s: %v", m, err)
		}
	}
	tx.Commit()

	months, err := repo.ListMonths(ctx, db)
	if err != nil {
		t.Fatalf("ListMonths: %v", err)
	}
	if len(months) != 2 || months[0] != "2025-06" {
		t.Errorf("months = %v, want [2025-06 2025-07]", months)
	}

	tx, _ = db.Begin()
	if err := repo.DeleteTx(ctx, tx, "2025-06"); err != nil {
		t.Fatalf("DeleteTx: %v", err)
	}
	tx.Commit()
	if _, err := repo.GetByMonth(ctx, db, "2025-06"); !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Errorf("after delete err = %v, want %v", err, domain.ErrScheduleNotFound)
	}
}
