package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wardroster/engine/internal/domain"
)

func workerNames(t *testing.T, svc *Service) []string {
	t.Helper()
	ws, err := svc.ListWorkers(context.Background())
	if err != nil {
		t.Fatalf("ListWorkers: %v", err)
	}
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.Name
	}
	return names
}

func TestService_AddWorkerValidation(t *testing.T) {
	svc, _ := newTestService(t, "A")
	ctx := context.Background()

	if err := svc.AddWorker(ctx, domain.Worker{Name: "  "}); !errors.Is(err, domain.ErrInvalidWorker) {
		t.Errorf("blank name err = %v", err)
	}
	if err := svc.AddWorker(ctx, domain.Worker{Name: "B", Category: "doctor"}); !errors.Is(err, domain.ErrInvalidWorker) {
		t.Errorf("bad category err = %v", err)
	}
	if err := svc.AddWorker(ctx, domain.Worker{Name: "A"}); !errors.Is(err, domain.ErrDuplicateWorker) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestService_SeedWorkersOnlyWhenEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SeedWorkers(ctx, []domain.Worker{{Name: "A"}, {Name: "B"}}); err != nil {
		t.Fatalf("SeedWorkers: %v", err)
	}
	if err := svc.SeedWorkers(ctx, []domain.Worker{{Name: "C"}}); err != nil {
		t.Fatalf("second SeedWorkers: %v", err)
	}
	if got := workerNames(t, svc); len(got) != 2 {
		t.Errorf("roster = %v, want [A B]", got)
	}
}

func TestService_MoveWorker(t *testing.T) {
	svc, _ := newTestService(t, "A", "B", "C")
	ctx := context.Background()

	if err := svc.MoveWorker(ctx, "C", 0); err != nil {
		t.Fatalf("MoveWorker: %v", err)
	}
	if got := workerNames(t, svc); got[0] != "C" || got[1] != "A" || got[2] != "B" {
		t.Errorf("roster = %v, want [C A B]", got)
	}
	if err := svc.MoveWorker(ctx, "C", 99); err != nil {
		t.Fatalf("MoveWorker clamp: %v", err)
	}
	if got := workerNames(t, svc); got[2] != "C" {
		t.Errorf("roster = %v, want C last", got)
	}
	if err := svc.MoveWorker(ctx, "Z", 0); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Errorf("missing worker err = %v", err)
	}
}

func TestService_RenameWorkerRewritesHistory(t *testing.T) {
	svc, _ := newTestService(t, "A", "B", "C", "D", "E")
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "2025-06", 1); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.EditCell(ctx, "2025-06", CellEdit{Worker: "B", Day: 2, Code: "V"}); err != nil {
		t.Fatalf("EditCell: %v", err)
	}
	if err := svc.SetLeaveAllotment(ctx, "B", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("SetLeaveAllotment: %v", err)
	}

	if err := svc.RenameWorker(ctx, "B", "Bee"); err != nil {
		t.Fatalf("RenameWorker: %v", err)
	}

	rec, manual, err := svc.Schedule(ctx, "2025-06")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec.Grid.HasWorker("B") || !rec.Grid.HasWorker("Bee") {
		t.Errorf("grid workers = %v", rec.Grid.Workers)
	}
	if rec.Grid.Workers[1] != "Bee" {
		t.Errorf("renamed worker moved to %v", rec.Grid.Workers)
	}
	if !manual.Has("Bee", 2) {
		t.Error("manual edit not renamed")
	}
	tail, _ := svc.TailRepo.Get(ctx, svc.DB, "2025-06")
	if _, ok := tail["Bee"]; !ok {
		t.Error("tail not renamed")
	}
	report, err := svc.Summary(ctx, "2025-06")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	row, _ := report.Row("Bee")
	if !row.RemainingLeave.Equal(decimal.NewFromInt(9)) {
		t.Errorf("Bee remaining = %s, want 9", row.RemainingLeave)
	}

	if err := svc.RenameWorker(ctx, "Bee", "A"); !errors.Is(err, domain.ErrDuplicateWorker) {
		t.Errorf("rename onto existing err = %v", err)
	}
}

func TestService_RemoveWorker(t *testing.T) {
	svc, _ := newTestService(t, "A", "B", "C")
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "2025-06", 1); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.EditCell(ctx, "2025-06", CellEdit{Worker: "B", Day: 2, Code: "V"}); err != nil {
		t.Fatalf("EditCell: %v", err)
	}
	if err := svc.RemoveWorker(ctx, "B"); err != nil {
		t.Fatalf("RemoveWorker: %v", err)
	}
	if err := svc.RemoveWorker(ctx, "B"); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Errorf("second remove err = %v", err)
	}

	res, err := svc.Generate(ctx, "2025-06", 2)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if res.Grid.HasWorker("B") {
		t.Error("removed worker still in regenerated grid")
	}
}

func TestService_SetCategoryAndLeave(t *testing.T) {
	svc, _ := newTestService(t, "A")
	ctx := context.Background()

	if err := svc.SetCategory(ctx, "A", domain.CategoryHeadNurse); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if err := svc.SetCategory(ctx, "A", "intern"); !errors.Is(err, domain.ErrInvalidWorker) {
		t.Errorf("bad category err = %v", err)
	}
	if err := svc.SetLeaveAllotment(ctx, "Z", decimal.NewFromInt(1)); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Errorf("unknown worker err = %v", err)
	}
	if err := svc.SetLeaveAllotment(ctx, "A", decimal.NewFromInt(-1)); !errors.Is(err, domain.ErrInvalidWorker) {
		t.Errorf("negative allotment err = %v", err)
	}

	ledger, err := svc.Ledger(ctx)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if !ledger.Allotment("A").Equal(domain.DefaultPolicy().AnnualLeave) {
		t.Errorf("A allotment = %s, want default", ledger.Allotment("A"))
	}
}
