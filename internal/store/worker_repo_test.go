package store

import (
	"context"
	"errors"
	"testing"

	"github.com/wardroster/engine/internal/domain"
)

func TestWorkerRepo_CreateAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &WorkerRepo{}

	for i, w := range []domain.Worker{
		{Name: "Kim", Category: domain.CategoryHeadNurse},
		{Name: "Lee", Category: domain.CategoryGeneral},
		{Name: "Park", Category: domain.CategoryGeneral},
	} {
		if err := repo.Create(ctx, db, w, int64(i)); err != nil {
			t.Fatalf("Create %s: %v", w.Name, err)
		}
	}

	got, err := repo.List(ctx, db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 workers, got %d", len(got))
	}
	if got[0].Name != "Kim" || got[0].Category != domain.CategoryHeadNurse {
		t.Errorf("first worker = %+v, want Kim/head_nurse", got[0])
	}
	if got[2].Name != "Park" {
		t.Errorf("last worker = %q, want Park", got[2].Name)
	}

	count, err := repo.Count(ctx, db)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}

func TestWorkerRepo_CreateDuplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &WorkerRepo{}

	if err := repo.Create(ctx, db, domain.Worker{Name: "Lee", Category: domain.CategoryGeneral}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, db, domain.Worker{Name: "Lee", Category: domain.CategoryGeneral}, 1)
	if !errors.Is(err, domain.ErrDuplicateWorker) {
		t.Errorf("err = %v, want %v", err, domain.ErrDuplicateWorker)
	}
}

func TestWorkerRepo_RenameReorderDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &WorkerRepo{}

	for i, name := range []string{"A", "B", "C"} {
		if err := repo.Create(ctx, db, domain.Worker{Name: name, Category: domain.CategoryGeneral}, int64(i)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.RenameTx(ctx, tx, "B", "Bee"); err != nil {
		t.Fatalf("RenameTx: %v", err)
	}
	if err := repo.ReorderTx(ctx, tx, []string{"C", "A", "Bee"}); err != nil {
		t.Fatalf("ReorderTx: %v", err)
	}
	if err := repo.DeleteTx(ctx, tx, "A"); err != nil {
		t.Fatalf("DeleteTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.List(ctx, db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "C" || got[1].Name != "Bee" {
		t.Errorf("roster = %+v, want [C Bee]", got)
	}
}

func TestWorkerRepo_NotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &WorkerRepo{}

	if _, err := repo.GetByName(ctx, db, "nobody"); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Errorf("GetByName err = %v, want %v", err, domain.ErrWorkerNotFound)
	}
	if err := repo.SetCategory(ctx, db, "nobody", domain.CategoryHeadNurse); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Errorf("SetCategory err = %v, want %v", err, domain.ErrWorkerNotFound)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if err := repo.RenameTx(ctx, tx, "nobody", "x"); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Errorf("RenameTx err = %v, want %v", err, domain.ErrWorkerNotFound)
	}
}

func TestWorkerRepo_SetCategory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &WorkerRepo{}

	if err := repo.Create(ctx, db, domain.Worker{Name: "Kim", Category: domain.CategoryGeneral}, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SetCategory(ctx, db, "Kim", domain.CategoryHeadNurse); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	w, err := repo.GetByName(ctx, db, "Kim")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if w.Category != domain.CategoryHeadNurse {
		t.Errorf("Category = %q, want head_nurse", w.Category)
	}
}
