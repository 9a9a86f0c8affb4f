package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wardroster/engine/internal/domain"
)

func TestAuditRepo_RecordAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &AuditRepo{}
	now := time.Now().Unix()

	records := []domain.AuditRecord{
		{ID: "aud-1", Month: "2025-06", Category: "edit", Actor: "ward-clerk", Action: "set_cell", RequestJSON: `{"worker":"Lee","day":3,"code":"V"}`, DecisionJSON: "{}", CreatedAt: now},
		{ID: "aud-2", Month: "2025-06", Category: "schedule", Actor: "ward-clerk", Action: "clear", RequestJSON: "{}", DecisionJSON: "{}", CreatedAt: now + 1},
		{ID: "aud-3", Month: "2025-07", Category: "edit", Actor: "system", Action: "set_cell", RequestJSON: "{}", DecisionJSON: "{}", Severity: "warn", CreatedAt: now + 2},
	}

	for _, r := range records {
		if err := repo.Record(ctx, db, r); err != nil {
			t.Fatalf("Record %s: %v", r.ID, err)
		}
	}

	// List by 2025-06 should return 2 records.
	got, err := repo.ListByMonth(ctx, db, "2025-06")
	if err != nil {
		t.Fatalf("ListByMonth: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "aud-1" {
		t.Errorf("first record ID = %q, want %q", got[0].ID, "aud-1")
	}
	if got[0].Severity != "info" {
		t.Errorf("default severity = %q, want info", got[0].Severity)
	}
	if got[1].ID != "aud-2" {
		t.Errorf("second record ID = %q, want %q", got[1].ID, "aud-2")
	}
}

func TestAuditRepo_GeneratesID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &AuditRepo{}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.RecordTx(ctx, tx, domain.AuditRecord{Month: "2025-06", Category: "edit", Action: "set_cell", CreatedAt: 1}); err != nil {
		t.Fatalf("RecordTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.ListByMonth(ctx, db, "2025-06")
	if err != nil {
		t.Fatalf("ListByMonth: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if _, err := uuid.Parse(got[0].ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", got[0].ID, err)
	}
}
