// Package service coordinates roster generation, edits and the worker
// roster against the SQLite store.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wardroster/engine/internal/calendar"
	"github.com/wardroster/engine/internal/domain"
	"github.com/wardroster/engine/internal/roster"
	"github.com/wardroster/engine/internal/store"
)

// Service runs roster operations with persistence.
type Service struct {
	DB             *sql.DB
	Policy         domain.Policy
	Logger         *log.Logger
	WorkerRepo     *store.WorkerRepo
	ScheduleRepo   *store.ScheduleRepo
	ManualEditRepo *store.ManualEditRepo
	TailRepo       *store.TailRepo
	LeaveRepo      *store.LeaveRepo
	EventRepo      *store.EventRepo
	SnapshotRepo   *store.SnapshotRepo
	AuditRepo      *store.AuditRepo

	now func() time.Time
}

// NewService creates a service with all dependencies. A nil logger discards
// output.
func NewService(db *sql.DB, p domain.Policy, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		DB:             db,
		Policy:         p,
		Logger:         logger,
		WorkerRepo:     &store.WorkerRepo{},
		ScheduleRepo:   &store.ScheduleRepo{},
		ManualEditRepo: &store.ManualEditRepo{},
		TailRepo:       &store.TailRepo{},
		LeaveRepo:      &store.LeaveRepo{},
		EventRepo:      &store.EventRepo{},
		SnapshotRepo:   &store.SnapshotRepo{},
		AuditRepo:      &store.AuditRepo{},
		now:            time.Now,
	}
}

// GenerateResult describes one completed generation run.
type GenerateResult struct {
	Month            string          `json:"month"`
	RunID            string          `json:"run_id"`
	Seed             int64           `json:"seed"`
	Grid             *domain.Grid    `json:"grid"`
	CalendarFallback bool            `json:"calendar_fallback"`
	Notices          []roster.Notice `json:"notices"`
}

// Generate regenerates a month from the stored roster, manual edits and the
// previous month's tail, then saves grid, tail, snapshot and event in one
// transaction. A zero seed is replaced by a clock-derived one.
func (s *Service) Generate(ctx context.Context, month string, seed int64) (*GenerateResult, error) {
	year, mon, err := calendar.ParseMonthKey(month)
	if err != nil {
		return nil, err
	}
	month = calendar.MonthKey(year, mon)

	workers, err := s.WorkerRepo.List(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	existing, err := s.ScheduleRepo.GetByMonth(ctx, s.DB, month)
	if err != nil && !errors.Is(err, domain.ErrScheduleNotFound) {
		return nil, err
	}
	manual, err := s.ManualEditRepo.ListByMonth(ctx, s.DB, month)
	if err != nil {
		return nil, err
	}
	prevTail, err := s.TailRepo.Get(ctx, s.DB, calendar.MonthKey(calendar.PreviousMonth(year, mon)))
	if err != nil {
		return nil, err
	}
	lastSeq, err := s.EventRepo.LastSeq(ctx, s.DB, month)
	if err != nil {
		return nil, err
	}

	if seed == 0 {
		seed = s.now().UnixNano()
	}
	req := roster.Request{
		Year:         year,
		Month:        mon,
		Manual:       manual,
		PreviousTail: prevTail,
		Workers:      workers,
		Policy:       s.Policy,
		Rand:         rand.New(rand.NewSource(seed)),
	}
	if existing != nil {
		req.Current = existing.Grid
	}
	res, err := roster.Generate(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	now := s.now().Unix()
	gridJSON, err := json.Marshal(res.Grid)
	if err != nil {
		return nil, fmt.Errorf("marshal grid: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	newSeq := lastSeq + 1
	rec := domain.ScheduleRecord{
		Month:            month,
		Grid:             res.Grid,
		StateVersion:     1,
		LastEventSeq:     newSeq,
		CalendarFallback: res.CalendarFallback,
		UpdatedAtUnix:    now,
	}
	if existing != nil {
		rec.StateVersion = existing.StateVersion
		if err := s.ScheduleRepo.UpdateTx(ctx, tx, rec); err != nil {
			return nil, err
		}
	} else if err := s.ScheduleRepo.CreateTx(ctx, tx, rec); err != nil {
		return nil, err
	}

	if err := s.ManualEditRepo.ReplaceTx(ctx, tx, month, res.Manual); err != nil {
		return nil, err
	}
	if err := s.TailRepo.SaveTx(ctx, tx, month, res.Tail, now); err != nil {
		return nil, err
	}

	snap := domain.ScheduleSnapshot{
		Month:        month,
		RunID:        runID,
		SnapshotJSON: string(gridJSON),
		CreatedAt:    now,
	}
	if err := s.SnapshotRepo.SaveTx(ctx, tx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"run_id":            runID,
		"seed":              seed,
		"notices":           len(res.Notices),
		"calendar_fallback": res.CalendarFallback,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	event := domain.GenerationEvent{
		Month:       month,
		SeqNo:       newSeq,
		EventType:   domain.EventGenerated,
		PayloadJSON: string(payload),
		CreatedAt:   now,
	}
	if err := s.EventRepo.AppendTx(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("append generated event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.Logger.Printf("roster %s: generated run=%s workers=%d notices=%d", month, runID, len(workers), len(res.Notices))
	for _, n := range res.Notices {
		s.Logger.Printf("roster %s: notice %d worker=%q day=%d: %s", month, n.Code, n.Worker, n.Day, n.Message)
	}

	return &GenerateResult{
		Month:            month,
		RunID:            runID,
		Seed:             seed,
		Grid:             res.Grid,
		CalendarFallback: res.CalendarFallback,
		Notices:          res.Notices,
	}, nil
}

// CellEdit is one manual change to a stored grid.
type CellEdit struct {
	Worker string `json:"worker"`
	Day    int    `json:"day"`
	Code   string `json:"code"`
	Actor  string `json:"actor"`
}

// EditCell applies a manual edit to a stored month. Edits inside the tail
// window refresh the stored tail so the next month continues from them.
func (s *Service) EditCell(ctx context.Context, month string, edit CellEdit) (*domain.Grid, error) {
	month, err := normalizeMonth(month)
	if err != nil {
		return nil, err
	}
	rec, err := s.ScheduleRepo.GetByMonth(ctx, s.DB, month)
	if err != nil {
		return nil, err
	}
	manual, err := s.ManualEditRepo.ListByMonth(ctx, s.DB, month)
	if err != nil {
		return nil, err
	}
	lastSeq, err := s.EventRepo.LastSeq(ctx, s.DB, month)
	if err != nil {
		return nil, err
	}

	code, err := s.Policy.ParseDutyCode(edit.Code)
	if err != nil {
		return nil, err
	}
	if err := roster.ApplyManualEdit(rec.Grid, manual, s.Policy, edit.Worker, edit.Day, code); err != nil {
		return nil, err
	}

	now := s.now().Unix()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	newSeq := lastSeq + 1
	updated := *rec
	updated.LastEventSeq = newSeq
	updated.UpdatedAtUnix = now
	if err := s.ScheduleRepo.UpdateTx(ctx, tx, updated); err != nil {
		return nil, err
	}

	key := domain.CellKey{Worker: edit.Worker, Day: edit.Day}
	if code.IsUnset() {
		err = s.ManualEditRepo.UnmarkTx(ctx, tx, month, key)
	} else {
		err = s.ManualEditRepo.MarkTx(ctx, tx, month, key)
	}
	if err != nil {
		return nil, err
	}

	if edit.Day >= rec.Grid.Len()-s.Policy.TailLength {
		if err := s.TailRepo.SaveTx(ctx, tx, month, rec.Grid.Tail(s.Policy.TailLength), now); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(edit)
	if err != nil {
		return nil, fmt.Errorf("marshal edit: %w", err)
	}
	event := domain.GenerationEvent{
		Month:       month,
		SeqNo:       newSeq,
		EventType:   domain.EventCellSet,
		PayloadJSON: string(payload),
		CreatedAt:   now,
	}
	if err := s.EventRepo.AppendTx(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("append edit event: %w", err)
	}
	if err := s.AuditRepo.RecordTx(ctx, tx, domain.AuditRecord{
		Month:        month,
		Category:     "edit",
		Actor:        edit.Actor,
		Action:       "set_cell",
		RequestJSON:  string(payload),
		DecisionJSON: "{}",
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.Logger.Printf("roster %s: %s set %s day %d to %q", month, actorName(edit.Actor), edit.Worker, edit.Day, code)
	return rec.Grid, nil
}

// Schedule returns the stored month and its manual edit set.
func (s *Service) Schedule(ctx context.Context, month string) (*domain.ScheduleRecord, domain.ManualEditSet, error) {
	month, err := normalizeMonth(month)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.ScheduleRepo.GetByMonth(ctx, s.DB, month)
	if err != nil {
		return nil, nil, err
	}
	manual, err := s.ManualEditRepo.ListByMonth(ctx, s.DB, month)
	if err != nil {
		return nil, nil, err
	}
	return rec, manual, nil
}

// Summary reports per-worker totals for a month. A month that was never
// generated yields an empty report.
func (s *Service) Summary(ctx context.Context, month string) (roster.Report, error) {
	month, err := normalizeMonth(month)
	if err != nil {
		return roster.Report{}, err
	}
	rec, err := s.ScheduleRepo.GetByMonth(ctx, s.DB, month)
	if err != nil {
		if errors.Is(err, domain.ErrScheduleNotFound) {
			return roster.Report{}, nil
		}
		return roster.Report{}, err
	}
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return roster.Report{}, err
	}
	return roster.Summarize(rec.Grid, ledger, s.Policy), nil
}

// Clear deletes a month's grid, manual edits and tail. The event log and
// snapshots are kept.
func (s *Service) Clear(ctx context.Context, month, actor string) error {
	month, err := normalizeMonth(month)
	if err != nil {
		return err
	}
	if _, err := s.ScheduleRepo.GetByMonth(ctx, s.DB, month); err != nil {
		return err
	}
	lastSeq, err := s.EventRepo.LastSeq(ctx, s.DB, month)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.ScheduleRepo.DeleteTx(ctx, tx, month); err != nil {
		return err
	}
	if err := s.ManualEditRepo.DeleteMonthTx(ctx, tx, month); err != nil {
		return err
	}
	if err := s.TailRepo.DeleteTx(ctx, tx, month); err != nil {
		return err
	}
	event := domain.GenerationEvent{
		Month:       month,
		SeqNo:       lastSeq + 1,
		EventType:   domain.EventCleared,
		PayloadJSON: "{}",
		CreatedAt:   now,
	}
	if err := s.EventRepo.AppendTx(ctx, tx, event); err != nil {
		return fmt.Errorf("append clear event: %w", err)
	}
	if err := s.AuditRepo.RecordTx(ctx, tx, domain.AuditRecord{
		Month:        month,
		Category:     "schedule",
		Actor:        actor,
		Action:       "clear",
		RequestJSON:  "{}",
		DecisionJSON: "{}",
		Severity:     "warn",
		CreatedAt:    now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.Logger.Printf("roster %s: cleared by %s", month, actorName(actor))
	return nil
}

// Events returns the month's event log after sinceSeq.
func (s *Service) Events(ctx context.Context, month string, sinceSeq int64) ([]domain.GenerationEvent, error) {
	month, err := normalizeMonth(month)
	if err != nil {
		return nil, err
	}
	return s.EventRepo.ListByMonth(ctx, s.DB, month, sinceSeq)
}

// Ledger builds the leave ledger from the policy defaults and stored
// allotments.
func (s *Service) Ledger(ctx context.Context) (domain.LeaveLedger, error) {
	ledger := domain.NewLeaveLedger(s.Policy)
	allotments, err := s.LeaveRepo.All(ctx, s.DB)
	if err != nil {
		return ledger, err
	}
	for w, v := range allotments {
		ledger.Allotments[w] = v
	}
	return ledger, nil
}

func normalizeMonth(month string) (string, error) {
	year, mon, err := calendar.ParseMonthKey(month)
	if err != nil {
		return "", err
	}
	return calendar.MonthKey(year, mon), nil
}

func actorName(actor string) string {
	if actor == "" {
		return "anonymous"
	}
	return actor
}
