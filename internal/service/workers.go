package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wardroster/engine/internal/domain"
)

// ListWorkers returns the roster in order.
func (s *Service) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	return s.WorkerRepo.List(ctx, s.DB)
}

// AddWorker appends a worker to the roster.
func (s *Service) AddWorker(ctx context.Context, w domain.Worker) error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return domain.NewEngineError(domain.ErrInvalidWorker.Code, "worker name is required")
	}
	if w.Category == "" {
		w.Category = domain.CategoryGeneral
	}
	if err := validateCategory(w.Category); err != nil {
		return err
	}
	if err := s.WorkerRepo.Create(ctx, s.DB, w, s.now().Unix()); err != nil {
		return err
	}
	s.Logger.Printf("roster: added worker %q (%s)", w.Name, w.Category)
	return nil
}

// SeedWorkers adds workers only when the roster is empty.
func (s *Service) SeedWorkers(ctx context.Context, workers []domain.Worker) error {
	count, err := s.WorkerRepo.Count(ctx, s.DB)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, w := range workers {
		if err := s.AddWorker(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// SetCategory changes a worker's category.
func (s *Service) SetCategory(ctx context.Context, name string, category domain.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.WorkerRepo.SetCategory(ctx, s.DB, name, category)
}

// RenameWorker renames a worker everywhere: roster, manual edits, leave,
// stored grids and tails.
func (s *Service) RenameWorker(ctx context.Context, from, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return domain.NewEngineError(domain.ErrInvalidWorker.Code, "new worker name is required")
	}
	if from == to {
		return nil
	}
	if _, err := s.WorkerRepo.GetByName(ctx, s.DB, from); err != nil {
		return err
	}

	months, err := s.ScheduleRepo.ListMonths(ctx, s.DB)
	if err != nil {
		return err
	}
	var records []*domain.ScheduleRecord
	for _, m := range months {
		rec, err := s.ScheduleRepo.GetByMonth(ctx, s.DB, m)
		if err != nil {
			return err
		}
		if rec.Grid.HasWorker(from) {
			records = append(records, rec)
		}
	}
	tails, err := s.TailRepo.ListAll(ctx, s.DB)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.WorkerRepo.RenameTx(ctx, tx, from, to); err != nil {
		return err
	}
	if err := s.ManualEditRepo.RenameWorkerTx(ctx, tx, from, to); err != nil {
		return err
	}
	if err := s.LeaveRepo.RenameTx(ctx, tx, from, to); err != nil {
		return err
	}
	for _, rec := range records {
		if err := rec.Grid.RenameWorker(from, to); err != nil {
			return err
		}
		rec.UpdatedAtUnix = now
		if err := s.ScheduleRepo.UpdateTx(ctx, tx, *rec); err != nil {
			return err
		}
	}
	for month, tail := range tails {
		codes, ok := tail[from]
		if !ok {
			continue
		}
		delete(tail, from)
		tail[to] = codes
		if err := s.TailRepo.SaveTx(ctx, tx, month, tail, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.Logger.Printf("roster: renamed worker %q to %q", from, to)
	return nil
}

// RemoveWorker drops a worker from the roster with their manual edits and
// leave allotment. Stored grids keep the row until the month is regenerated.
func (s *Service) RemoveWorker(ctx context.Context, name string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.WorkerRepo.DeleteTx(ctx, tx, name); err != nil {
		return err
	}
	if err := s.ManualEditRepo.DeleteWorkerTx(ctx, tx, name); err != nil {
		return err
	}
	if err := s.LeaveRepo.DeleteTx(ctx, tx, name); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.Logger.Printf("roster: removed worker %q", name)
	return nil
}

// MoveWorker moves a worker to position (0-based, clamped to the roster).
func (s *Service) MoveWorker(ctx context.Context, name string, position int) error {
	workers, err := s.WorkerRepo.List(ctx, s.DB)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(workers))
	found := false
	for _, w := range workers {
		if w.Name == name {
			found = true
			continue
		}
		names = append(names, w.Name)
	}
	if !found {
		return domain.ErrWorkerNotFound
	}
	if position < 0 {
		position = 0
	}
	if position > len(names) {
		position = len(names)
	}
	names = append(names[:position], append([]string{name}, names[position:]...)...)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := s.WorkerRepo.ReorderTx(ctx, tx, names); err != nil {
		return err
	}
	return tx.Commit()
}

// SetLeaveAllotment overrides a worker's annual leave allotment.
func (s *Service) SetLeaveAllotment(ctx context.Context, worker string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.NewEngineError(domain.ErrInvalidWorker.Code, "leave allotment must not be negative")
	}
	if _, err := s.WorkerRepo.GetByName(ctx, s.DB, worker); err != nil {
		return err
	}
	return s.LeaveRepo.Set(ctx, s.DB, worker, amount)
}

func validateCategory(c domain.Category) error {
	switch c {
	case domain.CategoryGeneral, domain.CategoryHeadNurse:
		return nil
	}
	return domain.NewEngineError(domain.ErrInvalidWorker.Code, fmt.Sprintf("unknown category %q", c))
}
