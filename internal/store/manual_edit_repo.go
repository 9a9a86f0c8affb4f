package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wardroster/engine/internal/domain"
)

// ManualEditRepo persists the manual edit set of each month.
type ManualEditRepo struct{}

// MarkTx records one manually edited cell.
func (r *ManualEditRepo) MarkTx(ctx context.Context, tx *sql.Tx, month string, key domain.CellKey) error {
	const q = `INSERT OR IGNORE INTO manual_edits (month, worker, day) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, month, key.Worker, key.Day); err != nil {
		return fmt.Errorf("mark manual edit: %w", err)
	}
	return nil
}

// UnmarkTx forgets one manually edited cell.
func (r *ManualEditRepo) UnmarkTx(ctx context.Context, tx *sql.Tx, month string, key domain.CellKey) error {
	const q = `DELETE FROM manual_edits WHERE month = ? AND worker = ? AND day = ?`
	if _, err := tx.ExecContext(ctx, q, month, key.Worker, key.Day); err != nil {
		return fmt.Errorf("unmark manual edit: %w", err)
	}
	return nil
}

// ReplaceTx overwrites the month's manual edit set.
func (r *ManualEditRepo) ReplaceTx(ctx context.Context, tx *sql.Tx, month string, set domain.ManualEditSet) error {
	if err := r.DeleteMonthTx(ctx, tx, month); err != nil {
		return err
	}
	for _, key := range set.Keys() {
		if err := r.MarkTx(ctx, tx, month, key); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMonthTx drops every manual edit of a month.
func (r *ManualEditRepo) DeleteMonthTx(ctx context.Context, tx *sql.Tx, month string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM manual_edits WHERE month = ?`, month); err != nil {
		return fmt.Errorf("delete manual edits: %w", err)
	}
	return nil
}

// RenameWorkerTx moves every manual edit of a worker to a new name.
func (r *ManualEditRepo) RenameWorkerTx(ctx context.Context, tx *sql.Tx, from, to string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE manual_edits SET worker = ? WHERE worker = ?`, to, from); err != nil {
		return fmt.Errorf("rename manual edits: %w", err)
	}
	return nil
}

// DeleteWorkerTx drops every manual edit of a worker.
func (r *ManualEditRepo) DeleteWorkerTx(ctx context.Context, tx *sql.Tx, worker string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM manual_edits WHERE worker = ?`, worker); err != nil {
		return fmt.Errorf("delete worker manual edits: %w", err)
	}
	return nil
}

// ListByMonth returns the manual edit set of a month. A month without
// edits yields an empty set.
func (r *ManualEditRepo) ListByMonth(ctx context.Context, db *sql.DB, month string) (domain.ManualEditSet, error) {
	rows, err := db.QueryContext(ctx, `SELECT worker, day FROM manual_edits WHERE month = ?`, month)
	if err != nil {
		return nil, fmt.Errorf("list manual edits: %w", err)
	}
	defer rows.Close()

	set := domain.ManualEditSet{}
	for rows.Next() {
		var key domain.CellKey
		if err := rows.Scan(&key.Worker, &key.Day); err != nil {
			return nil, fmt.Errorf("scan manual edit: %w", err)
		}
		set[key] = struct{}{}
	}
	return set, rows.Err()
}
