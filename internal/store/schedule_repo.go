package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wardroster/engine/internal/domain"
)

// ScheduleRepo handles persistence for ScheduleRecord rows.
type ScheduleRepo struct{}

// CreateTx inserts a new schedule within an existing transaction.
func (r *ScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec domain.ScheduleRecord) error {
	gridJSON, err := json.Marshal(rec.Grid)
	if err != nil {
		return fmt.Errorf("marshal grid: %w", err)
	}

	const q = `INSERT INTO schedules (month, grid_json, state_version, last_event_seq, calendar_fallback, updated_at_unix)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		rec.Month,
		string(gridJSON),
		rec.StateVersion,
		rec.LastEventSeq,
		boolToInt(rec.CalendarFallback),
		rec.UpdatedAtUnix,
	)
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// UpdateTx updates a schedule within a transaction using optimistic locking.
// The update only succeeds if the stored state_version matches rec.StateVersion.
func (r *ScheduleRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rec domain.ScheduleRecord) error {
	gridJSON, err := json.Marshal(rec.Grid)
	if err != nil {
		return fmt.Errorf("marshal grid: %w", err)
	}

	const q = `UPDATE schedules SET
		grid_json = ?,
		state_version = state_version + 1,
		last_event_seq = ?,
		calendar_fallback = ?,
		updated_at_unix = ?
	WHERE month = ? AND state_version = ?`

	res, err := tx.ExecContext(ctx, q,
		string(gridJSON),
		rec.LastEventSeq,
		boolToInt(rec.CalendarFallback),
		rec.UpdatedAtUnix,
		rec.Month,
		rec.StateVersion,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrOptimisticLock
	}
	return nil
}

// DeleteTx removes the schedule for a month. Deleting a missing schedule is
// not an error.
func (r *ScheduleRepo) DeleteTx(ctx context.Context, tx *sql.Tx, month string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE month = ?`, month); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// GetByMonth retrieves the schedule for a month.
func (r *ScheduleRepo) GetByMonth(ctx context.Context, db *sql.DB, month string) (*domain.ScheduleRecord, error) {
	const q = `SELECT month, grid_json, state_version, last_event_seq, calendar_fallback, updated_at_unix
FROM schedules WHERE month = ?`

	row := db.QueryRowContext(ctx, q, month)

	var rec domain.ScheduleRecord
	var gridJSON string
	var fallback int
	err := row.Scan(&rec.Month, &gridJSON, &rec.StateVersion, &rec.LastEventSeq, &fallback, &rec.UpdatedAtUnix)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	rec.CalendarFallback = fallback != 0

	var g domain.Grid
	if err := json.Unmarshal([]byte(gridJSON), &g); err != nil {
		return nil, fmt.Errorf("unmarshal grid: %w", err)
	}
	rec.Grid = &g
	return &rec, nil
}

// ListMonths returns every stored month key in ascending order.
func (r *ScheduleRepo) ListMonths(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT month FROM schedules ORDER BY month ASC`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan schedule month: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
