package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wardroster/engine/internal/domain"
)

// TailRepo stores the tail each month hands to the next one.
type TailRepo struct{}

// SaveTx upserts the tail produced by month.
func (r *TailRepo) SaveTx(ctx context.Context, tx *sql.Tx, month string, tail domain.Tail, now int64) error {
	data, err := json.Marshal(tail)
	if err != nil {
		return fmt.Errorf("marshal tail: %w", err)
	}
	const q = `INSERT INTO month_tails (month, tail_json, updated_at_unix) VALUES (?, ?, ?)
ON CONFLICT(month) DO UPDATE SET tail_json = excluded.tail_json, updated_at_unix = excluded.updated_at_unix`
	if _, err := tx.ExecContext(ctx, q, month, string(data), now); err != nil {
		return fmt.Errorf("save tail: %w", err)
	}
	return nil
}

// DeleteTx removes the tail produced by month.
func (r *TailRepo) DeleteTx(ctx context.Context, tx *sql.Tx, month string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM month_tails WHERE month = ?`, month); err != nil {
		return fmt.Errorf("delete tail: %w", err)
	}
	return nil
}

// Get returns the tail produced by month. Returns nil if none is stored.
func (r *TailRepo) Get(ctx context.Context, db *sql.DB, month string) (domain.Tail, error) {
	var data string
	err := db.QueryRowContext(ctx, `SELECT tail_json FROM month_tails WHERE month = ?`, month).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tail: %w", err)
	}
	var tail domain.Tail
	if err := json.Unmarshal([]byte(data), &tail); err != nil {
		return nil, fmt.Errorf("unmarshal tail: %w", err)
	}
	return tail, nil
}

// ListAll returns every stored tail keyed by month.
func (r *TailRepo) ListAll(ctx context.Context, db *sql.DB) (map[string]domain.Tail, error) {
	rows, err := db.QueryContext(ctx, `SELECT month, tail_json FROM month_tails`)
	if err != nil {
		return nil, fmt.Errorf("list tails: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.Tail{}
	for rows.Next() {
		var month, data string
		if err := rows.Scan(&month, &data); err != nil {
			return nil, fmt.Errorf("scan tail: %w", err)
		}
		var tail domain.Tail
		if err := json.Unmarshal([]byte(data), &tail); err != nil {
			return nil, fmt.Errorf("unmarshal tail %s: %w", month, err)
		}
		out[month] = tail
	}
	return out, rows.Err()
}
