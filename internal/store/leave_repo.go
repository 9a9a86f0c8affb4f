package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// LeaveRepo stores per-worker annual leave allotments as exact decimals.
type LeaveRepo struct{}

// Set upserts a worker's allotment.
func (r *LeaveRepo) Set(ctx context.Context, db *sql.DB, worker string, amount decimal.Decimal) error {
	const q = `INSERT INTO leave_allotments (worker, amount) VALUES (?, ?)
ON CONFLICT(worker) DO UPDATE SET amount = excluded.amount`
	if _, err := db.ExecContext(ctx, q, worker, amount.String()); err != nil {
		return fmt.Errorf("set leave allotment: %w", err)
	}
	return nil
}

// RenameTx moves an allotment to a new worker name.
func (r *LeaveRepo) RenameTx(ctx context.Context, tx *sql.Tx, from, to string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE leave_allotments SET worker = ? WHERE worker = ?`, to, from); err != nil {
		return fmt.Errorf("rename leave allotment: %w", err)
	}
	return nil
}

// DeleteTx drops a worker's allotment.
func (r *LeaveRepo) DeleteTx(ctx context.Context, tx *sql.Tx, worker string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM leave_allotments WHERE worker = ?`, worker); err != nil {
		return fmt.Errorf("delete leave allotment: %w", err)
	}
	return nil
}

// All returns every stored allotment keyed by worker.
func (r *LeaveRepo) All(ctx context.Context, db *sql.DB) (map[string]decimal.Decimal, error) {
	rows, err := db.QueryContext(ctx, `SELECT worker, amount FROM leave_allotments`)
	if err != nil {
		return nil, fmt.Errorf("list leave allotments: %w", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var worker, amount string
		if err := rows.Scan(&worker, &amount); err != nil {
			return nil, fmt.Errorf("scan leave allotment: %w", err)
		}
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse leave allotment for %s: %w", worker, err)
		}
		out[worker] = v
	}
	return out, rows.Err()
}
