package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wardroster/engine/internal/domain"
)

// EventRepo handles persistence for GenerationEvent records.
type EventRepo struct{}

// AppendTx inserts a generation event within an existing transaction.
func (r *EventRepo) AppendTx(ctx context.Context, tx *sql.Tx, event domain.GenerationEvent) error {
	const q = `INSERT INTO generation_events (month, seq_no, event_type, payload_json, created_at)
VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		event.Month,
		event.SeqNo,
		event.EventType,
		event.PayloadJSON,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// LastSeq returns the highest sequence number logged for a month, or 0.
func (r *EventRepo) LastSeq(ctx context.Context, db *sql.DB, month string) (int64, error) {
	var seq int64
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq_no), 0) FROM generation_events WHERE month = ?`, month).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last event seq: %w", err)
	}
	return seq, nil
}

// ListByMonth returns events for a month with sequence numbers greater than sinceSeq,
// ordered by sequence number ascending.
func (r *EventRepo) ListByMonth(ctx context.Context, db *sql.DB, month string, sinceSeq int64) ([]domain.GenerationEvent, error) {
	const q = `SELECT id, month, seq_no, event_type, payload_json, created_at
FROM generation_events
WHERE month = ? AND seq_no > ?
ORDER BY seq_no ASC`

	rows, err := db.QueryContext(ctx, q, month, sinceSeq)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.GenerationEvent
	for rows.Next() {
		var e domain.GenerationEvent
		if err := rows.Scan(&e.ID, &e.Month, &e.SeqNo, &e.EventType, &e.PayloadJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
