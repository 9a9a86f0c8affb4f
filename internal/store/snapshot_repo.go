package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/wardroster/engine/internal/domain"
)

// SnapshotRepo handles persistence for ScheduleSnapshot records.
type SnapshotRepo struct{}

// Checksum returns the hex SHA-256 of a snapshot body.
func Checksum(snapshotJSON string) string {
	sum := sha256.Sum256([]byte(snapshotJSON))
	return hex.EncodeToString(sum[:])
}

// SaveTx inserts a snapshot within an existing transaction. An empty
// checksum is filled in from the body.
func (r *SnapshotRepo) SaveTx(ctx context.Context, tx *sql.Tx, snap domain.ScheduleSnapshot) error {
	if snap.Checksum == "" {
		snap.Checksum = Checksum(snap.SnapshotJSON)
	}
	const q = `INSERT INTO schedule_snapshots (month, run_id, snapshot_json, checksum, created_at)
VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		snap.Month,
		snap.RunID,
		snap.SnapshotJSON,
		snap.Checksum,
		snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the most recent snapshot for a month and verifies its
// checksum. Returns nil if no snapshot exists.
func (r *SnapshotRepo) GetLatest(ctx context.Context, db *sql.DB, month string) (*domain.ScheduleSnapshot, error) {
	const q = `SELECT id, month, run_id, snapshot_json, checksum, created_at
FROM schedule_snapshots
WHERE month = ?
ORDER BY created_at DESC, id DESC
LIMIT 1`

	row := db.QueryRowContext(ctx, q, month)

	var s domain.ScheduleSnapshot
	err := row.Scan(&s.ID, &s.Month, &s.RunID, &s.SnapshotJSON, &s.Checksum, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	if Checksum(s.SnapshotJSON) != s.Checksum {
		return nil, domain.ErrSnapshotCorrupt
	}
	return &s, nil
}
