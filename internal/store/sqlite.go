// Package store provides SQLite-backed persistence for the roster engine.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS workers (
	name            TEXT PRIMARY KEY,
	category        TEXT NOT NULL DEFAULT 'general',
	position        INTEGER NOT NULL DEFAULT 0,
	created_at_unix INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_workers_position ON workers(position);

CREATE TABLE IF NOT EXISTS schedules (
	month             TEXT PRIMARY KEY,
	grid_json         TEXT NOT NULL DEFAULT '{}',
	state_version     INTEGER NOT NULL DEFAULT 1,
	last_event_seq    INTEGER NOT NULL DEFAULT 0,
	calendar_fallback INTEGER NOT NULL DEFAULT 0,
	updated_at_unix   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS manual_edits (
	month  TEXT NOT NULL,
	worker TEXT NOT NULL,
	day    INTEGER NOT NULL,
	PRIMARY KEY (month, worker, day)
);

CREATE TABLE IF NOT EXISTS month_tails (
	month           TEXT PRIMARY KEY,
	tail_json       TEXT NOT NULL DEFAULT '{}',
	updated_at_unix INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS leave_allotments (
	worker TEXT PRIMARY KEY,
	amount TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS generation_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	month        TEXT NOT NULL,
	seq_no       INTEGER NOT NULL,
	event_type   TEXT NOT NULL,
	payload_json TEXT NOT NULL DEFAULT '{}',
	created_at   INTEGER NOT NULL,
	UNIQUE(month, seq_no)
);
CREATE INDEX IF NOT EXISTS idx_events_month_seq ON generation_events(month, seq_no);

CREATE TABLE IF NOT EXISTS schedule_snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	month         TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	snapshot_json TEXT NOT NULL DEFAULT '{}',
	checksum      TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_month ON schedule_snapshots(month);

CREATE TABLE IF NOT EXISTS audit_records (
	id            TEXT PRIMARY KEY,
	month         TEXT NOT NULL,
	category      TEXT NOT NULL,
	actor         TEXT NOT NULL DEFAULT '',
	action        TEXT NOT NULL,
	request_json  TEXT NOT NULL DEFAULT '{}',
	decision_json TEXT NOT NULL DEFAULT '{}',
	severity      TEXT NOT NULL DEFAULT 'info',
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_month ON audit_records(month);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
