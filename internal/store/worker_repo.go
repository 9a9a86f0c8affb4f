package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wardroster/engine/internal/domain"
)

// WorkerRepo handles persistence for the ordered worker roster.
type WorkerRepo struct{}

// Create appends a worker at the end of the roster.
func (r *WorkerRepo) Create(ctx context.Context, db *sql.DB, w domain.Worker, now int64) error {
	const q = `INSERT INTO workers (name, category, position, created_at_unix)
VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM workers), ?)`
	_, err := db.ExecContext(ctx, q, w.Name, string(w.Category), now)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewEngineError(domain.ErrDuplicateWorker.Code,
				fmt.Sprintf("%s: %q", domain.ErrDuplicateWorker.Message, w.Name))
		}
		return fmt.Errorf("create worker: %w", err)
	}
	return nil
}

// GetByName retrieves a worker by name.
func (r *WorkerRepo) GetByName(ctx context.Context, db *sql.DB, name string) (*domain.Worker, error) {
	row := db.QueryRowContext(ctx, `SELECT name, category FROM workers WHERE name = ?`, name)

	var w domain.Worker
	var category string
	if err := row.Scan(&w.Name, &category); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("get worker: %w", err)
	}
	w.Category = domain.Category(category)
	return &w, nil
}

// List returns the roster in order.
func (r *WorkerRepo) List(ctx context.Context, db *sql.DB) ([]domain.Worker, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, category FROM workers ORDER BY position ASC, created_at_unix ASC`)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var workers []domain.Worker
	for rows.Next() {
		var w domain.Worker
		var category string
		if err := rows.Scan(&w.Name, &category); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		w.Category = domain.Category(category)
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// SetCategory changes a worker's category.
func (r *WorkerRepo) SetCategory(ctx context.Context, db *sql.DB, name string, category domain.Category) error {
	res, err := db.ExecContext(ctx, `UPDATE workers SET category = ? WHERE name = ?`, string(category), name)
	if err != nil {
		return fmt.Errorf("update worker category: %w", err)
	}
	return expectOneRow(res, domain.ErrWorkerNotFound)
}

// RenameTx renames a worker within a transaction.
func (r *WorkerRepo) RenameTx(ctx context.Context, tx *sql.Tx, from, to string) error {
	res, err := tx.ExecContext(ctx, `UPDATE workers SET name = ? WHERE name = ?`, to, from)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewEngineError(domain.ErrDuplicateWorker.Code,
				fmt.Sprintf("%s: %q", domain.ErrDuplicateWorker.Message, to))
		}
		return fmt.Errorf("rename worker: %w", err)
	}
	return expectOneRow(res, domain.ErrWorkerNotFound)
}

// DeleteTx removes a worker within a transaction.
func (r *WorkerRepo) DeleteTx(ctx context.Context, tx *sql.Tx, name string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM workers WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	return expectOneRow(res, domain.ErrWorkerNotFound)
}

// ReorderTx rewrites the roster positions to follow names.
func (r *WorkerRepo) ReorderTx(ctx context.Context, tx *sql.Tx, names []string) error {
	for i, name := range names {
		res, err := tx.ExecContext(ctx, `UPDATE workers SET position = ? WHERE name = ?`, i, name)
		if err != nil {
			return fmt.Errorf("reorder workers: %w", err)
		}
		if err := expectOneRow(res, domain.ErrWorkerNotFound); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of workers on the roster.
func (r *WorkerRepo) Count(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count workers: %w", err)
	}
	return count, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
