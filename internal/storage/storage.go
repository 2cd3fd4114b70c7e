// Package storage is the ledger store: a SQLite-backed repository that owns
// the usuarios, categorias and transacciones relations and enforces the
// referential and monetary invariants on write. Amounts are persisted as
// integer cents; aggregation happens in SQL over cents, so sums are exact.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"finanzas/internal/core"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// inTx runs fn inside a single SQL transaction, so each request observes and
// produces a consistent state even under concurrent writers.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// storeErr classifies a driver failure as the retryable ErrUnavailable
// condition unless it already carries one of the domain sentinels.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrConflict) || errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrUnauthorized) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, core.ErrUnavailable, err)
}
