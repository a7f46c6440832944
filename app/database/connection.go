package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

const (
	connectRetries    = 5
	connectRetryDelay = 2 * time.Second
)

type DB struct {
	*sql.DB
}

// NewConnection opens a Postgres connection pool and verifies it with a
// bounded retry loop, so the service survives a database that is still
// starting up.
func NewConnection(host, port, user, password, dbname string) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	var pingErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		pingErr = db.Ping()
		if pingErr == nil {
			break
		}
		slog.Warn("Database not ready, retrying", "attempt", attempt, "error", pingErr)
		time.Sleep(connectRetryDelay)
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database after %d attempts: %w", connectRetries, pingErr)
	}

	return &DB{DB: db}, nil
}

// InBatch runs fn against repositories bound to a single transaction. All
// mutations made through them commit together or not at all.
func (db *DB) InBatch(ctx context.Context, fn func(packs PackRepository, drafts DraftRepository) error) error {
	return db.InTx(ctx, func(tx *sql.Tx) error {
		return fn(NewPackRepository(tx), NewDraftRepository(tx))
	})
}

// InTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. Both pipeline stages use it as their batch commit boundary.
func (db *DB) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("Transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
