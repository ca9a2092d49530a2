package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres via the pgx stdlib driver and verifies the
// connection. Callers own the returned handle.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema applies the idempotent DDL for every aggregate. The partial
// unique indexes are what enforce the one-active-binding and one-open-shift
// invariants at the storage layer; concurrent inserts race on the index and
// exactly one wins.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS identities (
		id UUID PRIMARY KEY,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		face_hash TEXT NOT NULL DEFAULT '',
		id_hash TEXT NOT NULL DEFAULT '',
		platform_links JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS identities_phone_key ON identities (phone)`,

	`CREATE TABLE IF NOT EXISTS workplace_bindings (
		worker_id UUID NOT NULL,
		workplace TEXT NOT NULL,
		location TEXT NOT NULL,
		supervisor_id UUID NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS workplace_bindings_one_active
		ON workplace_bindings (worker_id) WHERE active`,
	`CREATE INDEX IF NOT EXISTS workplace_bindings_supervisor
		ON workplace_bindings (supervisor_id)`,

	`CREATE TABLE IF NOT EXISTS shifts (
		id UUID PRIMARY KEY,
		worker_id UUID NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ,
		token TEXT NOT NULL,
		risk_score INT NOT NULL,
		risk_bucket TEXT NOT NULL,
		workplace TEXT NOT NULL,
		supervisor_id UUID NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS shifts_one_open
		ON shifts (worker_id) WHERE end_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS shifts_worker ON shifts (worker_id)`,

	`CREATE TABLE IF NOT EXISTS verifications (
		worker_id UUID NOT NULL,
		scanner_id UUID NOT NULL,
		scanned_at TIMESTAMPTZ NOT NULL,
		location TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS verifications_worker ON verifications (worker_id, scanned_at DESC)`,
	`CREATE INDEX IF NOT EXISTS verifications_scanner ON verifications (scanner_id, scanned_at DESC)`,

	`CREATE TABLE IF NOT EXISTS complaints (
		worker_id UUID NOT NULL,
		reported_by UUID NOT NULL,
		reported_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS complaints_worker ON complaints (worker_id)`,
}
