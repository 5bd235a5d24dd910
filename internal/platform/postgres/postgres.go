package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
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

// Schema is the full DDL. The partial unique index on guard_scans is the
// at-most-once enforcement point: only one row per pass may carry a non-null
// confirmed value, whatever the interleaving of concurrent confirms.
const Schema = `
CREATE TABLE IF NOT EXISTS residences (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT
);

CREATE TABLE IF NOT EXISTS residents (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	phone_number TEXT NOT NULL UNIQUE,
	apartment TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	residence_id UUID NOT NULL REFERENCES residences(id)
);

CREATE TABLE IF NOT EXISTS guards (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	phone_number TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	residence_id UUID NOT NULL REFERENCES residences(id)
);

CREATE TABLE IF NOT EXISTS visitor_passes (
	id UUID PRIMARY KEY,
	resident_id UUID NOT NULL REFERENCES residents(id),
	visitor_name TEXT NOT NULL,
	visitor_phone TEXT NOT NULL UNIQUE,
	qr_payload TEXT NOT NULL,
	duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL CHECK (expires_at > created_at)
);

CREATE TABLE IF NOT EXISTS guard_scans (
	id UUID PRIMARY KEY,
	pass_id UUID NOT NULL REFERENCES visitor_passes(id) ON DELETE CASCADE,
	guard_id UUID NOT NULL REFERENCES guards(id),
	confirmed BOOLEAN,
	scanned_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS guard_scans_one_decision_per_pass
	ON guard_scans (pass_id) WHERE confirmed IS NOT NULL;

CREATE INDEX IF NOT EXISTS guard_scans_guard_scanned_at
	ON guard_scans (guard_id, scanned_at DESC);
`

// Migrate applies the schema. Idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
