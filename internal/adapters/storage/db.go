package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS club (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		owner_user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS coach (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC',
		role TEXT NOT NULL,
		club_id TEXT,
		bio TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT,
		FOREIGN KEY (club_id) REFERENCES club(id)
	);

	CREATE TABLE IF NOT EXISTS club_invitation (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		email TEXT NOT NULL,
		invite_code TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (club_id) REFERENCES club(id)
	);

	CREATE TABLE IF NOT EXISTS client (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS client_coach (
		client_id TEXT NOT NULL,
		coach_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (client_id, coach_id),
		FOREIGN KEY (client_id) REFERENCES client(id),
		FOREIGN KEY (coach_id) REFERENCES coach(id)
	);

	CREATE TABLE IF NOT EXISTS client_club (
		client_id TEXT NOT NULL,
		club_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (client_id, club_id),
		FOREIGN KEY (client_id) REFERENCES client(id),
		FOREIGN KEY (club_id) REFERENCES club(id)
	);

	CREATE TABLE IF NOT EXISTS slot (
		id TEXT PRIMARY KEY,
		coach_id TEXT NOT NULL,
		club_id TEXT,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		claimed_by_client_id TEXT,
		claimed_at TEXT,
		note TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		claim_token TEXT NOT NULL UNIQUE,
		notifications_sent INTEGER NOT NULL DEFAULT 0,
		notified_at TEXT,
		notified_via TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT,
		FOREIGN KEY (coach_id) REFERENCES coach(id),
		FOREIGN KEY (club_id) REFERENCES club(id),
		FOREIGN KEY (claimed_by_client_id) REFERENCES client(id)
	);

	CREATE INDEX IF NOT EXISTS idx_slot_coach_start ON slot(coach_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_slot_blast ON slot(status, notifications_sent, start_time);

	CREATE TABLE IF NOT EXISTS email_blast (
		id TEXT PRIMARY KEY,
		sent_by_coach_id TEXT NOT NULL,
		club_id TEXT,
		blast_type TEXT NOT NULL,
		slots_included INTEGER NOT NULL DEFAULT 0,
		emails_sent INTEGER NOT NULL DEFAULT 0,
		emails_failed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (sent_by_coach_id) REFERENCES coach(id),
		FOREIGN KEY (club_id) REFERENCES club(id)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
