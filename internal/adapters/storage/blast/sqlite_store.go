package blast

import (
	"context"
	"database/sql"
	"time"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/blast"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const recordColumns = "id, sent_by_coach_id, club_id, blast_type, slots_included, emails_sent, emails_failed, created_at"

// SQLiteStore implements the blast Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new blast store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append writes a blast record.
// PRE: entity has been validated
// POST: Record is persisted; existing records are never touched
func (s *SQLiteStore) Append(ctx context.Context, e domain.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_blast (id, sent_by_coach_id, club_id, blast_type, slots_included, emails_sent, emails_failed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SentByCoachID, nullString(e.ClubID), e.BlastType,
		e.SlotsIncluded, e.EmailsSent, e.EmailsFailed,
		e.CreatedAt.UTC().Format(dateLayout))
	return err
}

// ListByCoach returns a coach's blast records, newest first.
// POST: Returns up to limit records ordered by created_at descending
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string, limit int) ([]domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM email_blast WHERE sent_by_coach_id = ? ORDER BY created_at DESC"
	args := []any{coachID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByClub returns a club's blast records, newest first.
// POST: Returns up to limit records ordered by created_at descending
func (s *SQLiteStore) ListByClub(ctx context.Context, clubID string, limit int) ([]domain.Record, error) {
	query := "SELECT " + recordColumns + " FROM email_blast WHERE club_id = ? ORDER BY created_at DESC"
	args := []any{clubID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var out []domain.Record
	for rows.Next() {
		var e domain.Record
		var clubID sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.SentByCoachID, &clubID, &e.BlastType,
			&e.SlotsIncluded, &e.EmailsSent, &e.EmailsFailed, &createdAt); err != nil {
			return nil, err
		}
		e.ClubID = clubID.String
		e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
