package client

import (
	"context"
	"database/sql"
	"time"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/client"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const clientColumns = "id, name, email, phone, notes, created_at, updated_at"

// SQLiteStore implements the client Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new client store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Client by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM client WHERE id = ?", id)
	return scanClient(row)
}

// GetByEmail retrieves a Client by email. Emails are stored normalized, so
// callers pass the output of NormalizeEmail.
// PRE: email is normalized
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Client, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM client WHERE email = ?", email)
	return scanClient(row)
}

// Save persists a Client to the database.
// PRE: entity has been validated, email is normalized
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Client) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client (id, name, email, phone, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone,
		   notes=excluded.notes, updated_at=excluded.updated_at`,
		e.ID, e.Name, e.Email, e.Phone, e.Notes,
		e.CreatedAt.UTC().Format(dateLayout), nullTime(e.UpdatedAt))
	return err
}

// AddCoachLink links a client to a coach.
// PRE: both rows exist
// POST: Link exists; duplicate links are ignored
func (s *SQLiteStore) AddCoachLink(ctx context.Context, clientID, coachID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO client_coach (client_id, coach_id, created_at) VALUES (?, ?, ?)",
		clientID, coachID, at.UTC().Format(dateLayout))
	return err
}

// AddClubLink links a client to a club.
// PRE: both rows exist
// POST: Link exists; duplicate links are ignored
func (s *SQLiteStore) AddClubLink(ctx context.Context, clientID, clubID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO client_club (client_id, club_id, created_at) VALUES (?, ?, ?)",
		clientID, clubID, at.UTC().Format(dateLayout))
	return err
}

// RemoveCoachLink unlinks a client from a coach. The client row and any
// other links are untouched.
// POST: Link no longer exists
func (s *SQLiteStore) RemoveCoachLink(ctx context.Context, clientID, coachID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM client_coach WHERE client_id = ? AND coach_id = ?",
		clientID, coachID)
	return err
}

// ListByCoach returns a coach's linked clients ordered by name.
// POST: Returns clients ordered by name
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.email, c.phone, c.notes, c.created_at, c.updated_at
		 FROM client c
		 JOIN client_coach cc ON cc.client_id = c.id
		 WHERE cc.coach_id = ?
		 ORDER BY c.name COLLATE NOCASE ASC`, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

// ListRecipientsForCoach returns blast recipients for a coach-scoped blast.
// POST: Returns clients ordered by email
func (s *SQLiteStore) ListRecipientsForCoach(ctx context.Context, coachID string) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.email, c.phone, c.notes, c.created_at, c.updated_at
		 FROM client c
		 JOIN client_coach cc ON cc.client_id = c.id
		 WHERE cc.coach_id = ?
		 ORDER BY c.email ASC`, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

// ListRecipientsForClub returns blast recipients for a club-scoped blast: the
// union of clients linked directly to the club and clients linked to any
// coach of the club. The UNION deduplicates, so a client reachable both ways
// appears once.
// POST: Returns distinct clients ordered by email
func (s *SQLiteStore) ListRecipientsForClub(ctx context.Context, clubID string) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.email, c.phone, c.notes, c.created_at, c.updated_at
		 FROM client c
		 JOIN client_club cb ON cb.client_id = c.id
		 WHERE cb.club_id = ?
		 UNION
		 SELECT c.id, c.name, c.email, c.phone, c.notes, c.created_at, c.updated_at
		 FROM client c
		 JOIN client_coach cc ON cc.client_id = c.id
		 JOIN coach co ON co.id = cc.coach_id
		 WHERE co.club_id = ?
		 ORDER BY email ASC`, clubID, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

func scanClient(row *sql.Row) (domain.Client, error) {
	var e domain.Client
	var createdAt string
	var updatedAt sql.NullString

	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Client{}, ErrNotFound
	}
	if err != nil {
		return domain.Client{}, err
	}
	e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	if updatedAt.Valid {
		e.UpdatedAt, _ = time.Parse(dateLayout, updatedAt.String)
	}
	return e, nil
}

func scanClients(rows *sql.Rows) ([]domain.Client, error) {
	var out []domain.Client
	for rows.Next() {
		var e domain.Client
		var createdAt string
		var updatedAt sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Notes, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		if updatedAt.Valid {
			e.UpdatedAt, _ = time.Parse(dateLayout, updatedAt.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(dateLayout)
}
