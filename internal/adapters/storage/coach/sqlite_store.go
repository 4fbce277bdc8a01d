package coach

import (
	"context"
	"database/sql"
	"time"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/coach"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const coachColumns = "id, email, name, password_hash, timezone, role, club_id, bio, phone, created_at, updated_at"

// SQLiteStore implements the coach Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new coach store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Coach by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Coach, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+coachColumns+" FROM coach WHERE id = ?", id)
	return scanCoach(row)
}

// GetByEmail retrieves a Coach by email. Used for login.
// PRE: email is normalized
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Coach, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+coachColumns+" FROM coach WHERE email = ?", email)
	return scanCoach(row)
}

// Save persists a Coach to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Coach) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coach (id, email, name, password_hash, timezone, role, club_id, bio, phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, name=excluded.name, password_hash=excluded.password_hash,
		   timezone=excluded.timezone, role=excluded.role, club_id=excluded.club_id,
		   bio=excluded.bio, phone=excluded.phone, updated_at=excluded.updated_at`,
		e.ID, e.Email, e.Name, e.PasswordHash, e.Timezone, e.Role,
		nullString(e.ClubID), e.Bio, e.Phone,
		e.CreatedAt.UTC().Format(dateLayout), nullTime(e.UpdatedAt))
	return err
}

// ListByClub returns a club's coaches ordered by name.
// POST: Returns coaches ordered by name
func (s *SQLiteStore) ListByClub(ctx context.Context, clubID string) ([]domain.Coach, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+coachColumns+" FROM coach WHERE club_id = ? ORDER BY name COLLATE NOCASE ASC", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Coach
	for rows.Next() {
		var e domain.Coach
		var clubID, updatedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Email, &e.Name, &e.PasswordHash, &e.Timezone,
			&e.Role, &clubID, &e.Bio, &e.Phone, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.ClubID = clubID.String
		e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		if updatedAt.Valid {
			e.UpdatedAt, _ = time.Parse(dateLayout, updatedAt.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanCoach(row *sql.Row) (domain.Coach, error) {
	var e domain.Coach
	var clubID, updatedAt sql.NullString
	var createdAt string

	err := row.Scan(&e.ID, &e.Email, &e.Name, &e.PasswordHash, &e.Timezone,
		&e.Role, &clubID, &e.Bio, &e.Phone, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Coach{}, ErrNotFound
	}
	if err != nil {
		return domain.Coach{}, err
	}
	e.ClubID = clubID.String
	e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	if updatedAt.Valid {
		e.UpdatedAt, _ = time.Parse(dateLayout, updatedAt.String)
	}
	return e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(dateLayout)
}
