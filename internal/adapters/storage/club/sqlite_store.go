package club

import (
	"context"
	"database/sql"
	"time"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/club"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const inviteColumns = "id, club_id, email, invite_code, status, expires_at, created_at"

// SQLiteStore implements the club Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new club store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Club by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Club, error) {
	var e domain.Club
	var createdAt string
	var updatedAt sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug, description, owner_user_id, created_at, updated_at FROM club WHERE id = ?",
		id).Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.OwnerUserID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Club{}, ErrNotFound
	}
	if err != nil {
		return domain.Club{}, err
	}
	e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	if updatedAt.Valid {
		e.UpdatedAt, _ = time.Parse(dateLayout, updatedAt.String)
	}
	return e, nil
}

// Save persists a Club to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Club) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO club (id, name, slug, description, owner_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, slug=excluded.slug, description=excluded.description,
		   updated_at=excluded.updated_at`,
		e.ID, e.Name, e.Slug, e.Description, e.OwnerUserID,
		e.CreatedAt.UTC().Format(dateLayout), nullTime(e.UpdatedAt))
	return err
}

// GetInviteByCode retrieves an Invitation by its code.
// PRE: code is non-empty
// POST: Returns the entity or ErrInviteNotFound
func (s *SQLiteStore) GetInviteByCode(ctx context.Context, code string) (domain.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM club_invitation WHERE invite_code = ?", code)
	return scanInvite(row)
}

// GetPendingInviteByEmail retrieves a club's pending invitation for an email.
// POST: Returns the entity or ErrInviteNotFound
func (s *SQLiteStore) GetPendingInviteByEmail(ctx context.Context, clubID, email string) (domain.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM club_invitation WHERE club_id = ? AND email = ? AND status = ?",
		clubID, email, domain.InviteStatusPending)
	return scanInvite(row)
}

// SaveInvite persists an Invitation to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveInvite(ctx context.Context, e domain.Invitation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO club_invitation (id, club_id, email, invite_code, status, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status`,
		e.ID, e.ClubID, e.Email, e.InviteCode, e.Status,
		e.ExpiresAt.UTC().Format(dateLayout), e.CreatedAt.UTC().Format(dateLayout))
	return err
}

// ListInvites returns a club's invitations, newest first.
// POST: Returns invitations ordered by created_at descending
func (s *SQLiteStore) ListInvites(ctx context.Context, clubID string) ([]domain.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+inviteColumns+" FROM club_invitation WHERE club_id = ? ORDER BY created_at DESC",
		clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		var e domain.Invitation
		var expiresAt, createdAt string
		if err := rows.Scan(&e.ID, &e.ClubID, &e.Email, &e.InviteCode, &e.Status,
			&expiresAt, &createdAt); err != nil {
			return nil, err
		}
		e.ExpiresAt, _ = time.Parse(dateLayout, expiresAt)
		e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanInvite(row *sql.Row) (domain.Invitation, error) {
	var e domain.Invitation
	var expiresAt, createdAt string

	err := row.Scan(&e.ID, &e.ClubID, &e.Email, &e.InviteCode, &e.Status, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return domain.Invitation{}, ErrInviteNotFound
	}
	if err != nil {
		return domain.Invitation{}, err
	}
	e.ExpiresAt, _ = time.Parse(dateLayout, expiresAt)
	e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return e, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(dateLayout)
}
