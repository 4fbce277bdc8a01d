package slot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/slot"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const slotColumns = `id, coach_id, club_id, start_time, end_time, status,
 claimed_by_client_id, claimed_at, note, location, claim_token,
 notifications_sent, notified_at, notified_via, created_at, updated_at`

// SQLiteStore implements the slot Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new slot store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Slot by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Slot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slot WHERE id = ?", id)
	return scanSlot(row)
}

// GetByOwner retrieves a Slot only if coachID owns it. A missing row and a
// row owned by someone else are indistinguishable to the caller.
// PRE: id and coachID are non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByOwner(ctx context.Context, id, coachID string) (domain.Slot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slot WHERE id = ? AND coach_id = ?", id, coachID)
	return scanSlot(row)
}

// GetByToken retrieves a Slot by id and claim token. Used by the public
// claim-check path; a wrong token yields ErrNotFound, never the slot.
// PRE: id and token are non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByToken(ctx context.Context, id, token string) (domain.Slot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slot WHERE id = ? AND claim_token = ?", id, token)
	return scanSlot(row)
}

// Save persists a Slot to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Slot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slot (id, coach_id, club_id, start_time, end_time, status,
		   claimed_by_client_id, claimed_at, note, location, claim_token,
		   notifications_sent, notified_at, notified_via, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, claimed_by_client_id=excluded.claimed_by_client_id,
		   claimed_at=excluded.claimed_at, note=excluded.note, location=excluded.location,
		   notifications_sent=excluded.notifications_sent, notified_at=excluded.notified_at,
		   notified_via=excluded.notified_via, updated_at=excluded.updated_at`,
		e.ID, e.CoachID, nullString(e.ClubID),
		e.StartTime.UTC().Format(dateLayout), e.EndTime.UTC().Format(dateLayout),
		e.Status, nullString(e.ClaimedByClientID), nullTime(e.ClaimedAt),
		e.Note, e.Location, e.ClaimToken,
		boolToInt(e.NotificationsSent), nullTime(e.NotifiedAt), nullString(e.NotifiedVia),
		e.CreatedAt.UTC().Format(dateLayout), nullTime(e.UpdatedAt))
	return err
}

// Delete removes a Slot from the database.
// PRE: caller has verified the slot is deletable
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM slot WHERE id = ?", id)
	return err
}

// List returns slots for a coach or a club, ordered ascending by start time.
// PRE: exactly one of filter.CoachID / filter.ClubID is set
// POST: Returns matching slots ordered by start_time
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Slot, error) {
	var conds []string
	var args []any

	switch {
	case filter.CoachID != "":
		conds = append(conds, "coach_id = ?")
		args = append(args, filter.CoachID)
	case filter.ClubID != "":
		conds = append(conds, "club_id = ?")
		args = append(args, filter.ClubID)
	default:
		return nil, fmt.Errorf("slot list requires a coach or club scope")
	}
	if !filter.From.IsZero() {
		conds = append(conds, "start_time >= ?")
		args = append(args, filter.From.UTC().Format(dateLayout))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "start_time <= ?")
		args = append(args, filter.To.UTC().Format(dateLayout))
	}

	query := "SELECT " + slotColumns + " FROM slot WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY start_time ASC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

// ListBlastCandidates returns open, unnotified slots starting after Now,
// scoped to a coach or a club, ordered ascending by start time.
// PRE: exactly one of filter.CoachID / filter.ClubID is set, Now is set
// POST: Returns candidate slots for a blast
func (s *SQLiteStore) ListBlastCandidates(ctx context.Context, filter BlastFilter) ([]domain.Slot, error) {
	scope := "coach_id = ?"
	scopeArg := filter.CoachID
	if filter.CoachID == "" {
		if filter.ClubID == "" {
			return nil, fmt.Errorf("blast candidates require a coach or club scope")
		}
		scope = "club_id = ?"
		scopeArg = filter.ClubID
	}

	query := "SELECT " + slotColumns + ` FROM slot
		 WHERE ` + scope + ` AND status = ? AND notifications_sent = 0 AND start_time > ?
		 ORDER BY start_time ASC`
	rows, err := s.db.QueryContext(ctx, query,
		scopeArg, domain.StatusOpen, filter.Now.UTC().Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

// MarkNotified flags every listed slot as covered by a blast. Called once
// after the fan-out completes, regardless of per-recipient outcomes.
// PRE: via is coach_blast or club_blast
// POST: notifications_sent, notified_at, notified_via set on all ids
func (s *SQLiteStore) MarkNotified(ctx context.Context, ids []string, via string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := []any{at.UTC().Format(dateLayout), via}
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE slot SET notifications_sent = 1, notified_at = ?, notified_via = ? WHERE id IN ("+placeholders+")",
		args...)
	return err
}

// Claim performs the atomic open -> claimed transition. The predicate is
// evaluated by the database inside a single conditional UPDATE, so exactly
// one concurrent caller can succeed even across server processes.
// PRE: clientID references an existing client row
// POST: On nil return the slot is claimed by clientID with claimed_at = at.
// Returns domain.ErrAlreadyClaimed, domain.ErrCancelled, or ErrNotFound
// when the transition did not happen.
func (s *SQLiteStore) Claim(ctx context.Context, id, token, clientID string, at time.Time) error {
	ts := at.UTC().Format(dateLayout)
	res, err := s.db.ExecContext(ctx,
		`UPDATE slot SET status = ?, claimed_by_client_id = ?, claimed_at = ?, updated_at = ?
		 WHERE id = ? AND claim_token = ? AND status = ?`,
		domain.StatusClaimed, clientID, ts, ts, id, token, domain.StatusOpen)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// The update matched nothing: classify why for the caller.
	var status string
	err = s.db.QueryRowContext(ctx,
		"SELECT status FROM slot WHERE id = ? AND claim_token = ?", id, token).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	switch status {
	case domain.StatusClaimed:
		return domain.ErrAlreadyClaimed
	case domain.StatusCancelled:
		return domain.ErrCancelled
	}
	return fmt.Errorf("claim update matched no row for open slot %s", id)
}

// scanSlot reads one slot row.
func scanSlot(row *sql.Row) (domain.Slot, error) {
	var e domain.Slot
	var clubID, claimedBy, claimedAt, notifiedAt, notifiedVia, updatedAt sql.NullString
	var notificationsSent int
	var startTime, endTime, createdAt string

	err := row.Scan(&e.ID, &e.CoachID, &clubID, &startTime, &endTime, &e.Status,
		&claimedBy, &claimedAt, &e.Note, &e.Location, &e.ClaimToken,
		&notificationsSent, &notifiedAt, &notifiedVia, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Slot{}, ErrNotFound
	}
	if err != nil {
		return domain.Slot{}, err
	}
	hydrateSlot(&e, clubID, claimedBy, claimedAt, notifiedAt, notifiedVia, updatedAt,
		notificationsSent, startTime, endTime, createdAt)
	return e, nil
}

// scanSlots reads all slot rows from a result set.
func scanSlots(rows *sql.Rows) ([]domain.Slot, error) {
	var out []domain.Slot
	for rows.Next() {
		var e domain.Slot
		var clubID, claimedBy, claimedAt, notifiedAt, notifiedVia, updatedAt sql.NullString
		var notificationsSent int
		var startTime, endTime, createdAt string

		err := rows.Scan(&e.ID, &e.CoachID, &clubID, &startTime, &endTime, &e.Status,
			&claimedBy, &claimedAt, &e.Note, &e.Location, &e.ClaimToken,
			&notificationsSent, &notifiedAt, &notifiedVia, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		hydrateSlot(&e, clubID, claimedBy, claimedAt, notifiedAt, notifiedVia, updatedAt,
			notificationsSent, startTime, endTime, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func hydrateSlot(e *domain.Slot,
	clubID, claimedBy, claimedAt, notifiedAt, notifiedVia, updatedAt sql.NullString,
	notificationsSent int, startTime, endTime, createdAt string) {
	e.ClubID = clubID.String
	e.ClaimedByClientID = claimedBy.String
	e.NotifiedVia = notifiedVia.String
	e.NotificationsSent = notificationsSent != 0
	e.StartTime = parseTime(startTime)
	e.EndTime = parseTime(endTime)
	e.CreatedAt = parseTime(createdAt)
	if claimedAt.Valid {
		e.ClaimedAt = parseTime(claimedAt.String)
	}
	if notifiedAt.Valid {
		e.NotifiedAt = parseTime(notifiedAt.String)
	}
	if updatedAt.Valid {
		e.UpdatedAt = parseTime(updatedAt.String)
	}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
