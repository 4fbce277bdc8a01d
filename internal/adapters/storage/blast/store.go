package blast

import (
	"context"

	domain "rackets/internal/domain/blast"
)

// Store defines persistence for the email blast audit log. The log is
// append-only; records are never updated or deleted.
type Store interface {
	// Append writes a blast record.
	Append(ctx context.Context, e domain.Record) error

	// ListByCoach returns a coach's blast records, newest first, up to limit.
	// A limit of 0 means no limit.
	ListByCoach(ctx context.Context, coachID string, limit int) ([]domain.Record, error)

	// ListByClub returns a club's blast records, newest first, up to limit.
	// A limit of 0 means no limit.
	ListByClub(ctx context.Context, clubID string, limit int) ([]domain.Record, error)
}
