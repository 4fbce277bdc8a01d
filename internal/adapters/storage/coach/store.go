package coach

import (
	"context"
	"errors"

	domain "rackets/internal/domain/coach"
)

// ErrNotFound indicates a requested coach does not exist.
var ErrNotFound = errors.New("coach not found")

// Store defines persistence for coaches.
type Store interface {
	// GetByID retrieves a coach by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (domain.Coach, error)

	// GetByEmail retrieves a coach by normalized email. Returns ErrNotFound if missing.
	GetByEmail(ctx context.Context, email string) (domain.Coach, error)

	// Save persists a coach (insert or update).
	Save(ctx context.Context, e domain.Coach) error

	// ListByClub returns a club's coaches ordered by name.
	ListByClub(ctx context.Context, clubID string) ([]domain.Coach, error)
}
