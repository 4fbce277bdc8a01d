package client

import (
	"context"
	"errors"
	"time"

	domain "rackets/internal/domain/client"
)

// ErrNotFound indicates a requested client does not exist.
var ErrNotFound = errors.New("client not found")

// Store defines persistence for clients and their coach and club links.
type Store interface {
	// GetByID retrieves a client by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (domain.Client, error)

	// GetByEmail retrieves a client by normalized email. Returns ErrNotFound if missing.
	GetByEmail(ctx context.Context, email string) (domain.Client, error)

	// Save persists a client (insert or update).
	Save(ctx context.Context, e domain.Client) error

	// AddCoachLink links a client to a coach. Linking twice is a no-op.
	AddCoachLink(ctx context.Context, clientID, coachID string, at time.Time) error

	// AddClubLink links a client to a club. Linking twice is a no-op.
	AddClubLink(ctx context.Context, clientID, clubID string, at time.Time) error

	// RemoveCoachLink unlinks a client from a coach. The client row survives.
	RemoveCoachLink(ctx context.Context, clientID, coachID string) error

	// ListByCoach returns a coach's linked clients ordered by name.
	ListByCoach(ctx context.Context, coachID string) ([]domain.Client, error)

	// ListRecipientsForCoach returns clients linked to a coach, for a
	// coach-scoped blast. Ordered by email for stable fan-out.
	ListRecipientsForCoach(ctx context.Context, coachID string) ([]domain.Client, error)

	// ListRecipientsForClub returns the union of clients linked to a club
	// directly and clients linked to any of the club's coaches, deduplicated.
	ListRecipientsForClub(ctx context.Context, clubID string) ([]domain.Client, error)
}
