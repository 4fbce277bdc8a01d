package club

import (
	"context"
	"errors"

	domain "rackets/internal/domain/club"
)

// Sentinel errors for missing rows.
var (
	ErrNotFound       = errors.New("club not found")
	ErrInviteNotFound = errors.New("invitation not found")
)

// Store defines persistence for clubs and coach invitations.
type Store interface {
	// GetByID retrieves a club by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (domain.Club, error)

	// Save persists a club (insert or update).
	Save(ctx context.Context, e domain.Club) error

	// GetInviteByCode retrieves an invitation by its code.
	// Returns ErrInviteNotFound if missing.
	GetInviteByCode(ctx context.Context, code string) (domain.Invitation, error)

	// GetPendingInviteByEmail retrieves a club's pending invitation for an
	// email, if one exists. Returns ErrInviteNotFound if missing.
	GetPendingInviteByEmail(ctx context.Context, clubID, email string) (domain.Invitation, error)

	// SaveInvite persists an invitation (insert or update).
	SaveInvite(ctx context.Context, e domain.Invitation) error

	// ListInvites returns a club's invitations, newest first.
	ListInvites(ctx context.Context, clubID string) ([]domain.Invitation, error)
}
