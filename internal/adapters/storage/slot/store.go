package slot

import (
	"context"
	"errors"
	"time"

	domain "rackets/internal/domain/slot"
)

// ErrNotFound is returned when no slot matches the lookup. Token-mismatch
// lookups return it too, so callers cannot distinguish a wrong token from a
// missing slot.
var ErrNotFound = errors.New("slot not found")

// Store persists Slot state and owns the atomic claim transition.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Slot, error)
	GetByOwner(ctx context.Context, id, coachID string) (domain.Slot, error)
	GetByToken(ctx context.Context, id, token string) (domain.Slot, error)
	Save(ctx context.Context, value domain.Slot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Slot, error)
	ListBlastCandidates(ctx context.Context, filter BlastFilter) ([]domain.Slot, error)
	MarkNotified(ctx context.Context, ids []string, via string, at time.Time) error
	Claim(ctx context.Context, id, token, clientID string, at time.Time) error
}

// ListFilter carries filtering parameters for List operations. Exactly one
// of CoachID or ClubID scopes the query; From/To bound the start time.
type ListFilter struct {
	CoachID string
	ClubID  string
	From    time.Time
	To      time.Time
}

// BlastFilter selects unnotified open future slots for a blast.
type BlastFilter struct {
	CoachID string // scope=own
	ClubID  string // scope=club
	Now     time.Time
}
