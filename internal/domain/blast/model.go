package blast

import (
	"errors"
	"time"
)

// Scope constants for a blast.
const (
	ScopeOwn  = "own"
	ScopeClub = "club"
)

// Type constants recorded on the audit row.
const (
	TypeCoachBlast = "coach_blast"
	TypeClubBlast  = "club_blast"
)

// Domain errors
var (
	ErrEmptySender  = errors.New("blast sender is required")
	ErrInvalidType  = errors.New("invalid blast type")
	ErrInvalidScope = errors.New("invalid blast scope")
	ErrNoSlots      = errors.New("no unnotified open slots to send")
	ErrNoRecipients = errors.New("no clients to notify")
)

// Record is the immutable audit row for one batch send. It is written once
// after the fan-out completes and never updated.
type Record struct {
	ID            string
	SentByCoachID string
	ClubID        string // empty for independent-coach blasts
	BlastType     string
	SlotsIncluded int
	EmailsSent    int
	EmailsFailed  int
	CreatedAt     time.Time
}

// TypeForScope maps a requested blast scope to the audit type.
func TypeForScope(scope string) (string, error) {
	switch scope {
	case ScopeOwn:
		return TypeCoachBlast, nil
	case ScopeClub:
		return TypeClubBlast, nil
	}
	return "", ErrInvalidScope
}

// Validate checks that the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, a domain error otherwise
func (r *Record) Validate() error {
	if r.SentByCoachID == "" {
		return ErrEmptySender
	}
	if r.BlastType != TypeCoachBlast && r.BlastType != TypeClubBlast {
		return ErrInvalidType
	}
	if r.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
