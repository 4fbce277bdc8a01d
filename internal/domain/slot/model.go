package slot

import (
	"errors"
	"time"
)

// Status constants for the slot lifecycle.
const (
	StatusOpen      = "open"
	StatusClaimed   = "claimed"
	StatusCancelled = "cancelled"
)

// NotifiedVia constants record which kind of blast covered a slot.
const (
	NotifiedViaCoachBlast = "coach_blast"
	NotifiedViaClubBlast  = "club_blast"
)

// Domain errors
var (
	ErrEmptyCoachID    = errors.New("coach ID is required")
	ErrEndBeforeStart  = errors.New("end time must be after start time")
	ErrStartInPast     = errors.New("cannot create slots in the past")
	ErrEmptyClaimToken = errors.New("claim token is required")
	ErrNotOpen         = errors.New("slot is not open")
	ErrAlreadyClaimed  = errors.New("slot has already been claimed")
	ErrCancelled       = errors.New("slot has been cancelled")
)

// Slot is a coach-published bookable time window. The claim token is the
// sole credential needed to attempt a claim; it never changes for the
// slot's lifetime.
type Slot struct {
	ID                string
	CoachID           string
	ClubID            string // empty for independent coaches
	StartTime         time.Time
	EndTime           time.Time
	Status            string
	ClaimedByClientID string
	ClaimedAt         time.Time
	Note              string
	Location          string
	ClaimToken        string
	NotificationsSent bool
	NotifiedAt        time.Time
	NotifiedVia       string // coach_blast or club_blast, empty until notified
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateForCreate checks a new slot against the creation rules.
// PRE: now is the creation-time clock reading
// POST: Returns nil if the slot may be created, a domain error otherwise
func (s *Slot) ValidateForCreate(now time.Time) error {
	if s.CoachID == "" {
		return ErrEmptyCoachID
	}
	if !s.EndTime.After(s.StartTime) {
		return ErrEndBeforeStart
	}
	if s.StartTime.Before(now) {
		return ErrStartInPast
	}
	if s.ClaimToken == "" {
		return ErrEmptyClaimToken
	}
	return nil
}

// IsOpen returns true if the slot can still be claimed.
// INVARIANT: Slot fields are not mutated
func (s *Slot) IsOpen() bool {
	return s.Status == StatusOpen
}

// IsClaimed returns true if the slot has been claimed.
// INVARIANT: Slot fields are not mutated
func (s *Slot) IsClaimed() bool {
	return s.Status == StatusClaimed
}

// IsCancelled returns true if the slot has been withdrawn.
// INVARIANT: Slot fields are not mutated
func (s *Slot) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// Claim records the open -> claimed transition on the in-memory model.
// The authoritative check-and-set lives in the storage layer's conditional
// UPDATE; this method exists for the domain tests and for hydrating the
// model after a successful claim.
// PRE: Slot is open
// POST: Status is claimed, claimant and ClaimedAt are set together
func (s *Slot) Claim(clientID string, at time.Time) error {
	switch s.Status {
	case StatusClaimed:
		return ErrAlreadyClaimed
	case StatusCancelled:
		return ErrCancelled
	}
	s.Status = StatusClaimed
	s.ClaimedByClientID = clientID
	s.ClaimedAt = at
	return nil
}

// Cancel withdraws the slot. Cancellation is terminal and is reachable
// from both open and claimed; a cancelled slot never reopens.
// POST: Status is cancelled
func (s *Slot) Cancel() error {
	if s.Status == StatusCancelled {
		return ErrCancelled
	}
	s.Status = StatusCancelled
	return nil
}

// Deletable returns true if the slot may be hard-deleted. Only open slots
// are deletable; claimed slots must be cancelled instead so the booking
// record survives.
// INVARIANT: Slot fields are not mutated
func (s *Slot) Deletable() bool {
	return s.Status == StatusOpen
}

// MarkNotified records that a blast covering this slot has been attempted.
// PRE: via is NotifiedViaCoachBlast or NotifiedViaClubBlast
// POST: NotificationsSent is true, NotifiedAt and NotifiedVia are set
func (s *Slot) MarkNotified(via string, at time.Time) {
	s.NotificationsSent = true
	s.NotifiedAt = at
	s.NotifiedVia = via
}

// NeedsNotification returns true if the slot qualifies for a blast:
// open, not yet notified, and starting after now.
// INVARIANT: Slot fields are not mutated
func (s *Slot) NeedsNotification(now time.Time) bool {
	return s.Status == StatusOpen && !s.NotificationsSent && s.StartTime.After(now)
}
