package club

import (
	"errors"
	"time"
)

// Invitation status constants.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusExpired  = "expired"
)

// DefaultInviteTTL is how long a coach invitation stays claimable.
const DefaultInviteTTL = 7 * 24 * time.Hour

// Domain errors
var (
	ErrEmptyName     = errors.New("club name is required")
	ErrEmptyOwner    = errors.New("club owner is required")
	ErrInviteNotOpen = errors.New("invitation is not pending")
	ErrInviteExpired = errors.New("invitation has expired")
	ErrInvitePending = errors.New("an invitation is already pending for this email")
	ErrAlreadyInClub = errors.New("this email is already a coach in the club")
	ErrInvalidInvite = errors.New("invalid invite code")
)

// Club groups coaches under one director.
type Club struct {
	ID          string
	Name        string
	Slug        string
	Description string
	OwnerUserID string // the founding director
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks that the Club has valid data.
// PRE: Club struct is populated
// POST: Returns nil if valid, a domain error otherwise
func (c *Club) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.OwnerUserID == "" {
		return ErrEmptyOwner
	}
	return nil
}

// Invitation is a director-issued offer for a coach to join the club,
// redeemed by code at registration time.
type Invitation struct {
	ID         string
	ClubID     string
	Email      string
	InviteCode string
	Status     string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Redeemable returns nil if the invitation can still be accepted at the
// given time, a domain error describing why not otherwise.
func (i *Invitation) Redeemable(now time.Time) error {
	if i.Status != InviteStatusPending {
		return ErrInviteNotOpen
	}
	if now.After(i.ExpiresAt) {
		return ErrInviteExpired
	}
	return nil
}

// Accept marks the invitation as redeemed.
// PRE: Redeemable(now) returned nil
// POST: Status is accepted
func (i *Invitation) Accept() {
	i.Status = InviteStatusAccepted
}

// Expire marks the invitation as expired.
// POST: Status is expired
func (i *Invitation) Expire() {
	i.Status = InviteStatusExpired
}
