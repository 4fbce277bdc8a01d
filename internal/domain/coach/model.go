package coach

import (
	"errors"
	"time"
)

// Role constants. Directors and club coaches belong to exactly one club;
// independent coaches belong to none.
const (
	RoleDirector         = "director"
	RoleClubCoach        = "club_coach"
	RoleIndependentCoach = "independent_coach"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("coach name is required")
	ErrEmptyEmail    = errors.New("coach email is required")
	ErrInvalidRole   = errors.New("invalid coach role")
	ErrClubRequired  = errors.New("this role requires a club")
	ErrClubForbidden = errors.New("independent coaches cannot belong to a club")
)

// Coach is an authenticated principal who publishes slots.
type Coach struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Timezone     string
	Role         string
	ClubID       string // empty for independent coaches
	Bio          string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole reports whether role is one of the three coach roles.
func ValidRole(role string) bool {
	switch role {
	case RoleDirector, RoleClubCoach, RoleIndependentCoach:
		return true
	}
	return false
}

// Validate checks the coach and the role/club pairing rules.
// PRE: Coach struct is populated
// POST: Returns nil if valid, a domain error otherwise
func (c *Coach) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if !ValidRole(c.Role) {
		return ErrInvalidRole
	}
	switch c.Role {
	case RoleDirector, RoleClubCoach:
		if c.ClubID == "" {
			return ErrClubRequired
		}
	case RoleIndependentCoach:
		if c.ClubID != "" {
			return ErrClubForbidden
		}
	}
	return nil
}

// IsDirector returns true for the director role.
// INVARIANT: Coach fields are not mutated
func (c *Coach) IsDirector() bool {
	return c.Role == RoleDirector
}
