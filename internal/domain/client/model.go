package client

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("client name is required")
	ErrEmptyEmail    = errors.New("client email is required")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrAlreadyLinked = errors.New("this client is already on your list")
	ErrNotLinked     = errors.New("this client is not on your list")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Client is a named email recipient. A single Client row may be linked to
// many coaches and clubs; the row is shared, the links are not.
type Client struct {
	ID        string
	Name      string
	Email     string // always stored normalized (lowercase, trimmed)
	Phone     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail lowercases and trims an email address for identity comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address looks like an email.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NameFromEmail derives a display name from an email's local part. Used
// when a claimant shows up with an address no coach has recorded yet.
func NameFromEmail(email string) string {
	local, _, ok := strings.Cut(NormalizeEmail(email), "@")
	if !ok || local == "" {
		return email
	}
	return local
}

// Validate checks that the Client has valid data.
// PRE: Client struct is populated
// POST: Returns nil if valid, a domain error otherwise
func (c *Client) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if !ValidEmail(c.Email) {
		return ErrInvalidEmail
	}
	return nil
}
