package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
	coachDomain "rackets/internal/domain/coach"
)

// Auth errors. Login failures are deliberately indistinct so the endpoint
// cannot be used to probe which emails are registered.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("a coach with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// CoachStoreForAuth defines the coach store interface needed by auth orchestrators.
type CoachStoreForAuth interface {
	GetByEmail(ctx context.Context, email string) (coachDomain.Coach, error)
	Save(ctx context.Context, e coachDomain.Coach) error
}

// ClubStoreForAuth defines the club store operations registration needs.
type ClubStoreForAuth interface {
	GetByID(ctx context.Context, id string) (clubDomain.Club, error)
	Save(ctx context.Context, e clubDomain.Club) error
	GetInviteByCode(ctx context.Context, code string) (clubDomain.Invitation, error)
	SaveInvite(ctx context.Context, e clubDomain.Invitation) error
}

// --- Register Coach ---

// RegisterCoachInput carries input for registration. Exactly one path
// applies: an InviteCode joins an existing club as club_coach, a ClubName
// founds a new club as director, and neither registers an independent coach.
type RegisterCoachInput struct {
	Name       string
	Email      string
	Password   string
	Timezone   string
	InviteCode string
	ClubName   string
}

// RegisterCoachDeps holds dependencies for RegisterCoach.
type RegisterCoachDeps struct {
	CoachStore CoachStoreForAuth
	ClubStore  ClubStoreForAuth
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteRegisterCoach creates a coach account, hashing the password with
// bcrypt. Invite codes are validated and consumed inside the same call.
// PRE: Name, Email, Password are non-empty
// POST: Coach persisted; invite accepted or club created per the input path
func ExecuteRegisterCoach(ctx context.Context, input RegisterCoachInput, deps RegisterCoachDeps) (coachDomain.Coach, error) {
	addr := clientDomain.NormalizeEmail(input.Email)
	if !clientDomain.ValidEmail(addr) {
		return coachDomain.Coach{}, clientDomain.ErrInvalidEmail
	}
	if len(input.Password) < 8 {
		return coachDomain.Coach{}, ErrWeakPassword
	}
	if _, err := deps.CoachStore.GetByEmail(ctx, addr); err == nil {
		return coachDomain.Coach{}, ErrEmailTaken
	}

	now := deps.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return coachDomain.Coach{}, err
	}

	tz := input.Timezone
	if tz == "" {
		tz = "UTC"
	}
	co := coachDomain.Coach{
		ID:           deps.GenerateID(),
		Email:        addr,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
		Timezone:     tz,
		Role:         coachDomain.RoleIndependentCoach,
		CreatedAt:    now,
	}

	var invite clubDomain.Invitation
	switch {
	case input.InviteCode != "":
		invite, err = deps.ClubStore.GetInviteByCode(ctx, strings.ToUpper(strings.TrimSpace(input.InviteCode)))
		if err != nil {
			return coachDomain.Coach{}, clubDomain.ErrInvalidInvite
		}
		if err := invite.Redeemable(now); err != nil {
			return coachDomain.Coach{}, err
		}
		co.Role = coachDomain.RoleClubCoach
		co.ClubID = invite.ClubID

	case input.ClubName != "":
		cb := clubDomain.Club{
			ID:          deps.GenerateID(),
			Name:        strings.TrimSpace(input.ClubName),
			OwnerUserID: co.ID,
			CreatedAt:   now,
		}
		if err := cb.Validate(); err != nil {
			return coachDomain.Coach{}, err
		}
		if err := deps.ClubStore.Save(ctx, cb); err != nil {
			return coachDomain.Coach{}, err
		}
		co.Role = coachDomain.RoleDirector
		co.ClubID = cb.ID
	}

	if err := co.Validate(); err != nil {
		return coachDomain.Coach{}, err
	}
	if err := deps.CoachStore.Save(ctx, co); err != nil {
		return coachDomain.Coach{}, err
	}

	// The invite is consumed only after the coach row committed, so a failed
	// registration leaves it redeemable.
	if invite.ID != "" {
		invite.Accept()
		if err := deps.ClubStore.SaveInvite(ctx, invite); err != nil {
			slog.Error("invite_accept_save_failed", "invite_id", invite.ID, "error", err)
		}
	}

	slog.Info("coach_registered", "coach_id", co.ID, "role", co.Role)
	return co, nil
}

// --- Login Coach ---

// LoginCoachInput carries login credentials.
type LoginCoachInput struct {
	Email    string
	Password string
}

// LoginCoachDeps holds dependencies for LoginCoach.
type LoginCoachDeps struct {
	CoachStore CoachStoreForAuth
}

// ExecuteLoginCoach verifies credentials against the stored bcrypt hash.
// POST: Returns the coach or ErrInvalidCredentials; never reveals whether
// the email exists
func ExecuteLoginCoach(ctx context.Context, input LoginCoachInput, deps LoginCoachDeps) (coachDomain.Coach, error) {
	addr := clientDomain.NormalizeEmail(input.Email)
	co, err := deps.CoachStore.GetByEmail(ctx, addr)
	if err != nil {
		// Burn comparable time so missing accounts are not distinguishable
		// by response latency.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(input.Password))
		return coachDomain.Coach{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(co.PasswordHash), []byte(input.Password)); err != nil {
		return coachDomain.Coach{}, ErrInvalidCredentials
	}
	slog.Info("coach_login", "coach_id", co.ID)
	return co, nil
}
