package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rackets/internal/adapters/email"
	clubStore "rackets/internal/adapters/storage/club"
	"rackets/internal/domain/access"
	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
)

// ClubStoreForInvites defines the club store interface needed by invitation orchestrators.
type ClubStoreForInvites interface {
	GetByID(ctx context.Context, id string) (clubDomain.Club, error)
	GetPendingInviteByEmail(ctx context.Context, clubID, email string) (clubDomain.Invitation, error)
	SaveInvite(ctx context.Context, e clubDomain.Invitation) error
	ListInvites(ctx context.Context, clubID string) ([]clubDomain.Invitation, error)
}

// InviteCoachInput carries input for inviting a coach to a club.
type InviteCoachInput struct {
	CallerID string
	Email    string
}

// InviteCoachDeps holds dependencies for InviteCoach.
type InviteCoachDeps struct {
	CoachStore    CoachStoreForAuth
	CoachLookup   CoachLookup
	ClubStore     ClubStoreForInvites
	EmailSender   email.Sender
	BaseURL       string
	GenerateID    func() string
	GenerateToken func() string
	Now           func() time.Time
}

// ExecuteInviteCoach issues a pending invitation to join the caller's club.
// Only directors may invite. One pending invitation per email per club; the
// code stays redeemable for clubDomain.DefaultInviteTTL.
// PRE: CallerID and Email are non-empty
// POST: Invitation persisted and an invite email attempted, or ErrForbidden /
// ErrInvitePending / ErrAlreadyInClub
func ExecuteInviteCoach(ctx context.Context, input InviteCoachInput, deps InviteCoachDeps) (clubDomain.Invitation, error) {
	caller, err := deps.CoachLookup.GetByID(ctx, input.CallerID)
	if err != nil {
		return clubDomain.Invitation{}, err
	}
	decision := access.CanManageInvitations(access.Caller{
		CoachID: caller.ID, Role: caller.Role, ClubID: caller.ClubID,
	})
	if !decision.Allowed {
		return clubDomain.Invitation{}, ErrForbidden
	}

	addr := clientDomain.NormalizeEmail(input.Email)
	if !clientDomain.ValidEmail(addr) {
		return clubDomain.Invitation{}, clientDomain.ErrInvalidEmail
	}

	if existing, err := deps.CoachStore.GetByEmail(ctx, addr); err == nil && existing.ClubID == caller.ClubID {
		return clubDomain.Invitation{}, clubDomain.ErrAlreadyInClub
	}
	if _, err := deps.ClubStore.GetPendingInviteByEmail(ctx, caller.ClubID, addr); err == nil {
		return clubDomain.Invitation{}, clubDomain.ErrInvitePending
	} else if !errors.Is(err, clubStore.ErrInviteNotFound) {
		return clubDomain.Invitation{}, err
	}

	now := deps.Now()
	inv := clubDomain.Invitation{
		ID:         deps.GenerateID(),
		ClubID:     caller.ClubID,
		Email:      addr,
		InviteCode: inviteCode(deps.GenerateToken()),
		Status:     clubDomain.InviteStatusPending,
		ExpiresAt:  now.Add(clubDomain.DefaultInviteTTL),
		CreatedAt:  now,
	}
	if err := deps.ClubStore.SaveInvite(ctx, inv); err != nil {
		return clubDomain.Invitation{}, err
	}

	if deps.EmailSender != nil {
		cb, err := deps.ClubStore.GetByID(ctx, caller.ClubID)
		if err == nil {
			if _, err := deps.EmailSender.Send(ctx, inviteEmail(inv, cb, caller.Name, deps.BaseURL)); err != nil {
				slog.Warn("invite_email_failed", "invite_id", inv.ID, "to", addr, "error", err)
			}
		}
	}

	slog.Info("coach_invited", "invite_id", inv.ID, "club_id", inv.ClubID)
	return inv, nil
}

// inviteCode derives the human-typable code from a fresh token: the first
// eight characters, uppercased.
func inviteCode(token string) string {
	code := strings.ToUpper(token)
	if len(code) > 8 {
		code = code[:8]
	}
	return code
}

func inviteEmail(inv clubDomain.Invitation, cb clubDomain.Club, directorName, baseURL string) email.SendRequest {
	registerURL := fmt.Sprintf("%s/register?invite=%s", baseURL, inv.InviteCode)
	text := fmt.Sprintf("Hi!\n\n%s has invited you to join %s as a coach.\n\nYour invite code: %s\n\nRegister here: %s\n\nThis invitation expires on %s.\n",
		directorName, cb.Name, inv.InviteCode, registerURL, inv.ExpiresAt.Format("January 2, 2006"))
	return email.SendRequest{
		To:      []string{inv.Email},
		Subject: fmt.Sprintf("You're invited to coach at %s", cb.Name),
		Text:    text,
		HTML: fmt.Sprintf(`<p>%s has invited you to join <strong>%s</strong> as a coach.</p>
<p>Your invite code: <strong>%s</strong></p>
<p><a href="%s">Register here</a> before %s.</p>`,
			directorName, cb.Name, inv.InviteCode, registerURL, inv.ExpiresAt.Format("January 2, 2006")),
	}
}
