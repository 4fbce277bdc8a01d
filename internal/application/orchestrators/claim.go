package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rackets/internal/adapters/email"
	"rackets/internal/application/blastmail"
	clientDomain "rackets/internal/domain/client"
	coachDomain "rackets/internal/domain/coach"
	slotDomain "rackets/internal/domain/slot"
)

// SlotStoreForClaim defines the store interface needed by the claim protocol.
type SlotStoreForClaim interface {
	GetByToken(ctx context.Context, id, token string) (slotDomain.Slot, error)
	Claim(ctx context.Context, id, token, clientID string, at time.Time) error
}

// ClientStoreForClaim defines the client store operations the claim side effects need.
type ClientStoreForClaim interface {
	GetByID(ctx context.Context, id string) (clientDomain.Client, error)
	GetByEmail(ctx context.Context, email string) (clientDomain.Client, error)
	Save(ctx context.Context, e clientDomain.Client) error
	AddCoachLink(ctx context.Context, clientID, coachID string, at time.Time) error
	AddClubLink(ctx context.Context, clientID, clubID string, at time.Time) error
}

// CoachLookup resolves coaches for display names and notification addresses.
type CoachLookup interface {
	GetByID(ctx context.Context, id string) (coachDomain.Coach, error)
}

// --- Check Slot ---

// CheckSlotInput carries input for the public claim-page lookup.
type CheckSlotInput struct {
	SlotID string
	Token  string
}

// CheckSlotDeps holds dependencies for CheckSlot.
type CheckSlotDeps struct {
	SlotStore   SlotStoreForClaim
	ClientStore ClientStoreForClaim
	CoachStore  CoachLookup
}

// CheckSlotResult describes a slot to a prospective claimant.
type CheckSlotResult struct {
	Slot          slotDomain.Slot
	CoachName     string
	ClaimedByName string // set when the slot is already claimed, if resolvable
}

// ExecuteCheckSlot looks up a slot for the claim page. A wrong token reads
// as missing, so tokens cannot be enumerated.
// PRE: SlotID and Token are non-empty
// POST: Returns the slot with display names, or the slot store's ErrNotFound
func ExecuteCheckSlot(ctx context.Context, input CheckSlotInput, deps CheckSlotDeps) (CheckSlotResult, error) {
	e, err := deps.SlotStore.GetByToken(ctx, input.SlotID, input.Token)
	if err != nil {
		return CheckSlotResult{}, err
	}

	result := CheckSlotResult{Slot: e}
	if co, err := deps.CoachStore.GetByID(ctx, e.CoachID); err == nil {
		result.CoachName = co.Name
	}
	if e.IsClaimed() && e.ClaimedByClientID != "" {
		if cl, err := deps.ClientStore.GetByID(ctx, e.ClaimedByClientID); err == nil {
			result.ClaimedByName = cl.Name
		}
	}
	return result, nil
}

// --- Claim Slot ---

// ClaimSlotInput carries input for claiming a slot.
type ClaimSlotInput struct {
	SlotID string
	Token  string
	Email  string
}

// ClaimSlotDeps holds dependencies for ClaimSlot.
type ClaimSlotDeps struct {
	SlotStore   SlotStoreForClaim
	ClientStore ClientStoreForClaim
	CoachStore  CoachLookup
	EmailSender email.Sender
	BaseURL     string
	GenerateID  func() string
	Now         func() time.Time
}

// ClaimSlotResult describes a successful claim for the confirmation page.
type ClaimSlotResult struct {
	ClientName string
	CoachName  string
	Start      time.Time
	End        time.Time
	Note       string
	Location   string
}

// ClaimConflictError reports a claim that lost to an earlier claimant,
// carrying their name when known.
type ClaimConflictError struct {
	ClaimedByName string
}

func (e *ClaimConflictError) Error() string { return "slot has already been claimed" }

// Is makes the conflict match slotDomain.ErrAlreadyClaimed in errors.Is checks.
func (e *ClaimConflictError) Is(target error) bool {
	return target == slotDomain.ErrAlreadyClaimed
}

// ExecuteClaimSlot converts one open slot to claimed for exactly one client.
// The open-and-token-matches predicate runs inside the store's conditional
// update, so concurrent claimants cannot double-book; this function never
// decides the race in application code.
//
// The claim is final once the transition commits: confirmation emails and
// link rows that fail afterwards are logged, never rolled back.
// PRE: SlotID, Token, Email are non-empty
// POST: Slot claimed and client linked to the coach (and club, if any), or a
// domain error describing why not
func ExecuteClaimSlot(ctx context.Context, input ClaimSlotInput, deps ClaimSlotDeps) (ClaimSlotResult, error) {
	addr := clientDomain.NormalizeEmail(input.Email)
	if !clientDomain.ValidEmail(addr) {
		return ClaimSlotResult{}, clientDomain.ErrInvalidEmail
	}

	// Token and status check up front so invalid links and claims on dead
	// or already-won slots never create client rows. A race that slips in
	// between this read and the commit is still decided by the conditional
	// update below.
	e, err := deps.SlotStore.GetByToken(ctx, input.SlotID, input.Token)
	if err != nil {
		return ClaimSlotResult{}, err
	}
	switch e.Status {
	case slotDomain.StatusCancelled:
		return ClaimSlotResult{}, slotDomain.ErrCancelled
	case slotDomain.StatusClaimed:
		return ClaimSlotResult{}, claimConflict(ctx, deps, e.ID, input.Token)
	}

	now := deps.Now()
	cl, err := resolveClaimant(ctx, deps, addr, now)
	if err != nil {
		return ClaimSlotResult{}, err
	}

	if err := deps.SlotStore.Claim(ctx, e.ID, input.Token, cl.ID, now); err != nil {
		if errors.Is(err, slotDomain.ErrAlreadyClaimed) {
			return ClaimSlotResult{}, claimConflict(ctx, deps, e.ID, input.Token)
		}
		return ClaimSlotResult{}, err
	}
	e.Status = slotDomain.StatusClaimed
	e.ClaimedByClientID = cl.ID
	e.ClaimedAt = now

	// Side effects after the committed transition. None of these can undo
	// the claim.
	if err := deps.ClientStore.AddCoachLink(ctx, cl.ID, e.CoachID, now); err != nil {
		slog.Warn("claim_link_coach_failed", "slot_id", e.ID, "client_id", cl.ID, "error", err)
	}
	if e.ClubID != "" {
		if err := deps.ClientStore.AddClubLink(ctx, cl.ID, e.ClubID, now); err != nil {
			slog.Warn("claim_link_club_failed", "slot_id", e.ID, "client_id", cl.ID, "error", err)
		}
	}

	co, err := deps.CoachStore.GetByID(ctx, e.CoachID)
	if err != nil {
		slog.Warn("claim_coach_lookup_failed", "slot_id", e.ID, "error", err)
	} else {
		sendClaimEmails(ctx, deps, cl, co, e)
	}

	slog.Info("slot_claimed", "slot_id", e.ID, "client_id", cl.ID)
	return ClaimSlotResult{
		ClientName: cl.Name,
		CoachName:  co.Name,
		Start:      e.StartTime,
		End:        e.EndTime,
		Note:       e.Note,
		Location:   e.Location,
	}, nil
}

// resolveClaimant finds or creates the client row for a claim. Two
// first-time claimants racing on the same new email can both miss the
// lookup; the loser's insert then hits the unique email constraint, so a
// failed save is re-resolved by email before giving up.
func resolveClaimant(ctx context.Context, deps ClaimSlotDeps, addr string, now time.Time) (clientDomain.Client, error) {
	cl, err := deps.ClientStore.GetByEmail(ctx, addr)
	if err == nil {
		return cl, nil
	}
	cl = clientDomain.Client{
		ID:        deps.GenerateID(),
		Name:      clientDomain.NameFromEmail(addr),
		Email:     addr,
		CreatedAt: now,
	}
	if err := deps.ClientStore.Save(ctx, cl); err != nil {
		if existing, lookupErr := deps.ClientStore.GetByEmail(ctx, addr); lookupErr == nil {
			return existing, nil
		}
		return clientDomain.Client{}, err
	}
	return cl, nil
}

// claimConflict builds the AlreadyClaimed error, resolving the winner's name
// when the row is still readable.
func claimConflict(ctx context.Context, deps ClaimSlotDeps, slotID, token string) error {
	conflict := &ClaimConflictError{}
	if e, err := deps.SlotStore.GetByToken(ctx, slotID, token); err == nil && e.ClaimedByClientID != "" {
		if winner, err := deps.ClientStore.GetByID(ctx, e.ClaimedByClientID); err == nil {
			conflict.ClaimedByName = winner.Name
		}
	}
	return conflict
}

func sendClaimEmails(ctx context.Context, deps ClaimSlotDeps, cl clientDomain.Client, co coachDomain.Coach, e slotDomain.Slot) {
	if deps.EmailSender == nil {
		return
	}
	if _, err := deps.EmailSender.Send(ctx, blastmail.ClientConfirmation(cl, e, co)); err != nil {
		slog.Warn("claim_confirmation_email_failed", "slot_id", e.ID, "to", cl.Email, "error", err)
	}
	if _, err := deps.EmailSender.Send(ctx, blastmail.CoachNotification(co, cl, e, deps.BaseURL)); err != nil {
		slog.Warn("claim_coach_email_failed", "slot_id", e.ID, "to", co.Email, "error", err)
	}
}
