package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rackets/internal/adapters/email"
	slotStore "rackets/internal/adapters/storage/slot"
	"rackets/internal/application/blastmail"
	"rackets/internal/domain/access"
	blastDomain "rackets/internal/domain/blast"
	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
	coachDomain "rackets/internal/domain/coach"
	slotDomain "rackets/internal/domain/slot"
)

// maxSampleErrors bounds how many delivery failures are reported verbatim;
// the rest are summarized by count.
const maxSampleErrors = 5

// SlotStoreForBlast defines the slot store interface the batcher needs.
type SlotStoreForBlast interface {
	ListBlastCandidates(ctx context.Context, filter slotStore.BlastFilter) ([]slotDomain.Slot, error)
	MarkNotified(ctx context.Context, ids []string, via string, at time.Time) error
}

// ClientStoreForBlast resolves blast recipients.
type ClientStoreForBlast interface {
	ListRecipientsForCoach(ctx context.Context, coachID string) ([]clientDomain.Client, error)
	ListRecipientsForClub(ctx context.Context, clubID string) ([]clientDomain.Client, error)
}

// ClubLookup resolves clubs for club-scoped blasts.
type ClubLookup interface {
	GetByID(ctx context.Context, id string) (clubDomain.Club, error)
}

// BlastLogStore appends audit records.
type BlastLogStore interface {
	Append(ctx context.Context, e blastDomain.Record) error
}

// SendBlastInput carries input for triggering a blast.
type SendBlastInput struct {
	CallerID string
	Scope    string // blastDomain.ScopeOwn or ScopeClub
}

// SendBlastDeps holds dependencies for SendBlast.
type SendBlastDeps struct {
	SlotStore   SlotStoreForBlast
	ClientStore ClientStoreForBlast
	CoachStore  CoachLookup
	ClubStore   ClubLookup
	BlastStore  BlastLogStore
	EmailSender email.Sender
	BaseURL     string
	GenerateID  func() string
	Now         func() time.Time
}

// SendBlastResult summarizes a completed batch.
type SendBlastResult struct {
	SlotsIncluded int
	EmailsSent    int
	EmailsFailed  int
	SampleErrors  []string
}

// ExecuteSendBlast selects every unnotified future open slot in scope,
// composes one email per recipient covering all of them, attempts delivery
// to everyone, then marks the slots notified in a single commit. Because the
// candidate query excludes already-notified slots, retrying a completed
// blast is a no-op rather than a duplicate send.
// PRE: CallerID is non-empty, Scope is own or club
// POST: Candidate slots marked notified and an audit record appended, or
// ErrForbidden / blastDomain.ErrNoSlots / blastDomain.ErrNoRecipients
func ExecuteSendBlast(ctx context.Context, input SendBlastInput, deps SendBlastDeps) (SendBlastResult, error) {
	blastType, err := blastDomain.TypeForScope(input.Scope)
	if err != nil {
		return SendBlastResult{}, err
	}

	caller, err := deps.CoachStore.GetByID(ctx, input.CallerID)
	if err != nil {
		return SendBlastResult{}, err
	}
	decision := access.CanBlast(access.Caller{
		CoachID: caller.ID, Role: caller.Role, ClubID: caller.ClubID,
	}, input.Scope)
	if !decision.Allowed {
		slog.Warn("blast_forbidden", "coach_id", caller.ID, "scope", input.Scope, "reason", decision.Reason)
		return SendBlastResult{}, ErrForbidden
	}

	now := deps.Now()
	filter := slotStore.BlastFilter{Now: now}
	if input.Scope == blastDomain.ScopeClub {
		filter.ClubID = caller.ClubID
	} else {
		filter.CoachID = caller.ID
	}
	candidates, err := deps.SlotStore.ListBlastCandidates(ctx, filter)
	if err != nil {
		return SendBlastResult{}, err
	}
	if len(candidates) == 0 {
		return SendBlastResult{}, blastDomain.ErrNoSlots
	}

	var recipients []clientDomain.Client
	if input.Scope == blastDomain.ScopeClub {
		recipients, err = deps.ClientStore.ListRecipientsForClub(ctx, caller.ClubID)
	} else {
		recipients, err = deps.ClientStore.ListRecipientsForCoach(ctx, caller.ID)
	}
	if err != nil {
		return SendBlastResult{}, err
	}
	if len(recipients) == 0 {
		return SendBlastResult{}, blastDomain.ErrNoRecipients
	}

	compose, err := composerFor(ctx, input.Scope, caller, candidates, deps)
	if err != nil {
		return SendBlastResult{}, err
	}

	result := SendBlastResult{SlotsIncluded: len(candidates)}
	for _, cl := range recipients {
		if _, err := deps.EmailSender.Send(ctx, compose(cl)); err != nil {
			result.EmailsFailed++
			if len(result.SampleErrors) < maxSampleErrors {
				result.SampleErrors = append(result.SampleErrors, fmt.Sprintf("%s: %v", cl.Email, err))
			}
			continue
		}
		result.EmailsSent++
	}

	// One commit after the whole fan-out. A slot counts as notified once a
	// blast targeting it has been attempted, whatever the delivery outcomes.
	ids := make([]string, len(candidates))
	for i, s := range candidates {
		ids[i] = s.ID
	}
	if err := deps.SlotStore.MarkNotified(ctx, ids, blastType, now); err != nil {
		return result, err
	}

	record := blastDomain.Record{
		ID:            deps.GenerateID(),
		SentByCoachID: caller.ID,
		BlastType:     blastType,
		SlotsIncluded: result.SlotsIncluded,
		EmailsSent:    result.EmailsSent,
		EmailsFailed:  result.EmailsFailed,
		CreatedAt:     now,
	}
	if input.Scope == blastDomain.ScopeClub {
		record.ClubID = caller.ClubID
	}
	if err := deps.BlastStore.Append(ctx, record); err != nil {
		slog.Error("blast_audit_append_failed", "coach_id", caller.ID, "error", err)
	}

	slog.Info("blast_sent", "coach_id", caller.ID, "scope", input.Scope,
		"slots", result.SlotsIncluded, "sent", result.EmailsSent, "failed", result.EmailsFailed)
	return result, nil
}

// composerFor returns the per-recipient message builder for a scope. All
// recipients of one blast see the same slot set; only the greeting and the
// claim links differ.
func composerFor(ctx context.Context, scope string, caller coachDomain.Coach, candidates []slotDomain.Slot, deps SendBlastDeps) (func(clientDomain.Client) email.SendRequest, error) {
	if scope == blastDomain.ScopeOwn {
		return func(cl clientDomain.Client) email.SendRequest {
			return blastmail.CoachBlast(cl, caller, candidates, deps.BaseURL)
		}, nil
	}

	cb, err := deps.ClubStore.GetByID(ctx, caller.ClubID)
	if err != nil {
		return nil, err
	}
	groups, err := groupByCoach(ctx, candidates, deps.CoachStore)
	if err != nil {
		return nil, err
	}
	return func(cl clientDomain.Client) email.SendRequest {
		return blastmail.ClubBlast(cl, cb, groups, caller.Timezone, deps.BaseURL)
	}, nil
}

// groupByCoach buckets candidate slots per owning coach, preserving the
// candidates' start-time order within each group.
func groupByCoach(ctx context.Context, candidates []slotDomain.Slot, coaches CoachLookup) ([]blastmail.CoachGroup, error) {
	index := map[string]int{}
	var groups []blastmail.CoachGroup
	for _, s := range candidates {
		i, ok := index[s.CoachID]
		if !ok {
			co, err := coaches.GetByID(ctx, s.CoachID)
			if err != nil {
				return nil, err
			}
			i = len(groups)
			index[s.CoachID] = i
			groups = append(groups, blastmail.CoachGroup{CoachName: co.Name})
		}
		groups[i].Slots = append(groups[i].Slots, s)
	}
	return groups, nil
}
