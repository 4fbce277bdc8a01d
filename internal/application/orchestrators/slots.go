// Package orchestrators contains the application's write-side use cases.
// Each orchestrator takes an Input and a Deps struct so stores, clocks, and
// ID generation stay injectable in tests.
package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	slotDomain "rackets/internal/domain/slot"
)

// ErrForbidden is returned when the access policy denies an operation.
var ErrForbidden = errors.New("forbidden")

// SlotStoreForOrchestrator defines the store interface needed by slot orchestrators.
type SlotStoreForOrchestrator interface {
	GetByOwner(ctx context.Context, id, coachID string) (slotDomain.Slot, error)
	Save(ctx context.Context, e slotDomain.Slot) error
	Delete(ctx context.Context, id string) error
}

// --- Create Slot ---

// CreateSlotInput carries input for creating a slot.
type CreateSlotInput struct {
	CoachID  string
	ClubID   string // empty for independent coaches
	Start    time.Time
	End      time.Time
	Note     string
	Location string
}

// CreateSlotDeps holds dependencies for CreateSlot.
type CreateSlotDeps struct {
	SlotStore     SlotStoreForOrchestrator
	GenerateID    func() string
	GenerateToken func() string
	Now           func() time.Time
}

// ExecuteCreateSlot creates an open slot with a fresh claim token.
// No email is sent here; notification is a separate, explicit blast.
// PRE: CoachID is non-empty
// POST: Slot saved with status open, notifications_sent false
func ExecuteCreateSlot(ctx context.Context, input CreateSlotInput, deps CreateSlotDeps) (slotDomain.Slot, error) {
	now := deps.Now()
	e := slotDomain.Slot{
		ID:         deps.GenerateID(),
		CoachID:    input.CoachID,
		ClubID:     input.ClubID,
		StartTime:  input.Start,
		EndTime:    input.End,
		Status:     slotDomain.StatusOpen,
		Note:       input.Note,
		Location:   input.Location,
		ClaimToken: deps.GenerateToken(),
		CreatedAt:  now,
	}
	if err := e.ValidateForCreate(now); err != nil {
		return slotDomain.Slot{}, err
	}
	if err := deps.SlotStore.Save(ctx, e); err != nil {
		return slotDomain.Slot{}, err
	}
	slog.Info("slot_created", "slot_id", e.ID, "coach_id", e.CoachID, "start", e.StartTime)
	return e, nil
}

// --- Update Slot ---

// UpdateSlotInput carries input for editing a slot. Nil pointers leave the
// field unchanged. Status accepts only "cancelled"; any other value is
// silently ignored, since open and claimed are never entered by edit.
type UpdateSlotInput struct {
	SlotID   string
	CallerID string
	Note     *string
	Location *string
	Status   string
}

// UpdateSlotDeps holds dependencies for UpdateSlot.
type UpdateSlotDeps struct {
	SlotStore SlotStoreForOrchestrator
	Now       func() time.Time
}

// ExecuteUpdateSlot edits a slot's note/location or cancels it. Ownership is
// enforced in the lookup: a slot the caller does not own reads as missing.
// PRE: SlotID and CallerID are non-empty
// POST: Slot saved with requested changes; cancellation is terminal
func ExecuteUpdateSlot(ctx context.Context, input UpdateSlotInput, deps UpdateSlotDeps) (slotDomain.Slot, error) {
	e, err := deps.SlotStore.GetByOwner(ctx, input.SlotID, input.CallerID)
	if err != nil {
		return slotDomain.Slot{}, err
	}

	if input.Note != nil {
		e.Note = *input.Note
	}
	if input.Location != nil {
		e.Location = *input.Location
	}
	if input.Status == slotDomain.StatusCancelled {
		if err := e.Cancel(); err != nil {
			return slotDomain.Slot{}, err
		}
	}

	e.UpdatedAt = deps.Now()
	if err := deps.SlotStore.Save(ctx, e); err != nil {
		return slotDomain.Slot{}, err
	}
	slog.Info("slot_updated", "slot_id", e.ID, "status", e.Status)
	return e, nil
}

// --- Delete Slot ---

// DeleteSlotInput carries input for deleting a slot.
type DeleteSlotInput struct {
	SlotID   string
	CallerID string
}

// DeleteSlotDeps holds dependencies for DeleteSlot.
type DeleteSlotDeps struct {
	SlotStore SlotStoreForOrchestrator
}

// ExecuteDeleteSlot hard deletes a slot, permitted only while it is open.
// Claimed or cancelled slots stay on record.
// PRE: SlotID and CallerID are non-empty
// POST: Slot row removed, or ErrNotOpen / store ErrNotFound
func ExecuteDeleteSlot(ctx context.Context, input DeleteSlotInput, deps DeleteSlotDeps) error {
	e, err := deps.SlotStore.GetByOwner(ctx, input.SlotID, input.CallerID)
	if err != nil {
		return err
	}
	if !e.Deletable() {
		return slotDomain.ErrNotOpen
	}
	if err := deps.SlotStore.Delete(ctx, e.ID); err != nil {
		return err
	}
	slog.Info("slot_deleted", "slot_id", e.ID, "coach_id", input.CallerID)
	return nil
}
