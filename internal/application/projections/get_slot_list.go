package projections

import (
	"context"
	"errors"
	"time"

	slotStore "rackets/internal/adapters/storage/slot"
	"rackets/internal/domain/access"
	domainSlot "rackets/internal/domain/slot"
)

// ErrForbidden is returned when the access policy denies a query.
var ErrForbidden = errors.New("forbidden")

// GetSlotListQuery carries query parameters. ClubScope widens the listing
// from the caller's own slots to their whole club, directors only.
type GetSlotListQuery struct {
	CallerID  string
	ClubScope bool
	From      time.Time
	To        time.Time
}

// SlotListEntry is one slot with the owning coach's display name.
type SlotListEntry struct {
	Slot          domainSlot.Slot
	CoachName     string
	ClaimedByName string
}

// GetSlotListResult carries the query result.
type GetSlotListResult struct {
	Slots []SlotListEntry
}

// GetSlotListDeps holds dependencies for GetSlotList.
type GetSlotListDeps struct {
	SlotStore   SlotStore
	CoachStore  CoachStore
	ClientStore ClientStore
}

// QueryGetSlotList lists slots visible to the caller, ascending by start
// time. A director asking for club scope sees every coach's slots in their
// club; everyone else sees only their own.
// PRE: CallerID is non-empty
// POST: Returns visible slots with display names, or ErrForbidden
func QueryGetSlotList(ctx context.Context, query GetSlotListQuery, deps GetSlotListDeps) (GetSlotListResult, error) {
	caller, err := deps.CoachStore.GetByID(ctx, query.CallerID)
	if err != nil {
		return GetSlotListResult{}, err
	}

	filter := slotStore.ListFilter{From: query.From, To: query.To}
	if query.ClubScope {
		decision := access.CanListClubScope(access.Caller{
			CoachID: caller.ID, Role: caller.Role, ClubID: caller.ClubID,
		})
		if !decision.Allowed {
			return GetSlotListResult{}, ErrForbidden
		}
		filter.ClubID = caller.ClubID
	} else {
		filter.CoachID = caller.ID
	}

	slots, err := deps.SlotStore.List(ctx, filter)
	if err != nil {
		return GetSlotListResult{}, err
	}

	// Resolve display names once per distinct coach/claimant.
	coachNames := map[string]string{caller.ID: caller.Name}
	clientNames := map[string]string{}
	result := GetSlotListResult{Slots: make([]SlotListEntry, 0, len(slots))}
	for _, s := range slots {
		entry := SlotListEntry{Slot: s}

		name, ok := coachNames[s.CoachID]
		if !ok {
			if co, err := deps.CoachStore.GetByID(ctx, s.CoachID); err == nil {
				name = co.Name
			}
			coachNames[s.CoachID] = name
		}
		entry.CoachName = name

		if s.ClaimedByClientID != "" {
			cname, ok := clientNames[s.ClaimedByClientID]
			if !ok {
				if cl, err := deps.ClientStore.GetByID(ctx, s.ClaimedByClientID); err == nil {
					cname = cl.Name
				}
				clientNames[s.ClaimedByClientID] = cname
			}
			entry.ClaimedByName = cname
		}

		result.Slots = append(result.Slots, entry)
	}
	return result, nil
}
