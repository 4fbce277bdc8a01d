package projections

import (
	"context"
	"time"

	slotStore "rackets/internal/adapters/storage/slot"
	"rackets/internal/domain/access"
	domainBlast "rackets/internal/domain/blast"
	domainSlot "rackets/internal/domain/slot"
)

// recentBlastLimit bounds how many audit rows the dashboard shows.
const recentBlastLimit = 10

// GetDashboardQuery carries input for the dashboard projection. ClubScope
// widens the counts from the caller's own slots to their whole club,
// directors only.
type GetDashboardQuery struct {
	CallerID  string
	ClubScope bool
	Now       time.Time
}

// GetDashboardResult summarizes the current book of slots in scope.
type GetDashboardResult struct {
	OpenSlots      int
	ClaimedSlots   int
	CancelledSlots int
	UpcomingSlots  int // open slots starting after Now
	AwaitingBlast  int // open, unnotified, future slots
	ClientCount    int
	RecentBlasts   []domainBlast.Record
	NextSlot       domainSlot.Slot
	HasNextSlot    bool
}

// GetDashboardDeps holds dependencies for the dashboard projection.
// CoachStore is only consulted for club scope.
type GetDashboardDeps struct {
	SlotStore   SlotStore
	CoachStore  CoachStore
	ClientStore ClientStore
	BlastStore  BlastStore
}

// QueryGetDashboard aggregates slot counts, client count, and recent blast
// history for the caller, or for the caller's whole club when a director
// asks for club scope.
// PRE: CallerID is non-empty, Now is set
// POST: Returns counts over all slots in scope, or ErrForbidden
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	filter := slotStore.ListFilter{CoachID: query.CallerID}
	var clubID string
	if query.ClubScope {
		caller, err := deps.CoachStore.GetByID(ctx, query.CallerID)
		if err != nil {
			return GetDashboardResult{}, err
		}
		decision := access.CanListClubScope(access.Caller{
			CoachID: caller.ID, Role: caller.Role, ClubID: caller.ClubID,
		})
		if !decision.Allowed {
			return GetDashboardResult{}, ErrForbidden
		}
		clubID = caller.ClubID
		filter = slotStore.ListFilter{ClubID: clubID}
	}

	slots, err := deps.SlotStore.List(ctx, filter)
	if err != nil {
		return GetDashboardResult{}, err
	}

	var result GetDashboardResult
	for _, s := range slots {
		switch s.Status {
		case domainSlot.StatusOpen:
			result.OpenSlots++
			if s.StartTime.After(query.Now) {
				result.UpcomingSlots++
				if !result.HasNextSlot || s.StartTime.Before(result.NextSlot.StartTime) {
					result.NextSlot = s
					result.HasNextSlot = true
				}
			}
			if s.NeedsNotification(query.Now) {
				result.AwaitingBlast++
			}
		case domainSlot.StatusClaimed:
			result.ClaimedSlots++
		case domainSlot.StatusCancelled:
			result.CancelledSlots++
		}
	}

	if clubID != "" {
		clients, err := deps.ClientStore.ListRecipientsForClub(ctx, clubID)
		if err != nil {
			return GetDashboardResult{}, err
		}
		result.ClientCount = len(clients)

		blasts, err := deps.BlastStore.ListByClub(ctx, clubID, recentBlastLimit)
		if err != nil {
			return GetDashboardResult{}, err
		}
		result.RecentBlasts = blasts
		return result, nil
	}

	clients, err := deps.ClientStore.ListByCoach(ctx, query.CallerID)
	if err != nil {
		return GetDashboardResult{}, err
	}
	result.ClientCount = len(clients)

	blasts, err := deps.BlastStore.ListByCoach(ctx, query.CallerID, recentBlastLimit)
	if err != nil {
		return GetDashboardResult{}, err
	}
	result.RecentBlasts = blasts

	return result, nil
}
