package projections

import (
	"context"

	"rackets/internal/domain/access"
	domainBlast "rackets/internal/domain/blast"
)

// GetBlastHistoryQuery carries query parameters. ClubScope shows the whole
// club's blast log, directors only.
type GetBlastHistoryQuery struct {
	CallerID  string
	ClubScope bool
	Limit     int
}

// BlastHistoryEntry is one audit record with the sender's display name.
type BlastHistoryEntry struct {
	Record     domainBlast.Record
	SenderName string
}

// GetBlastHistoryResult carries the query result.
type GetBlastHistoryResult struct {
	Blasts []BlastHistoryEntry
}

// GetBlastHistoryDeps holds dependencies for GetBlastHistory.
type GetBlastHistoryDeps struct {
	BlastStore BlastStore
	CoachStore CoachStore
}

// QueryGetBlastHistory lists past blasts, newest first.
// PRE: CallerID is non-empty
// POST: Returns the caller's (or their club's) audit records, or ErrForbidden
func QueryGetBlastHistory(ctx context.Context, query GetBlastHistoryQuery, deps GetBlastHistoryDeps) (GetBlastHistoryResult, error) {
	caller, err := deps.CoachStore.GetByID(ctx, query.CallerID)
	if err != nil {
		return GetBlastHistoryResult{}, err
	}

	var records []domainBlast.Record
	if query.ClubScope {
		decision := access.CanListClubScope(access.Caller{
			CoachID: caller.ID, Role: caller.Role, ClubID: caller.ClubID,
		})
		if !decision.Allowed {
			return GetBlastHistoryResult{}, ErrForbidden
		}
		records, err = deps.BlastStore.ListByClub(ctx, caller.ClubID, query.Limit)
	} else {
		records, err = deps.BlastStore.ListByCoach(ctx, caller.ID, query.Limit)
	}
	if err != nil {
		return GetBlastHistoryResult{}, err
	}

	names := map[string]string{caller.ID: caller.Name}
	result := GetBlastHistoryResult{Blasts: make([]BlastHistoryEntry, 0, len(records))}
	for _, r := range records {
		name, ok := names[r.SentByCoachID]
		if !ok {
			if co, err := deps.CoachStore.GetByID(ctx, r.SentByCoachID); err == nil {
				name = co.Name
			}
			names[r.SentByCoachID] = name
		}
		result.Blasts = append(result.Blasts, BlastHistoryEntry{Record: r, SenderName: name})
	}
	return result, nil
}
