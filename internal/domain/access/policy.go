package access

import (
	"rackets/internal/domain/blast"
	"rackets/internal/domain/coach"
)

// Caller is the pre-resolved identity of an authenticated coach. The
// boundary layer (session middleware) produces it; core operations take it
// as an explicit parameter and never consult ambient state.
type Caller struct {
	CoachID string
	Role    string
	ClubID  string
}

// Decision is a tagged allow/deny result. Deny reasons are internal
// diagnostics, not user-facing copy.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// CanReadSlot decides whether the caller may read a slot owned by
// ownerCoachID in slotClubID. Coaches read their own slots; directors
// additionally read any slot in their club.
func CanReadSlot(c Caller, ownerCoachID, slotClubID string) Decision {
	if c.CoachID == "" {
		return deny("unauthenticated")
	}
	if c.CoachID == ownerCoachID {
		return allow()
	}
	if c.Role == coach.RoleDirector && c.ClubID != "" && c.ClubID == slotClubID {
		return allow()
	}
	return deny("slot is not owned by caller and caller is not its club director")
}

// CanMutateSlot decides whether the caller may update, cancel, or delete a
// slot. Only the owning coach may; directors get read-only club visibility.
func CanMutateSlot(c Caller, ownerCoachID string) Decision {
	if c.CoachID == "" {
		return deny("unauthenticated")
	}
	if c.CoachID != ownerCoachID {
		return deny("only the owning coach may mutate a slot")
	}
	return allow()
}

// CanBlast decides whether the caller may trigger a blast at the given
// scope. Any coach may blast their own slots; club scope is directors only.
func CanBlast(c Caller, scope string) Decision {
	if c.CoachID == "" {
		return deny("unauthenticated")
	}
	switch scope {
	case blast.ScopeOwn:
		return allow()
	case blast.ScopeClub:
		if c.Role != coach.RoleDirector {
			return deny("only directors can send club blasts")
		}
		if c.ClubID == "" {
			return deny("no club associated with this account")
		}
		return allow()
	}
	return deny("unknown blast scope")
}

// CanManageInvitations decides whether the caller may issue or list club
// coach invitations. Directors only.
func CanManageInvitations(c Caller) Decision {
	if c.CoachID == "" {
		return deny("unauthenticated")
	}
	if c.Role != coach.RoleDirector || c.ClubID == "" {
		return deny("only directors can manage club invitations")
	}
	return allow()
}

// CanListClubScope decides whether the caller may list slots or history at
// club scope.
func CanListClubScope(c Caller) Decision {
	if c.CoachID == "" {
		return deny("unauthenticated")
	}
	if c.Role != coach.RoleDirector || c.ClubID == "" {
		return deny("club scope requires the director role")
	}
	return allow()
}
