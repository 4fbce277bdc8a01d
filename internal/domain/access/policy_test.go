package access

import (
	"testing"

	"rackets/internal/domain/blast"
	"rackets/internal/domain/coach"
)

var (
	director    = Caller{CoachID: "dir-1", Role: coach.RoleDirector, ClubID: "club-1"}
	clubCoach   = Caller{CoachID: "cc-1", Role: coach.RoleClubCoach, ClubID: "club-1"}
	independent = Caller{CoachID: "ind-1", Role: coach.RoleIndependentCoach}
)

// TestCanReadSlot tests read visibility across roles and ownership.
func TestCanReadSlot(t *testing.T) {
	cases := []struct {
		name       string
		caller     Caller
		owner      string
		slotClub   string
		want       bool
	}{
		{"own slot", clubCoach, "cc-1", "club-1", true},
		{"another coach's slot", clubCoach, "cc-2", "club-1", false},
		{"director reads club slot", director, "cc-1", "club-1", true},
		{"director reads foreign club slot", director, "cc-9", "club-2", false},
		{"independent reads own", independent, "ind-1", "", true},
		{"independent reads other", independent, "cc-1", "club-1", false},
		{"unauthenticated", Caller{}, "cc-1", "club-1", false},
	}
	for _, c := range cases {
		if got := CanReadSlot(c.caller, c.owner, c.slotClub).Allowed; got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

// TestCanMutateSlot tests that only owners mutate, directors included.
func TestCanMutateSlot(t *testing.T) {
	if !CanMutateSlot(clubCoach, "cc-1").Allowed {
		t.Error("owner should be allowed to mutate")
	}
	// director visibility does not grant mutation
	if CanMutateSlot(director, "cc-1").Allowed {
		t.Error("director must not mutate another coach's slot")
	}
	if CanMutateSlot(Caller{}, "cc-1").Allowed {
		t.Error("unauthenticated caller must be denied")
	}
}

// TestCanBlast tests blast authority by scope.
func TestCanBlast(t *testing.T) {
	cases := []struct {
		name   string
		caller Caller
		scope  string
		want   bool
	}{
		{"coach own scope", clubCoach, blast.ScopeOwn, true},
		{"independent own scope", independent, blast.ScopeOwn, true},
		{"director club scope", director, blast.ScopeClub, true},
		{"club coach club scope", clubCoach, blast.ScopeClub, false},
		{"independent club scope", independent, blast.ScopeClub, false},
		{"director without club", Caller{CoachID: "d2", Role: coach.RoleDirector}, blast.ScopeClub, false},
		{"unknown scope", director, "everyone", false},
		{"unauthenticated", Caller{}, blast.ScopeOwn, false},
	}
	for _, c := range cases {
		if got := CanBlast(c.caller, c.scope).Allowed; got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

// TestCanManageInvitations tests that invitations are director-only.
func TestCanManageInvitations(t *testing.T) {
	if !CanManageInvitations(director).Allowed {
		t.Error("director should manage invitations")
	}
	if CanManageInvitations(clubCoach).Allowed {
		t.Error("club coach must not manage invitations")
	}
	if CanManageInvitations(independent).Allowed {
		t.Error("independent coach must not manage invitations")
	}
}

// TestCanListClubScope tests club-wide listing authority.
func TestCanListClubScope(t *testing.T) {
	if !CanListClubScope(director).Allowed {
		t.Error("director should list club scope")
	}
	if CanListClubScope(clubCoach).Allowed {
		t.Error("club coach must not list club scope")
	}
}
