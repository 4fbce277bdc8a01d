package coach

import "testing"

// TestValidate_Director tests that a director with a club passes.
func TestValidate_Director(t *testing.T) {
	c := Coach{ID: "co1", Name: "Pat", Email: "pat@example.com", Role: RoleDirector, ClubID: "club-1"}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid coach, got: %v", err)
	}
}

// TestValidate_DirectorWithoutClub tests that directors must belong to a club.
func TestValidate_DirectorWithoutClub(t *testing.T) {
	c := Coach{Name: "Pat", Email: "pat@example.com", Role: RoleDirector}
	if err := c.Validate(); err != ErrClubRequired {
		t.Errorf("expected ErrClubRequired, got: %v", err)
	}
}

// TestValidate_ClubCoachWithoutClub tests that club coaches must belong to a club.
func TestValidate_ClubCoachWithoutClub(t *testing.T) {
	c := Coach{Name: "Pat", Email: "pat@example.com", Role: RoleClubCoach}
	if err := c.Validate(); err != ErrClubRequired {
		t.Errorf("expected ErrClubRequired, got: %v", err)
	}
}

// TestValidate_IndependentWithClub tests that independents cannot carry a club.
func TestValidate_IndependentWithClub(t *testing.T) {
	c := Coach{Name: "Pat", Email: "pat@example.com", Role: RoleIndependentCoach, ClubID: "club-1"}
	if err := c.Validate(); err != ErrClubForbidden {
		t.Errorf("expected ErrClubForbidden, got: %v", err)
	}
}

// TestValidate_BadRole tests that unknown roles are rejected.
func TestValidate_BadRole(t *testing.T) {
	c := Coach{Name: "Pat", Email: "pat@example.com", Role: "admin"}
	if err := c.Validate(); err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got: %v", err)
	}
}

// TestIsDirector tests the role predicate.
func TestIsDirector(t *testing.T) {
	d := Coach{Role: RoleDirector}
	if !d.IsDirector() {
		t.Error("director should be a director")
	}
	cc := Coach{Role: RoleClubCoach}
	if cc.IsDirector() {
		t.Error("club coach should not be a director")
	}
}
