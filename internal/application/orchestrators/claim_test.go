package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	slotStore "rackets/internal/adapters/storage/slot"
	clientDomain "rackets/internal/domain/client"
	coachDomain "rackets/internal/domain/coach"
	slotDomain "rackets/internal/domain/slot"
)

type claimFixture struct {
	slots   *mockSlotStore
	clients *mockClientStore
	coaches *mockCoachStore
	sender  *mockSender
}

func newClaimFixture() claimFixture {
	f := claimFixture{
		slots:   newMockSlotStore(),
		clients: newMockClientStore(),
		coaches: newMockCoachStore(),
		sender:  newMockSender(),
	}
	f.coaches.coaches["c1"] = coachDomain.Coach{
		ID: "c1", Name: "Marta", Email: "marta@example.com",
		Role: coachDomain.RoleIndependentCoach, Timezone: "UTC",
	}
	f.slots.slots["s1"] = openTestSlot("s1", "c1")
	return f
}

func (f claimFixture) deps() ClaimSlotDeps {
	return ClaimSlotDeps{
		SlotStore:   f.slots,
		ClientStore: f.clients,
		CoachStore:  f.coaches,
		EmailSender: f.sender,
		BaseURL:     "http://localhost:8080",
		GenerateID:  seqID(),
		Now:         fixedNow,
	}
}

func TestExecuteClaimSlot_HappyPath(t *testing.T) {
	f := newClaimFixture()
	result, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "Ana@Example.com",
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CoachName != "Marta" {
		t.Errorf("coach name = %q", result.CoachName)
	}

	e := f.slots.slots["s1"]
	if e.Status != slotDomain.StatusClaimed {
		t.Errorf("status = %q, want claimed", e.Status)
	}

	// Email was lowercased before the client row was created.
	cl, err := f.clients.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatal("client row not created with normalized email")
	}
	if cl.Name != "ana" {
		t.Errorf("client name = %q, want local part of email", cl.Name)
	}
	if e.ClaimedByClientID != cl.ID {
		t.Errorf("claimed_by = %q, want %q", e.ClaimedByClientID, cl.ID)
	}

	// Claimant is now on the coach's list.
	if !f.clients.coachLinks["c1"][cl.ID] {
		t.Error("client should be linked to the coach")
	}

	// Confirmation to the client and notification to the coach.
	if len(f.sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(f.sender.sent))
	}
	if f.sender.sent[0].To[0] != "ana@example.com" || f.sender.sent[1].To[0] != "marta@example.com" {
		t.Errorf("wrong email recipients: %v, %v", f.sender.sent[0].To, f.sender.sent[1].To)
	}
}

func TestExecuteClaimSlot_ReusesExistingClient(t *testing.T) {
	f := newClaimFixture()
	f.clients.clients["cl-existing"] = clientDomain.Client{
		ID: "cl-existing", Name: "Ana Silva", Email: "ana@example.com",
	}

	result, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClientName != "Ana Silva" {
		t.Errorf("client name = %q, want existing row's name", result.ClientName)
	}
	if f.slots.slots["s1"].ClaimedByClientID != "cl-existing" {
		t.Error("claim should reference the existing client row")
	}
}

func TestExecuteClaimSlot_InvalidEmail(t *testing.T) {
	f := newClaimFixture()
	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "not-an-email",
	}, f.deps())
	if !errors.Is(err, clientDomain.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if f.slots.slots["s1"].Status != slotDomain.StatusOpen {
		t.Error("slot must remain open")
	}
}

func TestExecuteClaimSlot_WrongTokenIsNotFound(t *testing.T) {
	f := newClaimFixture()
	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "forged", Email: "ana@example.com",
	}, f.deps())
	if !errors.Is(err, slotStore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(f.clients.clients) != 0 {
		t.Error("invalid links must not create client rows")
	}
}

func TestExecuteClaimSlot_AlreadyClaimedCarriesWinnerName(t *testing.T) {
	f := newClaimFixture()
	if _, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "first@example.com",
	}, f.deps()); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "second@example.com",
	}, f.deps())
	if !errors.Is(err, slotDomain.ErrAlreadyClaimed) {
		t.Fatalf("expected AlreadyClaimed, got %v", err)
	}
	var conflict *ClaimConflictError
	if !errors.As(err, &conflict) {
		t.Fatal("expected a ClaimConflictError")
	}
	if conflict.ClaimedByName != "first" {
		t.Errorf("winner name = %q, want %q", conflict.ClaimedByName, "first")
	}

	// The winner's claim is untouched.
	winner, _ := f.clients.GetByEmail(context.Background(), "first@example.com")
	if f.slots.slots["s1"].ClaimedByClientID != winner.ID {
		t.Error("losing claim must not alter the claimant")
	}
}

func TestExecuteClaimSlot_Cancelled(t *testing.T) {
	f := newClaimFixture()
	s := f.slots.slots["s1"]
	s.Status = slotDomain.StatusCancelled
	f.slots.slots["s1"] = s

	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, f.deps())
	if !errors.Is(err, slotDomain.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestExecuteClaimSlot_CancelledCreatesNoClient(t *testing.T) {
	f := newClaimFixture()
	s := f.slots.slots["s1"]
	s.Status = slotDomain.StatusCancelled
	f.slots.slots["s1"] = s

	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, f.deps())
	if !errors.Is(err, slotDomain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(f.clients.clients) != 0 {
		t.Errorf("a claim on a cancelled slot must not create client rows, got %d", len(f.clients.clients))
	}
}

func TestExecuteClaimSlot_LostClaimCreatesNoClient(t *testing.T) {
	f := newClaimFixture()
	if _, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "first@example.com",
	}, f.deps()); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "second@example.com",
	}, f.deps())
	if !errors.Is(err, slotDomain.ErrAlreadyClaimed) {
		t.Fatalf("expected AlreadyClaimed, got %v", err)
	}
	if _, lookupErr := f.clients.GetByEmail(context.Background(), "second@example.com"); lookupErr == nil {
		t.Error("a losing claim must not leave a client row behind")
	}
	if len(f.clients.clients) != 1 {
		t.Errorf("client rows = %d, want only the winner's", len(f.clients.clients))
	}
}

// racingClientStore simulates a concurrent claimant inserting the same new
// email between this claim's lookup and its insert: the first Save fails the
// way a unique email constraint would, with the rival's row now present.
type racingClientStore struct {
	*mockClientStore
	raced bool
}

func (s *racingClientStore) Save(ctx context.Context, e clientDomain.Client) error {
	if !s.raced {
		s.raced = true
		s.mockClientStore.clients["rival"] = clientDomain.Client{
			ID: "rival", Name: "ana", Email: e.Email,
		}
		return errors.New("constraint failed: UNIQUE constraint failed: clients.email")
	}
	return s.mockClientStore.Save(ctx, e)
}

func TestExecuteClaimSlot_ClientInsertRaceResolvesToRivalRow(t *testing.T) {
	f := newClaimFixture()
	racing := &racingClientStore{mockClientStore: f.clients}
	deps := f.deps()
	deps.ClientStore = racing

	result, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, deps)
	if err != nil {
		t.Fatalf("claim should survive the insert race: %v", err)
	}
	if result.ClientName != "ana" {
		t.Errorf("client name = %q, want the rival row's", result.ClientName)
	}
	if f.slots.slots["s1"].ClaimedByClientID != "rival" {
		t.Errorf("claimant = %q, want the surviving row", f.slots.slots["s1"].ClaimedByClientID)
	}
	if len(f.clients.clients) != 1 {
		t.Errorf("client rows = %d, want exactly one", len(f.clients.clients))
	}
}

func TestExecuteClaimSlot_EmailFailureDoesNotUndoClaim(t *testing.T) {
	f := newClaimFixture()
	f.sender.failFor["ana@example.com"] = true

	_, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, f.deps())
	if err != nil {
		t.Fatalf("claim should succeed despite email failure: %v", err)
	}
	if f.slots.slots["s1"].Status != slotDomain.StatusClaimed {
		t.Error("claim must stand when the confirmation email fails")
	}
}

func TestExecuteClaimSlot_ClubSlotLinksClubToo(t *testing.T) {
	f := newClaimFixture()
	s := f.slots.slots["s1"]
	s.ClubID = "club1"
	f.slots.slots["s1"] = s

	if _, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, f.deps()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cl, _ := f.clients.GetByEmail(context.Background(), "ana@example.com")
	if !f.clients.clubLinks["club1"][cl.ID] {
		t.Error("claimant should be linked to the slot's club")
	}
}

func TestExecuteCheckSlot(t *testing.T) {
	f := newClaimFixture()
	result, err := ExecuteCheckSlot(context.Background(), CheckSlotInput{
		SlotID: "s1", Token: "token-s1",
	}, CheckSlotDeps{SlotStore: f.slots, ClientStore: f.clients, CoachStore: f.coaches})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CoachName != "Marta" {
		t.Errorf("coach name = %q", result.CoachName)
	}
	if !result.Slot.IsOpen() {
		t.Error("slot should read as open")
	}

	_, err = ExecuteCheckSlot(context.Background(), CheckSlotInput{
		SlotID: "s1", Token: "forged",
	}, CheckSlotDeps{SlotStore: f.slots, ClientStore: f.clients, CoachStore: f.coaches})
	if !errors.Is(err, slotStore.ErrNotFound) {
		t.Errorf("wrong token should read as not found, got %v", err)
	}
}

func TestExecuteCheckSlot_ClaimedShowsWinner(t *testing.T) {
	f := newClaimFixture()
	if _, err := ExecuteClaimSlot(context.Background(), ClaimSlotInput{
		SlotID: "s1", Token: "token-s1", Email: "ana@example.com",
	}, f.deps()); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	result, err := ExecuteCheckSlot(context.Background(), CheckSlotInput{
		SlotID: "s1", Token: "token-s1",
	}, CheckSlotDeps{SlotStore: f.slots, ClientStore: f.clients, CoachStore: f.coaches})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.EqualFold(result.ClaimedByName, "ana") {
		t.Errorf("claimed-by name = %q", result.ClaimedByName)
	}
}
