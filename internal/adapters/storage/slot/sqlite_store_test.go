package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/slot"
)

var fixedTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// openTestDB creates an in-memory SQLite database with the schema applied.
// A single connection is forced so every goroutine sees the same :memory: db.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return db
}

func seedCoach(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO coach (id, email, name, role, created_at) VALUES (?, ?, ?, ?, ?)",
		id, id+"@example.com", "Coach "+id, "independent_coach", fixedTime.Format(dateLayout))
	if err != nil {
		t.Fatalf("failed to seed coach: %v", err)
	}
}

func seedClient(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO client (id, name, email, created_at) VALUES (?, ?, ?, ?)",
		id, "Client "+id, id+"@example.com", fixedTime.Format(dateLayout))
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
}

func openSlot(id, coachID string) domain.Slot {
	return domain.Slot{
		ID:         id,
		CoachID:    coachID,
		StartTime:  fixedTime.Add(24 * time.Hour),
		EndTime:    fixedTime.Add(25 * time.Hour),
		Status:     domain.StatusOpen,
		ClaimToken: "token-" + id,
		CreatedAt:  fixedTime,
	}
}

func TestSaveAndGetByID_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	e := openSlot("s1", "c1")
	e.Note = "bring your own racket"
	e.Location = "Court 3"
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CoachID != "c1" || got.Status != domain.StatusOpen {
		t.Errorf("unexpected slot: %+v", got)
	}
	if !got.StartTime.Equal(e.StartTime) {
		t.Errorf("start time = %v, want %v", got.StartTime, e.StartTime)
	}
	if got.Note != "bring your own racket" || got.Location != "Court 3" {
		t.Errorf("note/location not persisted: %+v", got)
	}
	if got.NotificationsSent {
		t.Error("fresh slot should not be marked notified")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db)

	_, err := store.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByOwner_HidesOtherCoachSlots(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedCoach(t, db, "c2")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.GetByOwner(ctx, "s1", "c1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	_, err := store.GetByOwner(ctx, "s1", "c2")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
}

func TestGetByToken_WrongTokenIsNotFound(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.GetByToken(ctx, "s1", "token-s1"); err != nil {
		t.Errorf("token lookup failed: %v", err)
	}
	_, err := store.GetByToken(ctx, "s1", "wrong")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong token, got %v", err)
	}
}

func TestSave_UpdatesExisting(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	e := openSlot("s1", "c1")
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	e.Note = "updated"
	e.Status = domain.StatusCancelled
	e.UpdatedAt = fixedTime.Add(time.Hour)
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Note != "updated" || got.Status != domain.StatusCancelled {
		t.Errorf("update not applied: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at should be set")
	}
}

func TestDelete_RemovesSlot(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err := store.GetByID(ctx, "s1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestList_OrderedByStartTime(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedCoach(t, db, "c2")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	later := openSlot("s-later", "c1")
	later.StartTime = fixedTime.Add(48 * time.Hour)
	later.EndTime = later.StartTime.Add(time.Hour)
	earlier := openSlot("s-earlier", "c1")
	other := openSlot("s-other", "c2")

	for _, e := range []domain.Slot{later, earlier, other} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save %s failed: %v", e.ID, err)
		}
	}

	got, err := store.List(ctx, ListFilter{CoachID: "c1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(got))
	}
	if got[0].ID != "s-earlier" || got[1].ID != "s-later" {
		t.Errorf("wrong order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestList_RangeFilter(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	near := openSlot("s-near", "c1")
	far := openSlot("s-far", "c1")
	far.StartTime = fixedTime.Add(30 * 24 * time.Hour)
	far.EndTime = far.StartTime.Add(time.Hour)
	for _, e := range []domain.Slot{near, far} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := store.List(ctx, ListFilter{
		CoachID: "c1",
		From:    fixedTime,
		To:      fixedTime.Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s-near" {
		t.Errorf("range filter wrong result: %+v", got)
	}
}

func TestListBlastCandidates_FiltersCorrectly(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedClient(t, db, "cl1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	fresh := openSlot("s-fresh", "c1")

	notified := openSlot("s-notified", "c1")
	notified.NotificationsSent = true
	notified.NotifiedAt = fixedTime
	notified.NotifiedVia = domain.NotifiedViaCoachBlast

	past := openSlot("s-past", "c1")
	past.StartTime = fixedTime.Add(-2 * time.Hour)
	past.EndTime = fixedTime.Add(-1 * time.Hour)

	claimed := openSlot("s-claimed", "c1")
	claimed.Status = domain.StatusClaimed
	claimed.ClaimedByClientID = "cl1"
	claimed.ClaimedAt = fixedTime

	cancelled := openSlot("s-cancelled", "c1")
	cancelled.Status = domain.StatusCancelled

	for _, e := range []domain.Slot{fresh, notified, past, claimed, cancelled} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save %s failed: %v", e.ID, err)
		}
	}

	got, err := store.ListBlastCandidates(ctx, BlastFilter{CoachID: "c1", Now: fixedTime})
	if err != nil {
		t.Fatalf("ListBlastCandidates failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s-fresh" {
		t.Errorf("expected only the fresh open slot, got %+v", got)
	}
}

func TestMarkNotified_SetsFlagOnListedSlots(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		if err := store.Save(ctx, openSlot(id, "c1")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	at := fixedTime.Add(time.Minute)
	if err := store.MarkNotified(ctx, []string{"s1", "s2"}, domain.NotifiedViaCoachBlast, at); err != nil {
		t.Fatalf("MarkNotified failed: %v", err)
	}

	for _, tc := range []struct {
		id   string
		want bool
	}{
		{"s1", true},
		{"s2", true},
		{"s3", false},
	} {
		got, err := store.GetByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("GetByID %s failed: %v", tc.id, err)
		}
		if got.NotificationsSent != tc.want {
			t.Errorf("%s: notifications_sent = %v, want %v", tc.id, got.NotificationsSent, tc.want)
		}
		if tc.want && got.NotifiedVia != domain.NotifiedViaCoachBlast {
			t.Errorf("%s: notified_via = %q", tc.id, got.NotifiedVia)
		}
	}
}

func TestMarkNotified_EmptyListIsNoop(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLiteStore(db)

	if err := store.MarkNotified(context.Background(), nil, domain.NotifiedViaCoachBlast, fixedTime); err != nil {
		t.Errorf("MarkNotified with empty list failed: %v", err)
	}
}

func TestClaim_Succeeds(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedClient(t, db, "cl1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	at := fixedTime.Add(time.Minute)
	if err := store.Claim(ctx, "s1", "token-s1", "cl1", at); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusClaimed {
		t.Errorf("status = %q, want claimed", got.Status)
	}
	if got.ClaimedByClientID != "cl1" {
		t.Errorf("claimed_by = %q, want cl1", got.ClaimedByClientID)
	}
	if !got.ClaimedAt.Equal(at) {
		t.Errorf("claimed_at = %v, want %v", got.ClaimedAt, at)
	}
}

func TestClaim_WrongTokenReturnsNotFound(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedClient(t, db, "cl1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	err := store.Claim(ctx, "s1", "wrong", "cl1", fixedTime)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, _ := store.GetByID(ctx, "s1")
	if got.Status != domain.StatusOpen {
		t.Errorf("slot should remain open, got %q", got.Status)
	}
}

func TestClaim_AlreadyClaimed(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedClient(t, db, "cl1")
	seedClient(t, db, "cl2")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Claim(ctx, "s1", "token-s1", "cl1", fixedTime); err != nil {
		t.Fatalf("first Claim failed: %v", err)
	}

	err := store.Claim(ctx, "s1", "token-s1", "cl2", fixedTime.Add(time.Second))
	if !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed, got %v", err)
	}

	got, _ := store.GetByID(ctx, "s1")
	if got.ClaimedByClientID != "cl1" {
		t.Errorf("claimant changed to %q", got.ClaimedByClientID)
	}
}

func TestClaim_Cancelled(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedClient(t, db, "cl1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	e := openSlot("s1", "c1")
	e.Status = domain.StatusCancelled
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	err := store.Claim(ctx, "s1", "token-s1", "cl1", fixedTime)
	if !errors.Is(err, domain.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestClaim_MissingSlotReturnsNotFound(t *testing.T) {
	db := openTestDB(t)
	seedClient(t, db, "cl1")
	store := NewSQLiteStore(db)

	err := store.Claim(context.Background(), "nope", "token", "cl1", fixedTime)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestClaim_ConcurrentRace fires many claimants at one slot and requires
// exactly one winner; everyone else must observe ErrAlreadyClaimed.
func TestClaim_ConcurrentRace(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	const claimants = 16
	for i := 0; i < claimants; i++ {
		seedClient(t, db, fmt.Sprintf("cl%d", i))
	}
	if err := store.Save(ctx, openSlot("s1", "c1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	results := make([]error, claimants)
	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.Claim(ctx, "s1", "token-s1", fmt.Sprintf("cl%d", i), fixedTime)
		}(i)
	}
	wg.Wait()

	var winners, losers int
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domain.ErrAlreadyClaimed):
			losers++
		default:
			t.Errorf("claimant %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 winner, got %d", winners)
	}
	if losers != claimants-1 {
		t.Errorf("expected %d losers, got %d", claimants-1, losers)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusClaimed || got.ClaimedByClientID == "" {
		t.Errorf("slot not claimed after race: %+v", got)
	}
}
