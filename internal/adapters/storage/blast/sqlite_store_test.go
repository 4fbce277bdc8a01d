package blast

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"rackets/internal/adapters/storage"
	domain "rackets/internal/domain/blast"
)

var fixedTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

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

func seedClub(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO club (id, name, owner_user_id, created_at) VALUES (?, ?, ?, ?)",
		id, "Club "+id, "owner", fixedTime.Format(dateLayout))
	if err != nil {
		t.Fatalf("failed to seed club: %v", err)
	}
}

func TestAppendAndListByCoach(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := domain.Record{
			ID:            string(rune('a' + i)),
			SentByCoachID: "c1",
			BlastType:     domain.TypeCoachBlast,
			SlotsIncluded: 2,
			EmailsSent:    5,
			EmailsFailed:  i,
			CreatedAt:     fixedTime.Add(time.Duration(i) * time.Hour),
		}
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.ListByCoach(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("ListByCoach failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].ID != "c" {
		t.Errorf("expected newest record first, got %s", got[0].ID)
	}
	if got[0].EmailsFailed != 2 {
		t.Errorf("emails_failed = %d, want 2", got[0].EmailsFailed)
	}

	limited, err := store.ListByCoach(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("ListByCoach with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records with limit, got %d", len(limited))
	}
}

func TestListByClub(t *testing.T) {
	db := openTestDB(t)
	seedCoach(t, db, "c1")
	seedClub(t, db, "club1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	clubRec := domain.Record{
		ID: "r1", SentByCoachID: "c1", ClubID: "club1",
		BlastType: domain.TypeClubBlast, SlotsIncluded: 4, EmailsSent: 10,
		CreatedAt: fixedTime,
	}
	coachRec := domain.Record{
		ID: "r2", SentByCoachID: "c1",
		BlastType: domain.TypeCoachBlast, SlotsIncluded: 1, EmailsSent: 3,
		CreatedAt: fixedTime,
	}
	for _, e := range []domain.Record{clubRec, coachRec} {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.ListByClub(ctx, "club1", 0)
	if err != nil {
		t.Fatalf("ListByClub failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("expected only the club record, got %+v", got)
	}
	if got[0].ClubID != "club1" || got[0].BlastType != domain.TypeClubBlast {
		t.Errorf("unexpected record: %+v", got[0])
	}
}
