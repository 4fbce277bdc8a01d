// Package projections contains the application's read-side queries.
package projections

import (
	"context"

	slotStore "rackets/internal/adapters/storage/slot"
	domainBlast "rackets/internal/domain/blast"
	domainClient "rackets/internal/domain/client"
	domainCoach "rackets/internal/domain/coach"
	domainSlot "rackets/internal/domain/slot"
)

// SlotStore interface for slot queries.
type SlotStore interface {
	List(ctx context.Context, filter slotStore.ListFilter) ([]domainSlot.Slot, error)
}

// CoachStore interface for coach lookups.
type CoachStore interface {
	GetByID(ctx context.Context, id string) (domainCoach.Coach, error)
	ListByClub(ctx context.Context, clubID string) ([]domainCoach.Coach, error)
}

// ClientStore interface for client queries.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (domainClient.Client, error)
	ListByCoach(ctx context.Context, coachID string) ([]domainClient.Client, error)
	ListRecipientsForClub(ctx context.Context, clubID string) ([]domainClient.Client, error)
}

// BlastStore interface for blast history queries.
type BlastStore interface {
	ListByCoach(ctx context.Context, coachID string, limit int) ([]domainBlast.Record, error)
	ListByClub(ctx context.Context, clubID string, limit int) ([]domainBlast.Record, error)
}
