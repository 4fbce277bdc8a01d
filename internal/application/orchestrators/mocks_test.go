package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"rackets/internal/adapters/email"
	clubStore "rackets/internal/adapters/storage/club"
	slotStore "rackets/internal/adapters/storage/slot"
	blastDomain "rackets/internal/domain/blast"
	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
	coachDomain "rackets/internal/domain/coach"
	slotDomain "rackets/internal/domain/slot"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// seqID returns a deterministic ID generator: id-1, id-2, ...
func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// --- slot store mock ---

// mockSlotStore implements the slot store interfaces orchestrators consume.
type mockSlotStore struct {
	slots map[string]slotDomain.Slot
}

func newMockSlotStore() *mockSlotStore {
	return &mockSlotStore{slots: make(map[string]slotDomain.Slot)}
}

func (m *mockSlotStore) GetByOwner(_ context.Context, id, coachID string) (slotDomain.Slot, error) {
	e, ok := m.slots[id]
	if !ok || e.CoachID != coachID {
		return slotDomain.Slot{}, slotStore.ErrNotFound
	}
	return e, nil
}

func (m *mockSlotStore) GetByToken(_ context.Context, id, token string) (slotDomain.Slot, error) {
	e, ok := m.slots[id]
	if !ok || e.ClaimToken != token {
		return slotDomain.Slot{}, slotStore.ErrNotFound
	}
	return e, nil
}

func (m *mockSlotStore) Save(_ context.Context, e slotDomain.Slot) error {
	m.slots[e.ID] = e
	return nil
}

func (m *mockSlotStore) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

func (m *mockSlotStore) Claim(_ context.Context, id, token, clientID string, at time.Time) error {
	e, ok := m.slots[id]
	if !ok || e.ClaimToken != token {
		return slotStore.ErrNotFound
	}
	switch e.Status {
	case slotDomain.StatusClaimed:
		return slotDomain.ErrAlreadyClaimed
	case slotDomain.StatusCancelled:
		return slotDomain.ErrCancelled
	}
	e.Status = slotDomain.StatusClaimed
	e.ClaimedByClientID = clientID
	e.ClaimedAt = at
	m.slots[id] = e
	return nil
}

func (m *mockSlotStore) ListBlastCandidates(_ context.Context, filter slotStore.BlastFilter) ([]slotDomain.Slot, error) {
	var out []slotDomain.Slot
	for _, e := range m.slots {
		if filter.CoachID != "" && e.CoachID != filter.CoachID {
			continue
		}
		if filter.ClubID != "" && e.ClubID != filter.ClubID {
			continue
		}
		if e.NeedsNotification(filter.Now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *mockSlotStore) MarkNotified(_ context.Context, ids []string, via string, at time.Time) error {
	for _, id := range ids {
		e := m.slots[id]
		e.MarkNotified(via, at)
		m.slots[id] = e
	}
	return nil
}

// --- client store mock ---

type mockClientStore struct {
	clients    map[string]clientDomain.Client
	coachLinks map[string]map[string]bool // coachID -> clientID set
	clubLinks  map[string]map[string]bool // clubID -> clientID set
	coachOf    map[string]string          // coachID -> clubID, for club recipient resolution
}

func newMockClientStore() *mockClientStore {
	return &mockClientStore{
		clients:    make(map[string]clientDomain.Client),
		coachLinks: make(map[string]map[string]bool),
		clubLinks:  make(map[string]map[string]bool),
		coachOf:    make(map[string]string),
	}
}

func (m *mockClientStore) GetByID(_ context.Context, id string) (clientDomain.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return clientDomain.Client{}, errors.New("not found")
	}
	return c, nil
}

func (m *mockClientStore) GetByEmail(_ context.Context, email string) (clientDomain.Client, error) {
	for _, c := range m.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return clientDomain.Client{}, errors.New("not found")
}

func (m *mockClientStore) Save(_ context.Context, e clientDomain.Client) error {
	m.clients[e.ID] = e
	return nil
}

func (m *mockClientStore) AddCoachLink(_ context.Context, clientID, coachID string, _ time.Time) error {
	if m.coachLinks[coachID] == nil {
		m.coachLinks[coachID] = make(map[string]bool)
	}
	m.coachLinks[coachID][clientID] = true
	return nil
}

func (m *mockClientStore) AddClubLink(_ context.Context, clientID, clubID string, _ time.Time) error {
	if m.clubLinks[clubID] == nil {
		m.clubLinks[clubID] = make(map[string]bool)
	}
	m.clubLinks[clubID][clientID] = true
	return nil
}

func (m *mockClientStore) RemoveCoachLink(_ context.Context, clientID, coachID string) error {
	delete(m.coachLinks[coachID], clientID)
	return nil
}

func (m *mockClientStore) collect(ids map[string]bool) []clientDomain.Client {
	var out []clientDomain.Client
	for id := range ids {
		out = append(out, m.clients[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (m *mockClientStore) ListByCoach(_ context.Context, coachID string) ([]clientDomain.Client, error) {
	return m.collect(m.coachLinks[coachID]), nil
}

func (m *mockClientStore) ListRecipientsForCoach(_ context.Context, coachID string) ([]clientDomain.Client, error) {
	return m.collect(m.coachLinks[coachID]), nil
}

func (m *mockClientStore) ListRecipientsForClub(_ context.Context, clubID string) ([]clientDomain.Client, error) {
	ids := make(map[string]bool)
	for id := range m.clubLinks[clubID] {
		ids[id] = true
	}
	for coachID, cb := range m.coachOf {
		if cb != clubID {
			continue
		}
		for id := range m.coachLinks[coachID] {
			ids[id] = true
		}
	}
	return m.collect(ids), nil
}

// --- coach store mock ---

type mockCoachStore struct {
	coaches map[string]coachDomain.Coach
}

func newMockCoachStore() *mockCoachStore {
	return &mockCoachStore{coaches: make(map[string]coachDomain.Coach)}
}

func (m *mockCoachStore) GetByID(_ context.Context, id string) (coachDomain.Coach, error) {
	c, ok := m.coaches[id]
	if !ok {
		return coachDomain.Coach{}, errors.New("not found")
	}
	return c, nil
}

func (m *mockCoachStore) GetByEmail(_ context.Context, email string) (coachDomain.Coach, error) {
	for _, c := range m.coaches {
		if c.Email == email {
			return c, nil
		}
	}
	return coachDomain.Coach{}, errors.New("not found")
}

func (m *mockCoachStore) Save(_ context.Context, e coachDomain.Coach) error {
	m.coaches[e.ID] = e
	return nil
}

// --- club store mock ---

type mockClubStore struct {
	clubs   map[string]clubDomain.Club
	invites map[string]clubDomain.Invitation // by ID
}

func newMockClubStore() *mockClubStore {
	return &mockClubStore{
		clubs:   make(map[string]clubDomain.Club),
		invites: make(map[string]clubDomain.Invitation),
	}
}

func (m *mockClubStore) GetByID(_ context.Context, id string) (clubDomain.Club, error) {
	c, ok := m.clubs[id]
	if !ok {
		return clubDomain.Club{}, clubStore.ErrNotFound
	}
	return c, nil
}

func (m *mockClubStore) Save(_ context.Context, e clubDomain.Club) error {
	m.clubs[e.ID] = e
	return nil
}

func (m *mockClubStore) GetInviteByCode(_ context.Context, code string) (clubDomain.Invitation, error) {
	for _, inv := range m.invites {
		if inv.InviteCode == code {
			return inv, nil
		}
	}
	return clubDomain.Invitation{}, clubStore.ErrInviteNotFound
}

func (m *mockClubStore) GetPendingInviteByEmail(_ context.Context, clubID, email string) (clubDomain.Invitation, error) {
	for _, inv := range m.invites {
		if inv.ClubID == clubID && inv.Email == email && inv.Status == clubDomain.InviteStatusPending {
			return inv, nil
		}
	}
	return clubDomain.Invitation{}, clubStore.ErrInviteNotFound
}

func (m *mockClubStore) SaveInvite(_ context.Context, e clubDomain.Invitation) error {
	m.invites[e.ID] = e
	return nil
}

func (m *mockClubStore) ListInvites(_ context.Context, clubID string) ([]clubDomain.Invitation, error) {
	var out []clubDomain.Invitation
	for _, inv := range m.invites {
		if inv.ClubID == clubID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// --- blast log mock ---

type mockBlastStore struct {
	records []blastDomain.Record
}

func (m *mockBlastStore) Append(_ context.Context, e blastDomain.Record) error {
	m.records = append(m.records, e)
	return nil
}

// --- email sender mock ---

// mockSender records sends and fails for addresses listed in failFor.
type mockSender struct {
	sent    []email.SendRequest
	failFor map[string]bool
}

func newMockSender() *mockSender {
	return &mockSender{failFor: make(map[string]bool)}
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if len(req.To) == 1 && m.failFor[req.To[0]] {
		return email.SendResult{}, errors.New("delivery refused")
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1", SentAt: fixedTime}, nil
}
