package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	clientDomain "rackets/internal/domain/client"
)

// ClientStoreForOrchestrator defines the store interface needed by client orchestrators.
type ClientStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (clientDomain.Client, error)
	GetByEmail(ctx context.Context, email string) (clientDomain.Client, error)
	Save(ctx context.Context, e clientDomain.Client) error
	AddCoachLink(ctx context.Context, clientID, coachID string, at time.Time) error
	RemoveCoachLink(ctx context.Context, clientID, coachID string) error
	ListByCoach(ctx context.Context, coachID string) ([]clientDomain.Client, error)
}

// --- Add Client ---

// AddClientInput carries input for adding one client to a coach's list.
type AddClientInput struct {
	CoachID string
	Name    string
	Email   string
	Phone   string
	Notes   string
}

// AddClientDeps holds dependencies for AddClient.
type AddClientDeps struct {
	ClientStore ClientStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddClient finds or creates a client by email and links them to the
// coach. Client rows are shared across coaches; adding an email another
// coach already works with reuses their row rather than duplicating it.
// PRE: CoachID is non-empty
// POST: Client exists and is linked to CoachID, or ErrAlreadyLinked
func ExecuteAddClient(ctx context.Context, input AddClientInput, deps AddClientDeps) (clientDomain.Client, error) {
	addr := clientDomain.NormalizeEmail(input.Email)
	if !clientDomain.ValidEmail(addr) {
		return clientDomain.Client{}, clientDomain.ErrInvalidEmail
	}

	now := deps.Now()
	cl, err := deps.ClientStore.GetByEmail(ctx, addr)
	if err != nil {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = clientDomain.NameFromEmail(addr)
		}
		cl = clientDomain.Client{
			ID:        deps.GenerateID(),
			Name:      name,
			Email:     addr,
			Phone:     input.Phone,
			Notes:     input.Notes,
			CreatedAt: now,
		}
		if err := cl.Validate(); err != nil {
			return clientDomain.Client{}, err
		}
		if err := deps.ClientStore.Save(ctx, cl); err != nil {
			return clientDomain.Client{}, err
		}
	} else {
		existing, err := deps.ClientStore.ListByCoach(ctx, input.CoachID)
		if err != nil {
			return clientDomain.Client{}, err
		}
		for _, c := range existing {
			if c.ID == cl.ID {
				return clientDomain.Client{}, clientDomain.ErrAlreadyLinked
			}
		}
	}

	if err := deps.ClientStore.AddCoachLink(ctx, cl.ID, input.CoachID, now); err != nil {
		return clientDomain.Client{}, err
	}
	slog.Info("client_added", "client_id", cl.ID, "coach_id", input.CoachID)
	return cl, nil
}

// --- Import Clients ---

// ImportClientsInput carries a pasted batch of emails, one per line. Lines
// may optionally be "Name <email>" or "name, email".
type ImportClientsInput struct {
	CoachID string
	Raw     string
}

// ImportClientsDeps holds dependencies for ImportClients.
type ImportClientsDeps struct {
	ClientStore ClientStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ImportClientsResult summarizes a bulk import.
type ImportClientsResult struct {
	Added   int
	Skipped int // blank lines, invalid emails, already-linked clients
}

// ExecuteImportClients adds every parseable line as a client. Invalid lines
// are skipped, not fatal, so one typo does not abort a long paste.
// PRE: CoachID is non-empty
// POST: Every valid new email is linked to CoachID
func ExecuteImportClients(ctx context.Context, input ImportClientsInput, deps ImportClientsDeps) (ImportClientsResult, error) {
	var result ImportClientsResult
	for _, line := range strings.Split(input.Raw, "\n") {
		name, addr := parseImportLine(line)
		if addr == "" {
			if strings.TrimSpace(line) != "" {
				result.Skipped++
			}
			continue
		}
		_, err := ExecuteAddClient(ctx, AddClientInput{
			CoachID: input.CoachID,
			Name:    name,
			Email:   addr,
		}, AddClientDeps(deps))
		if err != nil {
			result.Skipped++
			continue
		}
		result.Added++
	}
	slog.Info("clients_imported", "coach_id", input.CoachID, "added", result.Added, "skipped", result.Skipped)
	return result, nil
}

// parseImportLine extracts an optional name and an email from one pasted
// line. Returns an empty email when the line has no usable address.
func parseImportLine(line string) (name, email string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}

	// "Name <email>" form
	if open := strings.IndexByte(line, '<'); open >= 0 {
		if end := strings.IndexByte(line, '>'); end > open {
			name = strings.TrimSpace(line[:open])
			email = clientDomain.NormalizeEmail(line[open+1 : end])
			if !clientDomain.ValidEmail(email) {
				return "", ""
			}
			return name, email
		}
	}

	// "name, email" form
	if comma := strings.IndexByte(line, ','); comma >= 0 {
		name = strings.TrimSpace(line[:comma])
		email = clientDomain.NormalizeEmail(line[comma+1:])
		if !clientDomain.ValidEmail(email) {
			return "", ""
		}
		return name, email
	}

	email = clientDomain.NormalizeEmail(line)
	if !clientDomain.ValidEmail(email) {
		return "", ""
	}
	return "", email
}

// --- Update Client ---

// UpdateClientInput carries partial updates to a client's contact details.
// Nil fields are left unchanged. Email is immutable; client rows are shared
// across coaches and rekeying one would silently move another coach's
// contact.
type UpdateClientInput struct {
	CoachID  string
	ClientID string
	Name     *string
	Phone    *string
	Notes    *string
}

// UpdateClientDeps holds dependencies for UpdateClient.
type UpdateClientDeps struct {
	ClientStore ClientStoreForOrchestrator
}

// ExecuteUpdateClient updates a client the caller is linked to.
// PRE: CoachID and ClientID are non-empty
// POST: Changed fields are persisted, or ErrNotLinked for strangers
func ExecuteUpdateClient(ctx context.Context, input UpdateClientInput, deps UpdateClientDeps) (clientDomain.Client, error) {
	linked, err := deps.ClientStore.ListByCoach(ctx, input.CoachID)
	if err != nil {
		return clientDomain.Client{}, err
	}
	var found bool
	for _, c := range linked {
		if c.ID == input.ClientID {
			found = true
			break
		}
	}
	if !found {
		return clientDomain.Client{}, clientDomain.ErrNotLinked
	}

	cl, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return clientDomain.Client{}, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return clientDomain.Client{}, clientDomain.ErrEmptyName
		}
		cl.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		cl.Phone = *input.Phone
	}
	if input.Notes != nil {
		cl.Notes = *input.Notes
	}
	if err := deps.ClientStore.Save(ctx, cl); err != nil {
		return clientDomain.Client{}, err
	}
	slog.Info("client_updated", "client_id", cl.ID, "coach_id", input.CoachID)
	return cl, nil
}

// --- Unlink Client ---

// UnlinkClientInput carries input for removing a client from a coach's list.
type UnlinkClientInput struct {
	CoachID  string
	ClientID string
}

// UnlinkClientDeps holds dependencies for UnlinkClient.
type UnlinkClientDeps struct {
	ClientStore ClientStoreForOrchestrator
}

// ExecuteUnlinkClient removes the coach-client link only. The client row
// survives so other coaches sharing it are unaffected.
// PRE: CoachID and ClientID are non-empty
// POST: No link between CoachID and ClientID remains
func ExecuteUnlinkClient(ctx context.Context, input UnlinkClientInput, deps UnlinkClientDeps) error {
	if err := deps.ClientStore.RemoveCoachLink(ctx, input.ClientID, input.CoachID); err != nil {
		return err
	}
	slog.Info("client_unlinked", "client_id", input.ClientID, "coach_id", input.CoachID)
	return nil
}
