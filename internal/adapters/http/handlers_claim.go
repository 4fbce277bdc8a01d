package web

import (
	"errors"
	"net/http"
	"time"

	slotStore "rackets/internal/adapters/storage/slot"
	"rackets/internal/application/orchestrators"
	clientDomain "rackets/internal/domain/client"
	slotDomain "rackets/internal/domain/slot"
)

// The claim surface is public: the bearer token in the emailed link is the
// only credential. Wrong tokens read as 404 so the endpoint cannot be used
// to probe slot IDs.

// handleCheckSlot handles GET /api/claim/check?slot=X&token=Y, the lookup
// behind the claim page.
func handleCheckSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.CheckSlotInput{
		SlotID: r.URL.Query().Get("slot"),
		Token:  r.URL.Query().Get("token"),
	}
	if input.SlotID == "" || input.Token == "" {
		errorJSON(w, http.StatusBadRequest, "slot and token are required")
		return
	}

	deps := orchestrators.CheckSlotDeps{
		SlotStore:   stores.SlotStore,
		ClientStore: stores.ClientStore,
		CoachStore:  stores.CoachStore,
	}
	result, err := orchestrators.ExecuteCheckSlot(r.Context(), input, deps)
	if errors.Is(err, slotStore.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "slot not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	e := result.Slot
	writeJSON(w, http.StatusOK, map[string]any{
		"slotId":        e.ID,
		"status":        e.Status,
		"start":         e.StartTime,
		"end":           e.EndTime,
		"note":          e.Note,
		"location":      e.Location,
		"coachName":     result.CoachName,
		"claimedByName": result.ClaimedByName,
	})
}

// handleClaimSlot handles POST /api/claim, the atomic claim commit.
func handleClaimSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.ClaimSlotInput{}
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.SlotID = r.FormValue("SlotID")
		input.Token = r.FormValue("Token")
		input.Email = r.FormValue("Email")
	} else {
		var req struct {
			SlotID string `json:"slotId"`
			Token  string `json:"token"`
			Email  string `json:"email"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		input.SlotID = req.SlotID
		input.Token = req.Token
		input.Email = req.Email
	}

	deps := orchestrators.ClaimSlotDeps{
		SlotStore:   stores.SlotStore,
		ClientStore: stores.ClientStore,
		CoachStore:  stores.CoachStore,
		EmailSender: emailSender,
		BaseURL:     baseURL,
		GenerateID:  generateID,
		Now:         timeNow,
	}
	result, err := orchestrators.ExecuteClaimSlot(r.Context(), input, deps)
	switch {
	case err == nil:
	case errors.Is(err, clientDomain.ErrInvalidEmail):
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, slotStore.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "slot not found")
		return
	case errors.Is(err, slotDomain.ErrAlreadyClaimed):
		var conflict *orchestrators.ClaimConflictError
		body := map[string]string{"error": err.Error()}
		if errors.As(err, &conflict) && conflict.ClaimedByName != "" {
			body["claimedBy"] = conflict.ClaimedByName
		}
		writeJSON(w, http.StatusConflict, body)
		return
	case errors.Is(err, slotDomain.ErrCancelled):
		errorJSON(w, http.StatusGone, err.Error())
		return
	default:
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"clientName": result.ClientName,
		"coachName":  result.CoachName,
		"start":      result.Start.Format(time.RFC3339),
		"end":        result.End.Format(time.RFC3339),
		"note":       result.Note,
		"location":   result.Location,
	})
}
