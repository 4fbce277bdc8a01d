package web

import (
	"errors"
	"net/http"
	"time"

	slotStore "rackets/internal/adapters/storage/slot"
	"rackets/internal/application/orchestrators"
	"rackets/internal/application/projections"
	slotDomain "rackets/internal/domain/slot"
)

// slotJSON is the wire shape of a slot on the coach surface. The claim token
// is included so the dashboard can show shareable claim links; this surface
// is session-gated, never public.
type slotJSON struct {
	ID                string    `json:"id"`
	CoachID           string    `json:"coachId"`
	CoachName         string    `json:"coachName,omitempty"`
	ClubID            string    `json:"clubId,omitempty"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Status            string    `json:"status"`
	Note              string    `json:"note,omitempty"`
	Location          string    `json:"location,omitempty"`
	ClaimToken        string    `json:"claimToken"`
	ClaimedByName     string    `json:"claimedByName,omitempty"`
	NotificationsSent bool      `json:"notificationsSent"`
}

func slotToJSON(e slotDomain.Slot, coachName, claimedByName string) slotJSON {
	return slotJSON{
		ID:                e.ID,
		CoachID:           e.CoachID,
		CoachName:         coachName,
		ClubID:            e.ClubID,
		Start:             e.StartTime,
		End:               e.EndTime,
		Status:            e.Status,
		Note:              e.Note,
		Location:          e.Location,
		ClaimToken:        e.ClaimToken,
		ClaimedByName:     claimedByName,
		NotificationsSent: e.NotificationsSent,
	}
}

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

// handleSlots handles GET (list) and POST (create) for /api/slots.
func handleSlots(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "GET" {
		from, err := parseTimeParam(r.URL.Query().Get("from"))
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		to, err := parseTimeParam(r.URL.Query().Get("to"))
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}

		query := projections.GetSlotListQuery{
			CallerID:  session.CoachID,
			ClubScope: r.URL.Query().Get("scope") == "club",
			From:      from,
			To:        to,
		}
		deps := projections.GetSlotListDeps{
			SlotStore:   stores.SlotStore,
			CoachStore:  stores.CoachStore,
			ClientStore: stores.ClientStore,
		}
		result, err := projections.QueryGetSlotList(r.Context(), query, deps)
		if errors.Is(err, projections.ErrForbidden) {
			errorJSON(w, http.StatusForbidden, "club scope is for directors")
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}

		out := make([]slotJSON, 0, len(result.Slots))
		for _, entry := range result.Slots {
			out = append(out, slotToJSON(entry.Slot, entry.CoachName, entry.ClaimedByName))
		}
		writeJSON(w, http.StatusOK, map[string]any{"slots": out})
		return
	}

	if r.Method == "POST" {
		var req struct {
			Start    time.Time `json:"start"`
			End      time.Time `json:"end"`
			Note     string    `json:"note"`
			Location string    `json:"location"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.CreateSlotInput{
			CoachID:  session.CoachID,
			ClubID:   session.ClubID,
			Start:    req.Start,
			End:      req.End,
			Note:     req.Note,
			Location: req.Location,
		}
		deps := orchestrators.CreateSlotDeps{
			SlotStore:     stores.SlotStore,
			GenerateID:    generateID,
			GenerateToken: generateToken,
			Now:           timeNow,
		}
		e, err := orchestrators.ExecuteCreateSlot(r.Context(), input, deps)
		switch {
		case err == nil:
		case errors.Is(err, slotDomain.ErrEndBeforeStart),
			errors.Is(err, slotDomain.ErrStartInPast):
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		default:
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, slotToJSON(e, session.Name, ""))
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleUpdateSlot handles POST /api/slots/update. Nil fields in the request
// leave the slot unchanged; status accepts only "cancelled".
func handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SlotID   string  `json:"slotId"`
		Note     *string `json:"note"`
		Location *string `json:"location"`
		Status   string  `json:"status"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.UpdateSlotInput{
		SlotID:   req.SlotID,
		CallerID: session.CoachID,
		Note:     req.Note,
		Location: req.Location,
		Status:   req.Status,
	}
	deps := orchestrators.UpdateSlotDeps{SlotStore: stores.SlotStore, Now: timeNow}
	e, err := orchestrators.ExecuteUpdateSlot(r.Context(), input, deps)
	switch {
	case err == nil:
	case errors.Is(err, slotStore.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "slot not found")
		return
	case errors.Is(err, slotDomain.ErrAlreadyClaimed), errors.Is(err, slotDomain.ErrCancelled):
		errorJSON(w, http.StatusConflict, err.Error())
		return
	default:
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slotToJSON(e, session.Name, ""))
}

// handleDeleteSlot handles POST /api/slots/delete. Only open slots can be
// deleted; claimed and cancelled slots stay on record.
func handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SlotID string `json:"slotId"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeleteSlotInput{SlotID: req.SlotID, CallerID: session.CoachID}
	err := orchestrators.ExecuteDeleteSlot(r.Context(), input,
		orchestrators.DeleteSlotDeps{SlotStore: stores.SlotStore})
	switch {
	case err == nil:
	case errors.Is(err, slotStore.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "slot not found")
		return
	case errors.Is(err, slotDomain.ErrNotOpen):
		errorJSON(w, http.StatusConflict, err.Error())
		return
	default:
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDashboard handles GET /api/dashboard.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := projections.GetDashboardQuery{
		CallerID:  session.CoachID,
		ClubScope: r.URL.Query().Get("scope") == "club",
		Now:       timeNow(),
	}
	deps := projections.GetDashboardDeps{
		SlotStore:   stores.SlotStore,
		CoachStore:  stores.CoachStore,
		ClientStore: stores.ClientStore,
		BlastStore:  stores.BlastStore,
	}
	result, err := projections.QueryGetDashboard(r.Context(), query, deps)
	if errors.Is(err, projections.ErrForbidden) {
		errorJSON(w, http.StatusForbidden, "club scope is for directors")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	out := map[string]any{
		"openSlots":      result.OpenSlots,
		"claimedSlots":   result.ClaimedSlots,
		"cancelledSlots": result.CancelledSlots,
		"upcomingSlots":  result.UpcomingSlots,
		"awaitingBlast":  result.AwaitingBlast,
		"clientCount":    result.ClientCount,
		"recentBlasts":   result.RecentBlasts,
	}
	if result.HasNextSlot {
		out["nextSlot"] = slotToJSON(result.NextSlot, session.Name, "")
	}
	writeJSON(w, http.StatusOK, out)
}
