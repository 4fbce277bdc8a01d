package web

import (
	"errors"
	"net/http"
	"strconv"

	"rackets/internal/application/orchestrators"
	"rackets/internal/application/projections"
	blastDomain "rackets/internal/domain/blast"
)

// handleBlasts handles POST (send) and GET (history) for /api/blasts.
func handleBlasts(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "POST" {
		var req struct {
			Scope string `json:"scope"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if req.Scope == "" {
			req.Scope = blastDomain.ScopeOwn
		}

		input := orchestrators.SendBlastInput{CallerID: session.CoachID, Scope: req.Scope}
		deps := orchestrators.SendBlastDeps{
			SlotStore:   stores.SlotStore,
			ClientStore: stores.ClientStore,
			CoachStore:  stores.CoachStore,
			ClubStore:   stores.ClubStore,
			BlastStore:  stores.BlastStore,
			EmailSender: emailSender,
			BaseURL:     baseURL,
			GenerateID:  generateID,
			Now:         timeNow,
		}
		result, err := orchestrators.ExecuteSendBlast(r.Context(), input, deps)
		switch {
		case err == nil:
		case errors.Is(err, blastDomain.ErrInvalidScope):
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, orchestrators.ErrForbidden):
			errorJSON(w, http.StatusForbidden, "club blasts are for directors")
			return
		case errors.Is(err, blastDomain.ErrNoSlots), errors.Is(err, blastDomain.ErrNoRecipients):
			// Nothing to send is not a failure: a retry after a completed
			// blast lands here.
			w.WriteHeader(http.StatusNoContent)
			return
		default:
			internalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"slotsIncluded": result.SlotsIncluded,
			"emailsSent":    result.EmailsSent,
			"emailsFailed":  result.EmailsFailed,
			"sampleErrors":  result.SampleErrors,
		})
		return
	}

	if r.Method == "GET" {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				errorJSON(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		query := projections.GetBlastHistoryQuery{
			CallerID:  session.CoachID,
			ClubScope: r.URL.Query().Get("scope") == "club",
			Limit:     limit,
		}
		deps := projections.GetBlastHistoryDeps{
			BlastStore: stores.BlastStore,
			CoachStore: stores.CoachStore,
		}
		result, err := projections.QueryGetBlastHistory(r.Context(), query, deps)
		if errors.Is(err, projections.ErrForbidden) {
			errorJSON(w, http.StatusForbidden, "club scope is for directors")
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}

		out := make([]map[string]any, 0, len(result.Blasts))
		for _, entry := range result.Blasts {
			out = append(out, map[string]any{
				"id":            entry.Record.ID,
				"senderName":    entry.SenderName,
				"blastType":     entry.Record.BlastType,
				"slotsIncluded": entry.Record.SlotsIncluded,
				"emailsSent":    entry.Record.EmailsSent,
				"emailsFailed":  entry.Record.EmailsFailed,
				"createdAt":     entry.Record.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"blasts": out})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
