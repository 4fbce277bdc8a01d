package web

import (
	"errors"
	"net/http"

	clubStore "rackets/internal/adapters/storage/club"
	"rackets/internal/application/orchestrators"
	"rackets/internal/domain/access"
	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
)

// handleClub handles GET /api/club: the caller's club with its coach roster.
func handleClub(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if session.ClubID == "" {
		errorJSON(w, http.StatusNotFound, "you are not in a club")
		return
	}

	club, err := stores.ClubStore.GetByID(r.Context(), session.ClubID)
	if errors.Is(err, clubStore.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "club not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	coaches, err := stores.CoachStore.ListByClub(r.Context(), club.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	roster := make([]map[string]string, 0, len(coaches))
	for _, co := range coaches {
		roster = append(roster, map[string]string{
			"id":   co.ID,
			"name": co.Name,
			"role": co.Role,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          club.ID,
		"name":        club.Name,
		"slug":        club.Slug,
		"description": club.Description,
		"coaches":     roster,
	})
}

// handleClubInvites handles GET (list) and POST (issue) for
// /api/club/invites. Directors only.
func handleClubInvites(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "GET" {
		decision := access.CanManageInvitations(access.Caller{
			CoachID: session.CoachID, Role: session.Role, ClubID: session.ClubID,
		})
		if !decision.Allowed {
			errorJSON(w, http.StatusForbidden, "invitations are for directors")
			return
		}

		invites, err := stores.ClubStore.ListInvites(r.Context(), session.ClubID)
		if err != nil {
			internalError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(invites))
		for _, inv := range invites {
			out = append(out, map[string]any{
				"id":         inv.ID,
				"email":      inv.Email,
				"inviteCode": inv.InviteCode,
				"status":     inv.Status,
				"expiresAt":  inv.ExpiresAt,
				"createdAt":  inv.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"invites": out})
		return
	}

	if r.Method == "POST" {
		var req struct {
			Email string `json:"email"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.InviteCoachInput{CallerID: session.CoachID, Email: req.Email}
		deps := orchestrators.InviteCoachDeps{
			CoachStore:    stores.CoachStore,
			CoachLookup:   stores.CoachStore,
			ClubStore:     stores.ClubStore,
			EmailSender:   emailSender,
			BaseURL:       baseURL,
			GenerateID:    generateID,
			GenerateToken: generateToken,
			Now:           timeNow,
		}
		inv, err := orchestrators.ExecuteInviteCoach(r.Context(), input, deps)
		switch {
		case err == nil:
		case errors.Is(err, orchestrators.ErrForbidden):
			errorJSON(w, http.StatusForbidden, "invitations are for directors")
			return
		case errors.Is(err, clientDomain.ErrInvalidEmail):
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, clubDomain.ErrInvitePending), errors.Is(err, clubDomain.ErrAlreadyInClub):
			errorJSON(w, http.StatusConflict, err.Error())
			return
		default:
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         inv.ID,
			"email":      inv.Email,
			"inviteCode": inv.InviteCode,
			"status":     inv.Status,
			"expiresAt":  inv.ExpiresAt,
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
