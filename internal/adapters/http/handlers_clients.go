package web

import (
	"errors"
	"net/http"

	"rackets/internal/application/orchestrators"
	clientDomain "rackets/internal/domain/client"
)

// handleClients handles GET (list) and POST (add) for /api/clients.
func handleClients(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "GET" {
		clients, err := stores.ClientStore.ListByCoach(r.Context(), session.CoachID)
		if err != nil {
			internalError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(clients))
		for _, cl := range clients {
			out = append(out, map[string]any{
				"id":    cl.ID,
				"name":  cl.Name,
				"email": cl.Email,
				"phone": cl.Phone,
				"notes": cl.Notes,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"clients": out})
		return
	}

	if r.Method == "POST" {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
			Notes string `json:"notes"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.AddClientInput{
			CoachID: session.CoachID,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Notes:   req.Notes,
		}
		deps := orchestrators.AddClientDeps{
			ClientStore: stores.ClientStore,
			GenerateID:  generateID,
			Now:         timeNow,
		}
		cl, err := orchestrators.ExecuteAddClient(r.Context(), input, deps)
		switch {
		case err == nil:
		case errors.Is(err, clientDomain.ErrInvalidEmail):
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, clientDomain.ErrAlreadyLinked):
			errorJSON(w, http.StatusConflict, err.Error())
			return
		default:
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":    cl.ID,
			"name":  cl.Name,
			"email": cl.Email,
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleImportClients handles POST /api/clients/import, a pasted batch of
// one email per line.
func handleImportClients(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Raw string `json:"raw"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.ImportClientsInput{CoachID: session.CoachID, Raw: req.Raw}
	deps := orchestrators.ImportClientsDeps{
		ClientStore: stores.ClientStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
	result, err := orchestrators.ExecuteImportClients(r.Context(), input, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"added":   result.Added,
		"skipped": result.Skipped,
	})
}

// handleUpdateClient handles POST /api/clients/update. Nil fields are left
// unchanged; email cannot be changed because client rows are shared.
func handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ClientID string  `json:"clientId"`
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Notes    *string `json:"notes"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		errorJSON(w, http.StatusBadRequest, "clientId is required")
		return
	}

	input := orchestrators.UpdateClientInput{
		CoachID:  session.CoachID,
		ClientID: req.ClientID,
		Name:     req.Name,
		Phone:    req.Phone,
		Notes:    req.Notes,
	}
	cl, err := orchestrators.ExecuteUpdateClient(r.Context(), input,
		orchestrators.UpdateClientDeps{ClientStore: stores.ClientStore})
	switch {
	case err == nil:
	case errors.Is(err, clientDomain.ErrNotLinked):
		errorJSON(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, clientDomain.ErrEmptyName):
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	default:
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    cl.ID,
		"name":  cl.Name,
		"email": cl.Email,
	})
}

// handleUnlinkClient handles POST /api/clients/unlink. Only the link row is
// removed; the client survives for other coaches.
func handleUnlinkClient(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ClientID string `json:"clientId"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		errorJSON(w, http.StatusBadRequest, "clientId is required")
		return
	}

	input := orchestrators.UnlinkClientInput{CoachID: session.CoachID, ClientID: req.ClientID}
	if err := orchestrators.ExecuteUnlinkClient(r.Context(), input,
		orchestrators.UnlinkClientDeps{ClientStore: stores.ClientStore}); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
