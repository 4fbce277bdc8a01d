package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rackets/internal/adapters/http/middleware"
	"rackets/internal/application/orchestrators"
	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// generateToken creates an unguessable bearer token for claim links.
func generateToken() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the
// client, so internals never leak into responses.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorJSON writes a JSON error body with the given status.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireSession extracts the session or writes a 401. The second return is
// false when the caller is not logged in.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "login required")
		return middleware.Session{}, false
	}
	return session, true
}

// isForm reports whether the request is a classic form submission.
func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// handleRegister handles POST /api/register.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.RegisterCoachInput{}
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.Name = r.FormValue("Name")
		input.Email = r.FormValue("Email")
		input.Password = r.FormValue("Password")
		input.Timezone = r.FormValue("Timezone")
		input.InviteCode = r.FormValue("InviteCode")
		input.ClubName = r.FormValue("ClubName")
	} else {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	deps := orchestrators.RegisterCoachDeps{
		CoachStore: stores.CoachStore,
		ClubStore:  stores.ClubStore,
		GenerateID: generateID,
		Now:        timeNow,
	}
	co, err := orchestrators.ExecuteRegisterCoach(r.Context(), input, deps)
	switch {
	case err == nil:
	case errors.Is(err, orchestrators.ErrEmailTaken):
		errorJSON(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, orchestrators.ErrWeakPassword),
		errors.Is(err, clientDomain.ErrInvalidEmail),
		errors.Is(err, clubDomain.ErrInvalidInvite),
		errors.Is(err, clubDomain.ErrInviteNotOpen),
		errors.Is(err, clubDomain.ErrInviteExpired):
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	default:
		internalError(w, err)
		return
	}

	token, err := sessions.Create(middleware.Session{
		CoachID: co.ID, Email: co.Email, Name: co.Name, Role: co.Role, ClubID: co.ClubID,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]string{
		"coachId": co.ID,
		"name":    co.Name,
		"role":    co.Role,
		"clubId":  co.ClubID,
	})
}

// handleLogin handles POST /api/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.LoginCoachInput{}
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.Email = r.FormValue("Email")
		input.Password = r.FormValue("Password")
	} else {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	co, err := orchestrators.ExecuteLoginCoach(r.Context(), input,
		orchestrators.LoginCoachDeps{CoachStore: stores.CoachStore})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		errorJSON(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	token, err := sessions.Create(middleware.Session{
		CoachID: co.ID, Email: co.Email, Name: co.Name, Role: co.Role, ClubID: co.ClubID,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"coachId": co.ID,
		"name":    co.Name,
		"role":    co.Role,
		"clubId":  co.ClubID,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionTokenFromRequest(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleSession handles GET /api/session, the logged-in identity probe.
func handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"coachId": session.CoachID,
		"email":   session.Email,
		"name":    session.Name,
		"role":    session.Role,
		"clubId":  session.ClubID,
	})
}

// handlePerfStats handles GET /api/perf, a request timing snapshot.
func handlePerfStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}
	if perfCollector == nil {
		errorJSON(w, http.StatusNotFound, "timing collection is disabled")
		return
	}
	snap := perfCollector.Snapshot(timeNow().Add(-time.Hour), 10)
	writeJSON(w, http.StatusOK, snap)
}
