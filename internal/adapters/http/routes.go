package web

import "net/http"

// registerRoutes attaches every application route to the mux. The claim
// endpoints are public; everything else under /api requires a session.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("/api/register", handleRegister)
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/session", handleSession)

	// Slots
	mux.HandleFunc("/api/slots", handleSlots)
	mux.HandleFunc("/api/slots/update", handleUpdateSlot)
	mux.HandleFunc("/api/slots/delete", handleDeleteSlot)
	mux.HandleFunc("/api/dashboard", handleDashboard)

	// Public claim surface (bearer token in the link, no session)
	mux.HandleFunc("/api/claim/check", handleCheckSlot)
	mux.HandleFunc("/api/claim", handleClaimSlot)

	// Blasts
	mux.HandleFunc("/api/blasts", handleBlasts)

	// Clients
	mux.HandleFunc("/api/clients", handleClients)
	mux.HandleFunc("/api/clients/import", handleImportClients)
	mux.HandleFunc("/api/clients/update", handleUpdateClient)
	mux.HandleFunc("/api/clients/unlink", handleUnlinkClient)

	// Club
	mux.HandleFunc("/api/club", handleClub)
	mux.HandleFunc("/api/club/invites", handleClubInvites)

	// Ops
	mux.HandleFunc("/api/perf", handlePerfStats)
}
