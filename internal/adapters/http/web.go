package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"rackets/internal/adapters/email"
	"rackets/internal/adapters/http/middleware"
	"rackets/internal/adapters/http/perf"
	blastStore "rackets/internal/adapters/storage/blast"
	clientStore "rackets/internal/adapters/storage/client"
	clubStore "rackets/internal/adapters/storage/club"
	coachStore "rackets/internal/adapters/storage/coach"
	slotStore "rackets/internal/adapters/storage/slot"
)

// Stores holds all storage dependencies.
type Stores struct {
	SlotStore   slotStore.Store
	ClientStore clientStore.Store
	CoachStore  coachStore.Store
	ClubStore   clubStore.Store
	BlastStore  blastStore.Store
}

// loadCSRFKey reads the CSRF secret from RACKETS_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("RACKETS_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("RACKETS_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("RACKETS_ENV") == "production" {
		log.Fatal("RACKETS_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set RACKETS_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// baseURL is the externally reachable origin used in claim and invite links.
var baseURL = "http://localhost:8080"

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// SetBaseURL sets the origin prefixed to claim and invite links.
func SetBaseURL(u string) {
	if u != "" {
		baseURL = u
	}
}

// NewMux wires HTTP handlers for the app. The surface is a JSON API;
// nothing is mounted at "/".
func NewMux(s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("RACKETS_ENV") == "production"

	mux := http.NewServeMux()
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
