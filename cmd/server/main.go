package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "rackets/internal/adapters/email"
	web "rackets/internal/adapters/http"
	"rackets/internal/adapters/http/perf"
	"rackets/internal/adapters/storage"
	blastStorePkg "rackets/internal/adapters/storage/blast"
	clientStorePkg "rackets/internal/adapters/storage/client"
	clubStorePkg "rackets/internal/adapters/storage/club"
	coachStorePkg "rackets/internal/adapters/storage/coach"
	slotStorePkg "rackets/internal/adapters/storage/slot"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, foreign keys, and a busy timeout so claim contention waits
	// instead of failing with SQLITE_BUSY.
	dbPath := envOrDefault("RACKETS_DB", "rackets.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: slow-query logging on the DB, a ring
	// buffer collector for request timings.
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db)

	stores := &web.Stores{
		CoachStore:  coachStorePkg.NewSQLiteStore(timedDB),
		ClubStore:   clubStorePkg.NewSQLiteStore(timedDB),
		ClientStore: clientStorePkg.NewSQLiteStore(timedDB),
		SlotStore:   slotStorePkg.NewSQLiteStore(timedDB),
		BlastStore:  blastStorePkg.NewSQLiteStore(timedDB),
	}

	// Configure email sender
	resendKey := os.Getenv("RACKETS_RESEND_API_KEY")
	emailFrom := envOrDefault("RACKETS_EMAIL_FROM", "Rackets <noreply@rackets.example.com>")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom))
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if os.Getenv("RACKETS_ENV") == "production" {
			log.Println("WARNING: RACKETS_RESEND_API_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set RACKETS_RESEND_API_KEY for real delivery)")
		}
	}

	// Claim links in blast emails point at this origin.
	web.SetBaseURL(envOrDefault("RACKETS_BASE_URL", "http://localhost:8080"))

	mux := web.NewMux(stores, collector)

	addr := envOrDefault("RACKETS_ADDR", ":8080")
	log.Printf("Rackets %s starting on %s (env=%s)", version, addr, envOrDefault("RACKETS_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
