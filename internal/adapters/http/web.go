package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"ukccu/internal/adapters/email"
	"ukccu/internal/adapters/http/middleware"
	"ukccu/internal/adapters/http/perf"
	"ukccu/internal/adapters/iplookup"
	"ukccu/internal/adapters/notify"
	"ukccu/internal/adapters/storage/kv"
	readStateStore "ukccu/internal/adapters/storage/readstate"
	submissionStore "ukccu/internal/adapters/storage/submission"
	voteLockStore "ukccu/internal/adapters/storage/votelock"
	"ukccu/internal/content"
	"ukccu/internal/domain/votingstatus"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Deps holds everything the handlers need.
type Deps struct {
	Catalog     *content.Catalog
	Markers     kv.Store
	Submissions submissionStore.Store
	ReadState   readStateStore.Store
	VoteLock    voteLockStore.Store
	Status      votingstatus.Source
	Email       email.Sender    // optional
	Notifier    notify.Notifier // optional
	IP          *iplookup.Resolver
	IPSalt      string

	// TrustedProxies may set X-Forwarded-For; empty keys on RemoteAddr.
	TrustedProxies iplookup.Proxies

	// AdminPasswordHash is a bcrypt hash; empty disables /admin.
	AdminPasswordHash []byte
	Collector         *perf.Collector

	StaticDir      string
	CSRFKey        string // 64 hex characters
	Production     bool
	TrustedOrigins []string
	SlowRequest    time.Duration

	// Now and GenerateID default to time.Now and uuid.New.
	Now        func() time.Time
	GenerateID func() string
}

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("UKCCU_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("UKCCU_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (forms opened before a restart will be rejected). Set UKCCU_CSRF_KEY for production.")
	return key
}

// NewMux wires HTTP handlers and middleware for the site.
func NewMux(deps Deps) http.Handler {
	s := newServer(deps)
	mux := s.routes()

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outer to inner: Timing -> RateLimit -> Visitor -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(loadCSRFKey(deps.CSRFKey, deps.Production), deps.Production, deps.TrustedOrigins),
		middleware.Visitor(deps.Production),
		middleware.RateLimit(limiter, deps.TrustedProxies),
		middleware.Timing(deps.Collector, deps.SlowRequest),
	)
}
