package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// StatsProvider is the read-only view of server state the HTTP API exposes.
// Implemented by serverside.Server via a lock-free snapshot taken once per
// tick, avoiding RWMutex contention on every poll request.
type StatsProvider interface {
	Stats() Stats
}

// Stats is the JSON shape served at /api/stats.
type Stats struct {
	TickNumber  uint32  `json:"tick_number"`
	PlayerCount int     `json:"player_count"`
	EntityCount int     `json:"entity_count"`
	UptimeS     float64 `json:"uptime_s"`
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	stats StatsProvider
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router, designed for dependency injection and testability.
type RouterConfig struct {
	// Stats is the game server's stats provider (required).
	Stats StatsProvider

	// RateLimiter is an optional pre-configured rate limiter. If nil, a new
	// one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins. If nil, uses
	// localhost-only defaults.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for
	// benchmarks).
	DisableLogging bool
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: It opens no listeners, so it is safe to use in tests with
// httptest.NewServer. When cfg.RateLimiter is nil it builds an IPRateLimiter,
// whose cleanup goroutine starts at once and is not stopped by the router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{stats: cfg.Stats}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.handleGetStats)
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}

// GetRateLimiterFromRouter is a helper to extract the rate limiter that would
// be built for a given config, for tests that need to inspect its behavior.
func GetRateLimiterFromRouter(cfg RouterConfig) *IPRateLimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewIPRateLimiter(rateLimitCfg)
}
