package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the admin/stats HTTP API: a thin read-only surface over the
// authoritative game server, kept separate from the game's own websocket
// transport (internal/transport handles that over the game's binary wire
// protocol, not this JSON surface).
type Server struct {
	stats       StatsProvider
	router      *chi.Mux
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: The rate limiter's cleanup goroutine starts here (Stop ends it),
// but no network listener is opened until Start() is called, so the server
// can be constructed in tests.
//
// For testing HTTP endpoints, use NewRouter() directly.
func NewServer(stats StatsProvider) *Server {
	s := &Server{stats: stats}
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	s.router = NewRouter(RouterConfig{
		Stats:       stats,
		RateLimiter: s.rateLimiter,
	})
	return s
}

// Start begins the HTTP server. Call this method only once; to stop the
// server, signal the process.
func (s *Server) Start(addr string) error {
	log.Printf("🌐 admin API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(stats)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/stats")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
