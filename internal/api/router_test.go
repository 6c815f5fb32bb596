package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeStats struct {
	s Stats
}

func (f fakeStats) Stats() Stats { return f.s }

func TestHealthzReturnsOK(t *testing.T) {
	r := NewRouter(RouterConfig{Stats: fakeStats{}, DisableLogging: true})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStatsEndpointServesProviderSnapshot(t *testing.T) {
	want := Stats{TickNumber: 42, PlayerCount: 3, EntityCount: 10, UptimeS: 1.5}
	r := NewRouter(RouterConfig{Stats: fakeStats{s: want}, DisableLogging: true})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got != want {
		t.Fatalf("Stats = %+v, want %+v", got, want)
	}
}

func TestStatsEndpointRejectsOverRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	t.Cleanup(limiter.Stop)
	r := NewRouter(RouterConfig{Stats: fakeStats{}, RateLimiter: limiter, DisableLogging: true})

	req := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.RemoteAddr = "203.0.113.5:1234"
		return req
	}

	rec1 := httptest.NewRecorder()
	r.ServeHTTP(rec1, req())
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec1.Code)
	}

	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req())
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec2.Code)
	}
}
