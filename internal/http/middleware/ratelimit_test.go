package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatalf("burst of 2 must be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatalf("third request within the same instant must be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatalf("other IPs have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Fatalf("a token refills after one second")
	}
}

func TestRateLimiterEvict(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return start }
	rl.Allow("1.1.1.1")
	rl.now = func() time.Time { return start.Add(time.Hour) }
	rl.Allow("2.2.2.2")

	if n := rl.Evict(start.Add(time.Minute)); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/booking/checkout", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do(); code != http.StatusNoContent {
		t.Fatalf("first request: expected %d, got %d", http.StatusNoContent, code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected %d, got %d", http.StatusTooManyRequests, code)
	}
}
