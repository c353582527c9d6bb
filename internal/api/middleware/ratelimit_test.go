package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClient(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	rejected := 0
	rl.OnReject = func() { rejected++ }

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001").Code)

	rec := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, rejected)

	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code, "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5003").Code, "bucket refills over time")
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.Len(t, rl.clients, 1)

	now = now.Add(idleLimiterTTL + time.Second)
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "10.0.0.2")
}

func TestRateLimiter_SweepsAtMostOncePerTTL(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.Equal(t, start, rl.lastSweep)

	now = start.Add(time.Minute)
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Equal(t, start, rl.lastSweep, "no sweep before the TTL has passed")

	// Due: 10.0.0.1 is idle past the TTL, 10.0.0.2 is not yet.
	now = start.Add(idleLimiterTTL + 30*time.Second)
	assert.True(t, rl.allow("10.0.0.3"))
	assert.Equal(t, now, rl.lastSweep)
	assert.NotContains(t, rl.clients, "10.0.0.1")
	assert.Contains(t, rl.clients, "10.0.0.2")

	// 10.0.0.2 is now idle too, but the next sweep is not due yet.
	now = start.Add(idleLimiterTTL + 2*time.Minute)
	assert.True(t, rl.allow("10.0.0.4"))
	assert.Contains(t, rl.clients, "10.0.0.2")

	now = start.Add(2*idleLimiterTTL + time.Minute)
	assert.True(t, rl.allow("10.0.0.5"))
	assert.NotContains(t, rl.clients, "10.0.0.2")
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientKey(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientKey(req))
}
