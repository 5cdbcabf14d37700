package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, newFakeStore(), testConfig())

	rec := do(s, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2,
		window:   time.Minute,
		now:      func() time.Time { return now },
	}

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per client")

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.allow("10.0.0.1"), "window resets")
}

func TestImportRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.ImportLimit = 1
	s := newTestServer(t, newFakeStore(), cfg)

	csv := "Date,Amount,Source,Description\n2024-01-15,5,Turo,p\n"
	first := do(s, http.MethodPost, "/api/import/earnings", bytes.NewBufferString(csv), "text/csv")
	assert.Equal(t, http.StatusOK, first.Code)

	second := do(s, http.MethodPost, "/api/import/earnings", bytes.NewBufferString(csv), "text/csv")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE001", decodeError(t, second).Code)

	// Other routes use the general limit.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/rules", nil, "").Code)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5123"
	assert.Equal(t, "192.0.2.7", clientIP(r))

	r.RemoteAddr = "192.0.2.8"
	assert.Equal(t, "192.0.2.8", clientIP(r))
}

func TestShutdown_WaitsForActiveImports(t *testing.T) {
	s := newTestServer(t, newFakeStore(), testConfig())
	require.NoError(t, s.limiter.Acquire(context.Background()))

	stopped := make(chan error, 1)
	go func() { stopped <- s.Shutdown(context.Background()) }()

	select {
	case err := <-stopped:
		t.Fatalf("Shutdown returned %v with an import still running", err)
	case <-time.After(120 * time.Millisecond):
	}

	s.limiter.Release()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return after the import finished")
	}
}

func TestShutdown_GivesUpAtDeadline(t *testing.T) {
	s := newTestServer(t, newFakeStore(), testConfig())
	require.NoError(t, s.limiter.Acquire(context.Background()))
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)
}
