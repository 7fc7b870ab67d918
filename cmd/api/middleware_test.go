package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/bookshelf-api/internal/auth"
)

func TestRecoverPanic(t *testing.T) {
	app := newTestApplication(t)
	handler := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
	assert.Contains(t, rr.Body.String(), "the server encountered a problem")
}

func TestRateLimit(t *testing.T) {
	app := newTestApplication(t)
	app.config.limiter.enabled = true
	app.config.limiter.rps = 0.001
	app.config.limiter.burst = 1

	handler := app.rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIPLimiter_EvictsIdleVisitors(t *testing.T) {
	l := newIPLimiter(1, 1)
	start := time.Now()

	assert.True(t, l.allow("192.0.2.1", start))
	assert.False(t, l.allow("192.0.2.1", start))

	// Within the sweep interval nothing is evicted.
	assert.True(t, l.allow("192.0.2.2", start.Add(sweepInterval/2)))
	assert.Len(t, l.visitors, 2)

	// A later call sweeps both idle addresses before admitting a new one.
	later := start.Add(visitorIdleTTL + sweepInterval)
	assert.True(t, l.allow("192.0.2.3", later))
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "192.0.2.3")

	// The evicted address starts over with a full bucket.
	assert.True(t, l.allow("192.0.2.1", later))
}

func TestLogRequest_RequestID(t *testing.T) {
	c := newTestClient(t)

	rr := c.do(http.MethodGet, "/api/healthcheck", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rr = httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	assert.Equal(t, "trace-123", rr.Header().Get("X-Request-ID"))
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t)

	other, err := auth.NewTokenService("another-secret", auth.DefaultIssuer)
	require.NoError(t, err)
	forged, err := other.Issue("mallory", []string{auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	expired, err := c.app.tokens.Issue("admin", []string{auth.RoleAdmin}, -time.Minute)
	require.NoError(t, err)

	body := `{"firstname":"A","lastname":"B"}`
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusForbidden},
		{name: "wrong scheme", header: "Basic " + c.adminToken, want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "user role", header: "Bearer " + c.userToken, want: http.StatusForbidden},
		{name: "admin role", header: "bearer " + c.adminToken, want: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/authors", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := httptest.NewRecorder()
			c.handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestRoutes_NotFoundAndMethodNotAllowed(t *testing.T) {
	c := newTestClient(t)

	rr := c.do(http.MethodGet, "/api/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	rr = c.do(http.MethodPatch, "/api/books/1", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealthcheck(t *testing.T) {
	c := newTestClient(t)

	rr := c.do(http.MethodGet, "/api/healthcheck", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"status":"available","system_info":{"environment":"development","version":"`+appVersion+`"}}`,
		rr.Body.String())
}
