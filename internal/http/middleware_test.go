package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_OmitsQueryString(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/connect/cognito/callback?code=secret-code&state=s", nil))

	out := buf.String()
	assert.Contains(t, out, "path=/connect/cognito/callback")
	assert.Contains(t, out, "status=418")
	assert.NotContains(t, out, "secret-code")
}

func TestRecover_Returns500(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNoStore(t *testing.T) {
	h := NoStore("/connect/")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		path      string
		wantCache string
	}{
		{"/connect/cognito", "no-store"},
		{"/connect/cognito/callback", "no-store"},
		{"/healthz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCache, rec.Header().Get("Cache-Control"))
			if tt.wantCache != "" {
				assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
				assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			}
		})
	}
}

func TestRequestIsSecure(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, requestIsSecure(r))

	r.Header.Set("X-Forwarded-Proto", "HTTPS")
	assert.True(t, requestIsSecure(r))
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]ReadinessCheck
		status int
		body   string
	}{
		{
			name:   "no checks",
			status: http.StatusOK,
			body:   `{"status":"ok","checks":{}}`,
		},
		{
			name:   "all healthy",
			checks: map[string]ReadinessCheck{"postgres": ok, "redis": ok},
			status: http.StatusOK,
			body:   `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:   "one down",
			checks: map[string]ReadinessCheck{"postgres": ok, "redis": down},
			status: http.StatusServiceUnavailable,
			body:   `{"status":"unavailable","checks":{"postgres":"ok","redis":"unavailable"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterServices{
				Readiness: &ReadinessHandlers{
					Checks: tt.checks,
					Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
				},
			})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestRouter_WithoutSSOHasNoConnectRoutes(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(RouterServices{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/cognito", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
