package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-sso/config"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/observability/statsd"
)

func memoryAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		SSO: config.SSOConfig{
			AttemptStore:  config.AttemptStoreMemory,
			UserDirectory: config.UserDirectoryMemory,
			Cognito:       cognitoConfig(),
			JWT: config.JWTConfig{
				Secret: strings.Repeat("s", 32),
				TTL:    time.Hour,
			},
		},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_MemoryBackends(t *testing.T) {
	services, err := NewServices(&ServiceDeps{Config: memoryAppConfig(), Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	assert.Equal(t, []domainauth.ProviderName{domainauth.ProviderCognito}, services.SSO.Providers())
	assert.Equal(t, statsd.Discard, services.Observability.MetricsSink)
	assert.False(t, services.Observability.Notifier.Enabled())
	assert.Empty(t, services.Readiness.Checks)
}

func TestNewServices_WebhookSinkRegistered(t *testing.T) {
	cfg := memoryAppConfig()
	cfg.SSO.Webhook.URL = "https://hooks.example.com/users"

	services, err := NewServices(&ServiceDeps{Config: cfg, Logger: quietLogger()})
	require.NoError(t, err)
	assert.True(t, services.Observability.Notifier.Enabled())
}

func TestNewServices_ShortJWTSecret(t *testing.T) {
	cfg := memoryAppConfig()
	cfg.SSO.JWT.Secret = "short"

	_, err := NewServices(&ServiceDeps{Config: cfg, Logger: quietLogger()})
	assert.ErrorContains(t, err, "token issuer")
}

func TestNewServices_RequiresConfig(t *testing.T) {
	_, err := NewServices(&ServiceDeps{})
	assert.Error(t, err)
}

func TestBuildHTTPHandler_ConnectRedirects(t *testing.T) {
	cfg := memoryAppConfig()
	services, err := NewServices(&ServiceDeps{Config: cfg, Logger: quietLogger()})
	require.NoError(t, err)

	handler := BuildHTTPHandler(&HTTPServerConfig{Config: cfg, Services: services, Logger: quietLogger()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/cognito", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://auth.example.com/oauth2/authorize?"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/azuread", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "DEBUG",
		"warn":  "WARN",
		"error": "ERROR",
		"":      "INFO",
		"loud":  "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}
