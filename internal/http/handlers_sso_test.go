package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/service"
)

// mockSSOService is a test double for service.SSOService.
type mockSSOService struct {
	beginFunc    func(ctx context.Context, provider domainauth.ProviderName, sessionID string) (*service.BeginResult, error)
	completeFunc func(ctx context.Context, in service.CallbackInput) (*service.CallbackResult, error)
	providers    []domainauth.ProviderName

	lastSession string
	lastInput   service.CallbackInput
}

func (m *mockSSOService) Begin(
	ctx context.Context,
	provider domainauth.ProviderName,
	sessionID string,
) (*service.BeginResult, error) {
	m.lastSession = sessionID
	if m.beginFunc != nil {
		return m.beginFunc(ctx, provider, sessionID)
	}
	return &service.BeginResult{AuthorizeURL: "https://idp.example.com/authorize?state=s1"}, nil
}

func (m *mockSSOService) Complete(ctx context.Context, in service.CallbackInput) (*service.CallbackResult, error) {
	m.lastInput = in
	if m.completeFunc != nil {
		return m.completeFunc(ctx, in)
	}
	return &service.CallbackResult{
		HTML:  []byte("<html>ok</html>"),
		CSP:   "script-src 'nonce-n1'",
		Nonce: "n1",
		State: service.StateRendered,
	}, nil
}

func (m *mockSSOService) Providers() []domainauth.ProviderName { return m.providers }

func newTestRouter(svc *mockSSOService) http.Handler {
	return NewRouter(RouterServices{
		SSO:    svc,
		Cookie: SessionCookieConfig{Secure: true, MaxAge: 10 * time.Minute},
	})
}

func TestConnect_RedirectsWithEmptyBodyAndMintsSession(t *testing.T) {
	svc := &mockSSOService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/Cognito", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.example.com/authorize?state=s1", rec.Header().Get("Location"))
	assert.Zero(t, rec.Body.Len())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, DefaultSessionCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 600, c.MaxAge)
	_, err := uuid.Parse(c.Value)
	require.NoError(t, err)
	assert.Equal(t, c.Value, svc.lastSession)
}

func TestConnect_ReusesExistingSession(t *testing.T) {
	svc := &mockSSOService{}
	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/connect/azuread", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: existing})

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, existing, svc.lastSession)
}

func TestConnect_ReplacesMalformedSession(t *testing.T) {
	svc := &mockSSOService{}
	req := httptest.NewRequest(http.MethodGet, "/connect/azuread", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: "not-a-uuid"})

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.NotEqual(t, "not-a-uuid", svc.lastSession)
	_, err := uuid.Parse(svc.lastSession)
	assert.NoError(t, err)
}

func TestConnect_ConfigurationErrorIs500JSON(t *testing.T) {
	svc := &mockSSOService{
		beginFunc: func(context.Context, domainauth.ProviderName, string) (*service.BeginResult, error) {
			return nil, apperrors.Configuration("azuread: AZUREAD_TENANT_ID required")
		},
	}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/azuread", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "configuration_error", body["error"])
	assert.NotContains(t, rec.Body.String(), "AZUREAD_TENANT_ID")
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestConnect_StoreFailureIs500(t *testing.T) {
	svc := &mockSSOService{
		beginFunc: func(context.Context, domainauth.ProviderName, string) (*service.BeginResult, error) {
			return nil, errors.New("redis down")
		},
	}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/cognito", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestCallback_SuccessSetsCSPAndPassesInput(t *testing.T) {
	svc := &mockSSOService{}
	session := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/connect/cognito/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: session})
	req.Header.Set("Accept-Language", "ja-JP")

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "script-src 'nonce-n1'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html>ok</html>", rec.Body.String())

	assert.Equal(t, service.CallbackInput{
		Provider:       domainauth.ProviderCognito,
		SessionID:      session,
		Code:           "abc",
		State:          "s1",
		AcceptLanguage: "ja-JP",
	}, svc.lastInput)
}

func TestCallback_FailurePageIs200WithoutCSP(t *testing.T) {
	svc := &mockSSOService{
		completeFunc: func(context.Context, service.CallbackInput) (*service.CallbackResult, error) {
			return &service.CallbackResult{
				HTML:  []byte("<p>invalid state</p>"),
				State: service.StateFailed,
				Err:   apperrors.Protocol("invalid state"),
			}, nil
		},
	}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/cognito/callback?code=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.True(t, strings.Contains(rec.Body.String(), "invalid state"))
	assert.Empty(t, svc.lastInput.SessionID)
}

func TestCallback_ConfigurationErrorIs500(t *testing.T) {
	svc := &mockSSOService{
		completeFunc: func(context.Context, service.CallbackInput) (*service.CallbackResult, error) {
			return nil, apperrors.Configuration(`unknown provider "okta"`)
		},
	}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/okta/callback?code=x&state=y", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "configuration_error")
}

func TestProvidersEndpoint(t *testing.T) {
	svc := &mockSSOService{providers: []domainauth.ProviderName{domainauth.ProviderAzureAD, domainauth.ProviderCognito}}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/providers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"providers":["azuread","cognito"]}`, rec.Body.String())
	assert.Empty(t, svc.lastSession, "providers must not start a sign-in")
}

func TestProvidersEndpointEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&mockSSOService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect/providers", nil))
	assert.JSONEq(t, `{"providers":[]}`, rec.Body.String())
}
