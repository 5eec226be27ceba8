package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/pkce"
)

// fakeIdP serves the token and userinfo endpoints of a hosted UI.
type fakeIdP struct {
	t            *testing.T
	server       *httptest.Server
	tokenCalls   atomic.Int32
	userCalls    atomic.Int32
	lastForm     url.Values
	tokenStatus  int
	accessToken  string
	userInfo     map[string]any
	userStatus   int
	tokenLatency time.Duration
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	f := &fakeIdP{
		t:           t,
		tokenStatus: http.StatusOK,
		userStatus:  http.StatusOK,
		accessToken: "opaque-access-token",
		userInfo: map[string]any{
			"email":          "jane@example.com",
			"email_verified": "true",
			"username":       "jane",
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", f.handleToken)
	mux.HandleFunc("GET /oauth2/userInfo", f.handleUserInfo)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIdP) handleToken(w http.ResponseWriter, r *http.Request) {
	f.tokenCalls.Add(1)
	if f.tokenLatency > 0 {
		time.Sleep(f.tokenLatency)
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.lastForm = r.PostForm
	w.Header().Set("Content-Type", "application/json")
	if f.tokenStatus != http.StatusOK {
		w.WriteHeader(f.tokenStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "code expired",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": f.accessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     "id-token",
	})
}

func (f *fakeIdP) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	f.userCalls.Add(1)
	if r.Header.Get("Authorization") != "Bearer "+f.accessToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.userStatus != http.StatusOK {
		w.WriteHeader(f.userStatus)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f.userInfo)
}

func newTestCognito(t *testing.T, idp *fakeIdP, group string) *Cognito {
	t.Helper()
	c, err := NewCognito(CognitoConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://admin.example.com/connect/cognito/callback",
		UserGroup:    group,
		BaseURL:      idp.server.URL,
		HTTPClient:   &http.Client{Timeout: 2 * time.Second},
	})
	require.NoError(t, err)
	return c
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("idp-key"))
	require.NoError(t, err)
	return s
}

func TestNewClient_ValidationErrors(t *testing.T) {
	mapper, err := NewClaimMapper(ClaimPaths{}, CognitoClaimPaths)
	require.NoError(t, err)
	endpoints := Endpoints{AuthURL: "https://idp/a", TokenURL: "https://idp/t", UserInfoURL: "https://idp/u"}

	tests := []struct {
		name   string
		config ClientConfig
		errMsg string
	}{
		{"missing client ID", ClientConfig{ClientSecret: "s", RedirectURL: "r", Endpoints: endpoints, Claims: mapper}, "client ID is required"},
		{"missing client secret", ClientConfig{ClientID: "c", RedirectURL: "r", Endpoints: endpoints, Claims: mapper}, "client secret is required"},
		{"missing redirect URL", ClientConfig{ClientID: "c", ClientSecret: "s", Endpoints: endpoints, Claims: mapper}, "redirect URL is required"},
		{"missing endpoints", ClientConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "r", Claims: mapper}, "endpoints are required"},
		{"missing claim mapper", ClientConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "r", Endpoints: endpoints}, "claim mapper is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCognito_AuthorizeURL(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCognito(t, idp, "")
	material := pkce.New()

	raw := c.AuthorizeURL(material.Challenge, "state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, idp.server.URL+"/oauth2/authorize", u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://admin.example.com/connect/cognito/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "state-123", q.Get("state"))
	// The challenge sent must be derivable from the verifier kept server-side.
	assert.Equal(t, pkce.Challenge(material.Verifier), q.Get("code_challenge"))
}

func TestCognito_DefaultEndpoints(t *testing.T) {
	c, err := NewCognito(CognitoConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		Domain:       "mmk",
		Region:       "us-east-1",
		RedirectURL:  "https://admin.example.com/cb",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://mmk.auth.us-east-1.amazoncognito.com/oauth2/authorize", c.config.Endpoint.AuthURL)
	assert.Equal(t, "https://mmk.auth.us-east-1.amazoncognito.com/oauth2/token", c.config.Endpoint.TokenURL)
	assert.Equal(t, "https://mmk.auth.us-east-1.amazoncognito.com/oauth2/userInfo", c.userInfo.UserInfoEndpoint())

	_, err = NewCognito(CognitoConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "r"})
	require.Error(t, err)
}

func TestAzureAD_Endpoints(t *testing.T) {
	a, err := NewAzureAD(AzureADConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		TenantID:     "tenant-1",
		RedirectURL:  "https://admin.example.com/connect/azuread/callback",
		Scope:        "openid email profile User.Read",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.ProviderAzureAD, a.Name())
	assert.Equal(t, "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/authorize", a.config.Endpoint.AuthURL)
	assert.Equal(t, "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/token", a.config.Endpoint.TokenURL)
	assert.Equal(t, DefaultAzureADUserInfoURL, a.userInfo.UserInfoEndpoint())

	u, err := url.Parse(a.AuthorizeURL("challenge", "state"))
	require.NoError(t, err)
	assert.Equal(t, "openid email profile User.Read", u.Query().Get("scope"))
	assert.NoError(t, a.Validate(domainauth.TokenSet{}, domainauth.IdentityClaims{Email: "a@example.com"}))
}

func TestClient_TokenExchange(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCognito(t, idp, "")

	tokens, err := c.TokenExchange(context.Background(), "auth-code", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, "opaque-access-token", tokens.AccessToken)
	assert.Equal(t, "id-token", tokens.IDToken)
	assert.False(t, tokens.Expiry.IsZero())

	form := idp.lastForm
	assert.Equal(t, "auth-code", form.Get("code"))
	assert.Equal(t, "client-id", form.Get("client_id"))
	assert.Equal(t, "client-secret", form.Get("client_secret"))
	assert.Equal(t, "https://admin.example.com/connect/cognito/callback", form.Get("redirect_uri"))
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "the-verifier", form.Get("code_verifier"))
}

func TestClient_TokenExchange_ProviderErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		idp := newFakeIdP(t)
		idp.tokenStatus = http.StatusBadRequest
		c := newTestCognito(t, idp, "")

		_, err := c.TokenExchange(context.Background(), "code", "verifier")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeProvider, apperrors.GetCode(err))
		assert.Equal(t, "token exchange failed: invalid_grant code expired", apperrors.UserMessage(err))
	})

	t.Run("timeout", func(t *testing.T) {
		idp := newFakeIdP(t)
		idp.tokenLatency = 200 * time.Millisecond
		c, err := NewCognito(CognitoConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://admin.example.com/cb",
			BaseURL:      idp.server.URL,
			HTTPClient:   &http.Client{Timeout: 20 * time.Millisecond},
		})
		require.NoError(t, err)

		_, err = c.TokenExchange(context.Background(), "code", "verifier")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeProvider, apperrors.GetCode(err))
		assert.Contains(t, apperrors.UserMessage(err), "timeout")
	})
}

func TestClient_FetchIdentity(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCognito(t, idp, "")

	claims, err := c.FetchIdentity(context.Background(), "opaque-access-token")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "true", claims.EmailVerified)
	assert.Equal(t, "jane", claims.Username)
	assert.Equal(t, "jane", claims.DisplayName())
	assert.Empty(t, claims.FamilyName)
	assert.Equal(t, "jane@example.com", claims.Raw["email"])
}

func TestClient_FetchIdentity_Errors(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCognito(t, idp, "")

	_, err := c.FetchIdentity(context.Background(), "wrong-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProvider, apperrors.GetCode(err))
	assert.Contains(t, apperrors.UserMessage(err), "userinfo request failed")

	idp.userInfo = map[string]any{"username": "nomail"}
	claims, err := c.FetchIdentity(context.Background(), "opaque-access-token")
	require.NoError(t, err)
	assert.Empty(t, claims.Email)
}

func TestCognito_Validate(t *testing.T) {
	idp := newFakeIdP(t)
	verified := domainauth.IdentityClaims{Email: "jane@example.com", EmailVerified: "true"}

	t.Run("email must be verified as string true", func(t *testing.T) {
		c := newTestCognito(t, idp, "")
		for _, v := range []string{"false", "", "TRUE", "1"} {
			err := c.Validate(domainauth.TokenSet{}, domainauth.IdentityClaims{Email: "a@b.c", EmailVerified: v})
			require.Error(t, err, v)
			assert.Equal(t, apperrors.ErrCodeClaim, apperrors.GetCode(err))
			assert.Contains(t, err.Error(), "email")
		}
		assert.NoError(t, c.Validate(domainauth.TokenSet{}, verified))
	})

	t.Run("boolean email_verified from userinfo is rejected", func(t *testing.T) {
		boolIdP := newFakeIdP(t)
		boolIdP.userInfo["email_verified"] = true
		c := newTestCognito(t, boolIdP, "")

		claims, err := c.FetchIdentity(context.Background(), boolIdP.accessToken)
		require.NoError(t, err)
		assert.Empty(t, claims.EmailVerified)

		err = c.Validate(domainauth.TokenSet{}, claims)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeClaim, apperrors.GetCode(err))
	})

	t.Run("group present", func(t *testing.T) {
		c := newTestCognito(t, idp, "admins")
		token := signedToken(t, jwt.MapClaims{"cognito:groups": []string{"readers", "admins"}})
		assert.NoError(t, c.Validate(domainauth.TokenSet{AccessToken: token}, verified))
	})

	t.Run("group missing", func(t *testing.T) {
		c := newTestCognito(t, idp, "admins")
		token := signedToken(t, jwt.MapClaims{"cognito:groups": []string{"readers"}})
		err := c.Validate(domainauth.TokenSet{AccessToken: token}, verified)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeClaim, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "user group")
	})

	t.Run("groups claim absent", func(t *testing.T) {
		c := newTestCognito(t, idp, "admins")
		token := signedToken(t, jwt.MapClaims{"sub": "123"})
		require.Error(t, c.Validate(domainauth.TokenSet{AccessToken: token}, verified))
	})

	t.Run("opaque token", func(t *testing.T) {
		c := newTestCognito(t, idp, "admins")
		err := c.Validate(domainauth.TokenSet{AccessToken: "not-a-jwt"}, verified)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeClaim, apperrors.GetCode(err))
	})
}
