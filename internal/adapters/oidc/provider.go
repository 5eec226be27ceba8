// Package oidc implements the identity provider adapters used by the sign-in flow.
// Every provider shares the same authorization code + PKCE exchange; variants
// differ in endpoints, claim paths and post-token validation.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/pkce"
	"golang.org/x/oauth2"
)

const defaultHTTPTimeout = 10 * time.Second

// Endpoints are the three IdP URLs the flow talks to.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// ClientConfig holds configuration for the shared OAuth2 client.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	Endpoints    Endpoints
	Claims       *ClaimMapper
	HTTPClient   *http.Client // Optional, defaults to a client with a 10s timeout
}

// Client runs the provider-agnostic half of the flow: authorize URL,
// code exchange and userinfo.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
	claims     *ClaimMapper
	userInfo   *gooidc.Provider
}

// NewClient creates a new Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if cfg.Endpoints.AuthURL == "" || cfg.Endpoints.TokenURL == "" || cfg.Endpoints.UserInfoURL == "" {
		return nil, errors.New("authorize, token and userinfo endpoints are required")
	}
	if cfg.Claims == nil {
		return nil, errors.New("claim mapper is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	// Userinfo only; discovery is not used so endpoints stay explicit and testable.
	pc := &gooidc.ProviderConfig{
		AuthURL:     cfg.Endpoints.AuthURL,
		TokenURL:    cfg.Endpoints.TokenURL,
		UserInfoURL: cfg.Endpoints.UserInfoURL,
	}

	return &Client{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.Endpoints.AuthURL,
				TokenURL:  cfg.Endpoints.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		claims:     cfg.Claims,
		userInfo:   pc.NewProvider(gooidc.ClientContext(context.Background(), httpClient)),
	}, nil
}

// AuthorizeURL builds the authorize endpoint URL carrying client_id, redirect_uri,
// scope, response_type=code, the S256 challenge and state.
func (c *Client) AuthorizeURL(challenge, state string) string {
	return c.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.MethodS256),
	)
}

// TokenExchange redeems code at the token endpoint. Client credentials travel
// in the form body together with the PKCE verifier.
func (c *Client) TokenExchange(ctx context.Context, code, verifier string) (domainauth.TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return domainauth.TokenSet{}, providerError("token exchange failed", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	return domainauth.TokenSet{
		AccessToken: tok.AccessToken,
		IDToken:     idToken,
		Expiry:      tok.Expiry,
	}, nil
}

// FetchIdentity calls the userinfo endpoint with the bearer access token and
// maps the document through the configured claim paths.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (domainauth.IdentityClaims, error) {
	ctx = gooidc.ClientContext(ctx, c.httpClient)
	ui, err := c.userInfo.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return domainauth.IdentityClaims{}, providerError("userinfo request failed", err)
	}
	var raw map[string]any
	if claimsErr := ui.Claims(&raw); claimsErr != nil {
		return domainauth.IdentityClaims{}, providerError("decode userinfo", claimsErr)
	}
	claims, err := c.claims.Map(raw)
	if err != nil {
		return domainauth.IdentityClaims{}, providerError("map userinfo claims", err)
	}
	return claims, nil
}

// providerError classifies an IdP failure. Structured OAuth2 error responses
// keep their error code and description in the message; everything else keeps
// the transport error text.
func providerError(msg string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		detail := strings.TrimSpace(strings.Join([]string{re.ErrorCode, re.ErrorDescription}, " "))
		if detail == "" && re.Response != nil {
			detail = re.Response.Status
		}
		return apperrors.Wrapf(err, apperrors.ErrCodeProvider, "%s: %s", msg, detail)
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return apperrors.Wrapf(err, apperrors.ErrCodeProvider, "%s: timeout", msg)
	}
	return apperrors.Wrapf(err, apperrors.ErrCodeProvider, "%s: %v", msg, err)
}

// splitScope turns a space separated scope string into oauth2 scopes.
func splitScope(scope string) []string {
	return strings.Fields(scope)
}

func joinURL(base string, parts ...string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.Join(parts, "/"))
}
