package oidc

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
)

// CognitoScope is fixed; the hosted UI client must allow these scopes.
const CognitoScope = "openid email profile"

const cognitoGroupsClaim = "cognito:groups"

// CognitoConfig holds configuration for the Cognito adapter.
type CognitoConfig struct {
	ClientID     string
	ClientSecret string
	Domain       string
	Region       string
	RedirectURL  string
	UserGroup    string // Optional group gate
	BaseURL      string // Optional, replaces https://{domain}.auth.{region}.amazoncognito.com
	Claims       ClaimPaths
	HTTPClient   *http.Client
}

// Cognito signs users in through an AWS Cognito user pool hosted UI.
type Cognito struct {
	*Client
	userGroup string
}

// NewCognito creates a new Cognito adapter.
func NewCognito(cfg CognitoConfig) (*Cognito, error) {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Domain == "" || cfg.Region == "" {
			return nil, errors.New("cognito domain and region are required")
		}
		base = fmt.Sprintf("https://%s.auth.%s.amazoncognito.com", cfg.Domain, cfg.Region)
	}
	mapper, err := NewClaimMapper(cfg.Claims, CognitoClaimPaths)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(ClientConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       splitScope(CognitoScope),
		Endpoints: Endpoints{
			AuthURL:     joinURL(base, "oauth2/authorize"),
			TokenURL:    joinURL(base, "oauth2/token"),
			UserInfoURL: joinURL(base, "oauth2/userInfo"),
		},
		Claims:     mapper,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &Cognito{Client: client, userGroup: cfg.UserGroup}, nil
}

func (c *Cognito) Name() domainauth.ProviderName { return domainauth.ProviderCognito }

// Validate requires email_verified to be the string "true" and, when a user
// group is configured, membership of that group in the access token.
func (c *Cognito) Validate(tokens domainauth.TokenSet, claims domainauth.IdentityClaims) error {
	if claims.EmailVerified != "true" {
		return apperrors.Claim("Your email address has not been verified.")
	}
	if c.userGroup == "" {
		return nil
	}
	hints, err := untrustedTokenClaims(tokens.AccessToken)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeClaim, "cannot read access token groups")
	}
	if !slices.Contains(hints.Strings(cognitoGroupsClaim), c.userGroup) {
		return apperrors.Claim("You do not belong to the specified user group.")
	}
	return nil
}

// untrustedTokenClaims decodes the access token payload without checking its
// signature. The token came straight from the token endpoint over TLS, so the
// result is only good for provider-local gates such as group membership.
func untrustedTokenClaims(token string) (domainauth.UntrustedClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domainauth.UntrustedClaims{}, err
	}
	return domainauth.NewUntrustedClaims(claims), nil
}
