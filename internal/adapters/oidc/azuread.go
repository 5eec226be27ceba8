package oidc

import (
	"net/http"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
)

const (
	// DefaultAzureADAuthority is the public-cloud Microsoft identity platform.
	DefaultAzureADAuthority = "https://login.microsoftonline.com"
	// DefaultAzureADUserInfoURL is the Microsoft Graph OIDC userinfo endpoint.
	DefaultAzureADUserInfoURL = "https://graph.microsoft.com/oidc/userinfo"
)

// AzureADConfig holds configuration for the Azure AD adapter.
type AzureADConfig struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	RedirectURL  string
	Scope        string
	AuthorityURL string // Optional, defaults to DefaultAzureADAuthority
	UserInfoURL  string // Optional, defaults to DefaultAzureADUserInfoURL
	Claims       ClaimPaths
	HTTPClient   *http.Client
}

// AzureAD signs users in through a single Azure AD tenant.
type AzureAD struct {
	*Client
}

// NewAzureAD creates a new Azure AD adapter.
func NewAzureAD(cfg AzureADConfig) (*AzureAD, error) {
	authority := cfg.AuthorityURL
	if authority == "" {
		authority = DefaultAzureADAuthority
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = DefaultAzureADUserInfoURL
	}
	mapper, err := NewClaimMapper(cfg.Claims, AzureADClaimPaths)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(ClientConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       splitScope(cfg.Scope),
		Endpoints: Endpoints{
			AuthURL:     joinURL(authority, cfg.TenantID, "oauth2/v2.0/authorize"),
			TokenURL:    joinURL(authority, cfg.TenantID, "oauth2/v2.0/token"),
			UserInfoURL: userInfo,
		},
		Claims:     mapper,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &AzureAD{Client: client}, nil
}

func (a *AzureAD) Name() domainauth.ProviderName { return domainauth.ProviderAzureAD }

// Validate has nothing to add for Azure AD; a present email is enough.
func (a *AzureAD) Validate(domainauth.TokenSet, domainauth.IdentityClaims) error { return nil }
