// Package ports defines interfaces (hexagonal ports) for sign-in behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
)

// ProviderAdapter encapsulates everything that differs between identity providers.
type ProviderAdapter interface {
	Name() domainauth.ProviderName

	// AuthorizeURL builds the IdP authorize endpoint URL for a PKCE challenge and state.
	AuthorizeURL(challenge, state string) string

	// TokenExchange redeems an authorization code together with the PKCE verifier.
	TokenExchange(ctx context.Context, code, verifier string) (domainauth.TokenSet, error)

	// FetchIdentity calls the userinfo endpoint with the access token.
	FetchIdentity(ctx context.Context, accessToken string) (domainauth.IdentityClaims, error)

	// Validate runs provider-specific checks after the identity has been fetched.
	Validate(tokens domainauth.TokenSet, claims domainauth.IdentityClaims) error
}

// AttemptKey addresses one in-flight authorization attempt.
type AttemptKey struct {
	SessionID string
	Provider  domainauth.ProviderName
}

// AttemptStore persists the PKCE verifier and state between the two legs of the flow.
type AttemptStore interface {
	// Save stores the attempt, replacing any previous attempt for the same key.
	Save(ctx context.Context, key AttemptKey, attempt domainauth.AuthAttempt) error
	// Take returns and removes the attempt. found is false when nothing was stored.
	Take(ctx context.Context, key AttemptKey) (attempt domainauth.AuthAttempt, found bool, err error)
}

// UserDirectory looks up and provisions local admin users.
type UserDirectory interface {
	// FindByEmail returns nil, nil when no user matches.
	FindByEmail(ctx context.Context, email string) (*domainauth.User, error)
	// Provision creates the user. When the email is already registered it
	// returns the existing user with created set to false.
	Provision(ctx context.Context, in domainauth.NewUser) (user *domainauth.User, created bool, err error)
}

// TokenIssuer issues the local session credential for a user.
type TokenIssuer interface {
	Issue(ctx context.Context, user domainauth.User) (domainauth.Credential, error)
}

// WebhookNotifier is told about newly provisioned users.
type WebhookNotifier interface {
	OnProvisioned(ctx context.Context, provider domainauth.ProviderName, user domainauth.User) error
}

// SignInNotifier is told about every successful sign-in.
type SignInNotifier interface {
	OnSuccess(ctx context.Context, provider domainauth.ProviderName, user domainauth.User)
}

// Whitelist decides whether an authenticated email may obtain a local session.
type Whitelist interface {
	Check(ctx context.Context, email string) error
}

// RoleMapper yields the roles given to users provisioned through a provider.
type RoleMapper interface {
	DefaultRolesFor(provider domainauth.ProviderName) []domainauth.RoleRef
}

// Renderer produces the terminal HTML pages.
type Renderer interface {
	Success(cred domainauth.Credential, user domainauth.User, nonce string) ([]byte, error)
	Error(message string) ([]byte, error)
}

// WhitelistRepository persists whitelist entries managed by operators.
type WhitelistRepository interface {
	List(ctx context.Context) ([]domainauth.WhitelistEntry, error)
	Add(ctx context.Context, entry domainauth.WhitelistEntry) (*domainauth.WhitelistEntry, error)
	// Remove reports whether an entry with that pattern existed.
	Remove(ctx context.Context, pattern string) (bool, error)
}
