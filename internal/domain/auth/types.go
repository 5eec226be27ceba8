// Package auth contains domain-level types for admin console sign-in.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strings"
	"time"
)

// ProviderName identifies a configured identity provider.
// Keep string form for route parameters and storage keys.
type ProviderName string

const (
	ProviderAzureAD ProviderName = "azuread"
	ProviderCognito ProviderName = "cognito"
)

// ParseProviderName normalizes a route segment into a ProviderName.
func ParseProviderName(s string) ProviderName {
	return ProviderName(strings.ToLower(strings.TrimSpace(s)))
}

// AuthAttempt is the per-browser-session scratch record kept between the
// authorization redirect and the callback. It is consumed exactly once.
type AuthAttempt struct {
	Provider     ProviderName `json:"provider"`
	CodeVerifier string       `json:"code_verifier"`
	State        string       `json:"state"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IdentityClaims is the provider-normalized view of the IdP userinfo response.
// Adapters map provider-specific claims into this shape. Only Email is
// structurally required.
type IdentityClaims struct {
	Email string
	// EmailVerified keeps the provider's raw representation ("true", "false" or "").
	EmailVerified string
	GivenName     string
	FamilyName    string
	Username      string
	Groups        []string
	// Raw holds the decoded userinfo document.
	Raw map[string]any
}

// DisplayName returns the best available first name for a new account.
func (c IdentityClaims) DisplayName() string {
	if c.GivenName != "" {
		return c.GivenName
	}
	return c.Username
}

// UntrustedClaims are claims read from a token payload without signature
// verification. Their authenticity rests only on the TLS channel the token was
// received over; they may drive provider-local restrictions (group gates) but
// must never be treated as a verified identity.
type UntrustedClaims struct {
	raw map[string]any
}

// NewUntrustedClaims wraps a decoded, unverified claim set.
func NewUntrustedClaims(raw map[string]any) UntrustedClaims {
	return UntrustedClaims{raw: raw}
}

// Strings returns the string members of a list-valued claim.
func (u UntrustedClaims) Strings(name string) []string {
	v, ok := u.raw[name]
	if !ok {
		return nil
	}
	switch vals := v.(type) {
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, isStr := item.(string); isStr {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vals
	case string:
		return []string{vals}
	default:
		return nil
	}
}

// RoleRef references a local admin role by id.
type RoleRef struct {
	ID string `json:"id"`
}

// User is a local admin console account.
type User struct {
	ID              string    `json:"id"                         db:"id"`
	Email           string    `json:"email"                      db:"email"`
	FirstName       string    `json:"first_name"                 db:"first_name"`
	LastName        string    `json:"last_name"                  db:"last_name"`
	Username        string    `json:"username,omitempty"         db:"username"`
	PreferredLocale string    `json:"preferred_language,omitempty" db:"preferred_locale"`
	Roles           []RoleRef `json:"roles"                      db:"-"`
	IsActive        bool      `json:"is_active"                  db:"is_active"`
	CreatedAt       time.Time `json:"created_at"                 db:"created_at"`
}

// NewUser carries the attributes needed to provision a user on first sign-in.
type NewUser struct {
	Email     string
	FirstName string
	LastName  string
	Locale    string
	Roles     []RoleRef
}

// Credential is the opaque local session credential handed to the admin console.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenSet is the subset of the IdP token response the sign-in flow uses.
type TokenSet struct {
	AccessToken string
	IDToken     string
	Expiry      time.Time
}
