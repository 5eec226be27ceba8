package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/target/mmk-sso/internal/errors"
)

// AttemptStoreKind selects where in-flight authorization attempts are kept.
type AttemptStoreKind string

const (
	// AttemptStoreRedis keeps attempts in Redis (shared across replicas).
	AttemptStoreRedis AttemptStoreKind = "redis"
	// AttemptStoreMemory keeps attempts in process memory (single replica / development).
	AttemptStoreMemory AttemptStoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for AttemptStoreKind.
func (a *AttemptStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*a = AttemptStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid AttemptStoreKind: %q (valid options: redis, memory)", v)
	}
}

// UserDirectoryKind selects where admin users are looked up and provisioned.
type UserDirectoryKind string

const (
	// UserDirectoryPostgres stores users in the sso_users table.
	UserDirectoryPostgres UserDirectoryKind = "postgres"
	// UserDirectoryMemory keeps users in process memory (development only).
	UserDirectoryMemory UserDirectoryKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for UserDirectoryKind.
func (u *UserDirectoryKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "memory":
		*u = UserDirectoryKind(v)
		return nil
	default:
		return fmt.Errorf("invalid UserDirectoryKind: %q (valid options: postgres, memory)", v)
	}
}

const (
	defaultAttemptTTL  = 10 * time.Minute
	defaultHTTPTimeout = 10 * time.Second
	defaultJWTTTL      = 12 * time.Hour
)

// SSOConfig groups all sign-in related configuration.
type SSOConfig struct {
	// AttemptStore determines where the PKCE verifier and state live between redirect and callback.
	AttemptStore AttemptStoreKind `env:"SSO_ATTEMPT_STORE" envDefault:"redis"`

	// UserDirectory determines where admin users live.
	UserDirectory UserDirectoryKind `env:"SSO_USER_DIRECTORY" envDefault:"postgres"`

	// AttemptTTL bounds how long an unanswered authorization attempt is kept.
	// It also drives the browser session cookie lifetime.
	AttemptTTL time.Duration `env:"SSO_ATTEMPT_TTL" envDefault:"10m"`

	// HTTPTimeout bounds every call to an IdP (token exchange, userinfo).
	HTTPTimeout time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`

	// AdminURL is where the success page sends the browser after storing the credential.
	AdminURL string `env:"SSO_ADMIN_URL" envDefault:"/admin"`

	// Locales are the admin console languages a new user may be given; the first is the fallback.
	Locales []string `env:"SSO_LOCALES" envDefault:"en,ja" envSeparator:","`

	AzureAD   AzureADConfig
	Cognito   CognitoConfig
	Whitelist WhitelistConfig
	Webhook   WebhookConfig
	JWT       JWTConfig
}

// Sanitize applies guardrails to SSO configuration values.
func (c *SSOConfig) Sanitize() {
	if c.AttemptStore == "" {
		c.AttemptStore = AttemptStoreRedis
	}
	if c.UserDirectory == "" {
		c.UserDirectory = UserDirectoryPostgres
	}
	if c.AttemptTTL <= 0 {
		c.AttemptTTL = defaultAttemptTTL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.AdminURL = strings.TrimSpace(c.AdminURL); c.AdminURL == "" {
		c.AdminURL = "/admin"
	}
	if c.Locales = normalizeList(c.Locales); len(c.Locales) == 0 {
		c.Locales = []string{"en"}
	}
	c.AzureAD.sanitize()
	c.Cognito.sanitize()
	c.Whitelist.sanitize()
	c.Webhook.sanitize()
	c.JWT.sanitize()
}

// ClaimMappingConfig overrides the JMESPath expressions used to read identity claims
// from a userinfo document. Empty values keep the provider defaults.
type ClaimMappingConfig struct {
	Email         string `env:"EMAIL"`
	EmailVerified string `env:"EMAIL_VERIFIED"`
	GivenName     string `env:"GIVEN_NAME"`
	FamilyName    string `env:"FAMILY_NAME"`
	Username      string `env:"USERNAME"`
	Groups        string `env:"GROUPS"`
}

func (c *ClaimMappingConfig) sanitize() {
	c.Email = strings.TrimSpace(c.Email)
	c.EmailVerified = strings.TrimSpace(c.EmailVerified)
	c.GivenName = strings.TrimSpace(c.GivenName)
	c.FamilyName = strings.TrimSpace(c.FamilyName)
	c.Username = strings.TrimSpace(c.Username)
	c.Groups = strings.TrimSpace(c.Groups)
}

// AzureADConfig contains Azure AD (Microsoft Entra ID) OAuth settings.
type AzureADConfig struct {
	ClientID     string `env:"AZUREAD_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"AZUREAD_OAUTH_CLIENT_SECRET"`
	TenantID     string `env:"AZUREAD_TENANT_ID"`
	RedirectURI  string `env:"AZUREAD_OAUTH_REDIRECT_URI"`
	Scope        string `env:"AZUREAD_SCOPE"               envDefault:"openid email profile"`

	// Roles are the local role ids given to users provisioned through Azure AD.
	Roles []string `env:"AZUREAD_ROLES" envSeparator:","`

	// AuthorityURL and UserInfoURL exist for sovereign clouds and tests.
	AuthorityURL string `env:"AZUREAD_AUTHORITY_URL" envDefault:"https://login.microsoftonline.com"`
	UserInfoURL  string `env:"AZUREAD_USERINFO_URL"  envDefault:"https://graph.microsoft.com/oidc/userinfo"`

	Claims ClaimMappingConfig `envPrefix:"AZUREAD_CLAIM_"`
}

func (c *AzureADConfig) sanitize() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.TenantID = strings.TrimSpace(c.TenantID)
	c.RedirectURI = strings.TrimSpace(c.RedirectURI)
	c.Scope = strings.TrimSpace(c.Scope)
	c.AuthorityURL = strings.TrimRight(strings.TrimSpace(c.AuthorityURL), "/")
	c.UserInfoURL = strings.TrimSpace(c.UserInfoURL)
	c.Roles = normalizeList(c.Roles)
	c.Claims.sanitize()
}

// Validate reports missing mandatory Azure AD settings as a configuration error.
func (c AzureADConfig) Validate() error {
	return requireFields("azuread", []field{
		{"AZUREAD_OAUTH_CLIENT_ID", c.ClientID},
		{"AZUREAD_OAUTH_CLIENT_SECRET", c.ClientSecret},
		{"AZUREAD_TENANT_ID", c.TenantID},
		{"AZUREAD_OAUTH_REDIRECT_URI", c.RedirectURI},
		{"AZUREAD_SCOPE", c.Scope},
	})
}

// CognitoConfig contains AWS Cognito hosted UI OAuth settings.
type CognitoConfig struct {
	ClientID     string `env:"COGNITO_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"COGNITO_OAUTH_CLIENT_SECRET"`
	Domain       string `env:"COGNITO_OAUTH_DOMAIN"`
	Region       string `env:"COGNITO_OAUTH_REGION"`
	RedirectURI  string `env:"COGNITO_OAUTH_REDIRECT_URI"`

	// UserGroup, when set, restricts sign-in to members of this Cognito group.
	UserGroup string `env:"COGNITO_USER_GROUP"`

	// Roles are the local role ids given to users provisioned through Cognito.
	Roles []string `env:"COGNITO_ROLES" envSeparator:","`

	// BaseURL replaces https://{domain}.auth.{region}.amazoncognito.com (custom domains, tests).
	BaseURL string `env:"COGNITO_OAUTH_BASE_URL"`

	Claims ClaimMappingConfig `envPrefix:"COGNITO_CLAIM_"`
}

func (c *CognitoConfig) sanitize() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.Domain = strings.TrimSpace(c.Domain)
	c.Region = strings.TrimSpace(c.Region)
	c.RedirectURI = strings.TrimSpace(c.RedirectURI)
	c.UserGroup = strings.TrimSpace(c.UserGroup)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Roles = normalizeList(c.Roles)
	c.Claims.sanitize()
}

// Validate reports missing mandatory Cognito settings as a configuration error.
func (c CognitoConfig) Validate() error {
	fields := []field{
		{"COGNITO_OAUTH_CLIENT_ID", c.ClientID},
		{"COGNITO_OAUTH_CLIENT_SECRET", c.ClientSecret},
		{"COGNITO_OAUTH_REDIRECT_URI", c.RedirectURI},
	}
	if c.BaseURL == "" {
		fields = append(fields,
			field{"COGNITO_OAUTH_DOMAIN", c.Domain},
			field{"COGNITO_OAUTH_REGION", c.Region},
		)
	}
	return requireFields("cognito", fields)
}

// Endpoint returns the hosted UI base URL.
func (c CognitoConfig) Endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.auth.%s.amazoncognito.com", c.Domain, c.Region)
}

// WhitelistConfig restricts which authenticated emails may sign in.
// Entries are exact addresses ("ops@example.com"), domains ("@example.com")
// or registrable-domain rules ("*.example.com" matches any subdomain).
type WhitelistConfig struct {
	Enabled bool     `env:"SSO_WHITELIST_ENABLED" envDefault:"false"`
	Emails  []string `env:"SSO_WHITELIST_EMAILS"  envSeparator:","`
	// UseDatabase also consults the sso_whitelist table.
	UseDatabase bool `env:"SSO_WHITELIST_USE_DATABASE" envDefault:"false"`
}

func (c *WhitelistConfig) sanitize() {
	entries := normalizeList(c.Emails)
	for i := range entries {
		entries[i] = strings.ToLower(entries[i])
	}
	c.Emails = entries
}

// WebhookConfig controls the user-provisioned webhook.
type WebhookConfig struct {
	URL string `env:"SSO_WEBHOOK_URL"`
	// Secret signs each body with HMAC-SHA256 (X-MMK-Signature) when set.
	Secret     string        `env:"SSO_WEBHOOK_SECRET"`
	Timeout    time.Duration `env:"SSO_WEBHOOK_TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"SSO_WEBHOOK_RETRY_LIMIT" envDefault:"2"`
	// SignIns also posts user.signed_in events, not only user.provisioned.
	SignIns bool `env:"SSO_WEBHOOK_SIGN_INS" envDefault:"false"`
}

func (c *WebhookConfig) sanitize() {
	c.URL = strings.TrimSpace(c.URL)
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
}

// Enabled reports whether a webhook destination is configured.
func (c WebhookConfig) Enabled() bool { return c.URL != "" }

// JWTConfig controls the admin credential issued after sign-in.
type JWTConfig struct {
	Secret string        `env:"SSO_JWT_SECRET,required"`
	TTL    time.Duration `env:"SSO_JWT_TTL"             envDefault:"12h"`
	Issuer string        `env:"SSO_JWT_ISSUER"          envDefault:"mmk-sso"`
}

func (c *JWTConfig) sanitize() {
	if c.TTL <= 0 {
		c.TTL = defaultJWTTTL
	}
	if c.Issuer = strings.TrimSpace(c.Issuer); c.Issuer == "" {
		c.Issuer = "mmk-sso"
	}
}

type field struct {
	name  string
	value string
}

func requireFields(provider string, fields []field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.Configuration("%s: %s required", provider, strings.Join(missing, ", "))
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
