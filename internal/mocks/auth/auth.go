// Package auth contains simple hand-written test doubles for sign-in ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.ProviderAdapter     = (*FakeProvider)(nil)
	_ ports.AttemptStore        = (*MemoryAttemptStore)(nil)
	_ ports.UserDirectory       = (*MemoryUserDirectory)(nil)
	_ ports.WhitelistRepository = (*MemoryWhitelistRepo)(nil)
	_ ports.TokenIssuer         = (*StaticTokenIssuer)(nil)
)

// FakeProvider simulates an IdP adapter. Zero-value funcs return a verified
// identity for DefaultClaims.
type FakeProvider struct {
	ProviderName domainauth.ProviderName
	AuthBaseURL  string

	TokenExchangeFunc func(ctx context.Context, code, verifier string) (domainauth.TokenSet, error)
	FetchIdentityFunc func(ctx context.Context, accessToken string) (domainauth.IdentityClaims, error)
	ValidateFunc      func(tokens domainauth.TokenSet, claims domainauth.IdentityClaims) error

	DefaultClaims domainauth.IdentityClaims

	exchangeCalls atomic.Int32
	identityCalls atomic.Int32
	mu            sync.Mutex
	lastVerifier  string
}

// NewFakeProvider creates a FakeProvider with sensible defaults.
func NewFakeProvider(name domainauth.ProviderName) *FakeProvider {
	return &FakeProvider{
		ProviderName: name,
		AuthBaseURL:  "https://mock-idp/authorize",
		DefaultClaims: domainauth.IdentityClaims{
			Email:         "mock.user@example.com",
			EmailVerified: "true",
			GivenName:     "Mock",
			FamilyName:    "User",
		},
	}
}

func (f *FakeProvider) Name() domainauth.ProviderName { return f.ProviderName }

func (f *FakeProvider) AuthorizeURL(challenge, state string) string {
	return fmt.Sprintf("%s?code_challenge=%s&code_challenge_method=S256&state=%s", f.AuthBaseURL, challenge, state)
}

func (f *FakeProvider) TokenExchange(ctx context.Context, code, verifier string) (domainauth.TokenSet, error) {
	f.exchangeCalls.Add(1)
	f.mu.Lock()
	f.lastVerifier = verifier
	f.mu.Unlock()
	if f.TokenExchangeFunc != nil {
		return f.TokenExchangeFunc(ctx, code, verifier)
	}
	return domainauth.TokenSet{AccessToken: "access-" + code, Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *FakeProvider) FetchIdentity(ctx context.Context, accessToken string) (domainauth.IdentityClaims, error) {
	f.identityCalls.Add(1)
	if f.FetchIdentityFunc != nil {
		return f.FetchIdentityFunc(ctx, accessToken)
	}
	return f.DefaultClaims, nil
}

func (f *FakeProvider) Validate(tokens domainauth.TokenSet, claims domainauth.IdentityClaims) error {
	if f.ValidateFunc != nil {
		return f.ValidateFunc(tokens, claims)
	}
	return nil
}

// ExchangeCalls reports how many token exchanges were attempted.
func (f *FakeProvider) ExchangeCalls() int { return int(f.exchangeCalls.Load()) }

// IdentityCalls reports how many userinfo fetches were attempted.
func (f *FakeProvider) IdentityCalls() int { return int(f.identityCalls.Load()) }

// LastVerifier returns the PKCE verifier sent with the most recent exchange.
func (f *FakeProvider) LastVerifier() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastVerifier
}

// MemoryAttemptStore is an in-memory attempt store for unit tests.
type MemoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[ports.AttemptKey]domainauth.AuthAttempt
	SaveErr  error
}

// NewMemoryAttemptStore creates a new in-memory attempt store.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{attempts: make(map[ports.AttemptKey]domainauth.AuthAttempt)}
}

func (m *MemoryAttemptStore) Save(_ context.Context, key ports.AttemptKey, attempt domainauth.AuthAttempt) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if key.SessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[key] = attempt
	return nil
}

func (m *MemoryAttemptStore) Take(_ context.Context, key ports.AttemptKey) (domainauth.AuthAttempt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[key]
	delete(m.attempts, key)
	return a, ok, nil
}

// Peek returns the stored attempt without consuming it.
func (m *MemoryAttemptStore) Peek(key ports.AttemptKey) (domainauth.AuthAttempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[key]
	return a, ok
}

// MemoryUserDirectory keeps users in a map keyed by exact email.
type MemoryUserDirectory struct {
	mu         sync.Mutex
	users      map[string]domainauth.User
	provisions int
	nextID     int

	FindErr      error
	ProvisionErr error
}

// NewMemoryUserDirectory creates an empty directory.
func NewMemoryUserDirectory(seed ...domainauth.User) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]domainauth.User)}
	for _, u := range seed {
		d.users[u.Email] = u
	}
	return d
}

func (d *MemoryUserDirectory) FindByEmail(_ context.Context, email string) (*domainauth.User, error) {
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *MemoryUserDirectory) Provision(_ context.Context, in domainauth.NewUser) (*domainauth.User, bool, error) {
	if d.ProvisionErr != nil {
		return nil, false, d.ProvisionErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[in.Email]; ok {
		return &u, false, nil
	}
	d.nextID++
	d.provisions++
	u := domainauth.User{
		ID:              fmt.Sprintf("user-%d", d.nextID),
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		PreferredLocale: in.Locale,
		Roles:           in.Roles,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}
	d.users[in.Email] = u
	return &u, true, nil
}

// Provisions reports how many users were created.
func (d *MemoryUserDirectory) Provisions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.provisions
}

// MemoryWhitelistRepo stores whitelist entries in memory.
type MemoryWhitelistRepo struct {
	mu      sync.Mutex
	entries []domainauth.WhitelistEntry
	ListErr error
}

// NewMemoryWhitelistRepo creates an empty repository.
func NewMemoryWhitelistRepo() *MemoryWhitelistRepo { return &MemoryWhitelistRepo{} }

func (r *MemoryWhitelistRepo) List(context.Context) ([]domainauth.WhitelistEntry, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domainauth.WhitelistEntry(nil), r.entries...), nil
}

func (r *MemoryWhitelistRepo) Add(_ context.Context, e domainauth.WhitelistEntry) (*domainauth.WhitelistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Pattern = strings.ToLower(strings.TrimSpace(e.Pattern))
	for _, existing := range r.entries {
		if existing.Pattern == e.Pattern {
			return nil, ErrConflict
		}
	}
	e.ID = fmt.Sprintf("wl-%d", len(r.entries)+1)
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, e)
	return &e, nil
}

func (r *MemoryWhitelistRepo) Remove(_ context.Context, pattern string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	for i, e := range r.entries {
		if e.Pattern == pattern {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// StaticTokenIssuer returns "token-<userID>" credentials.
type StaticTokenIssuer struct {
	TTL time.Duration
	Err error
}

func (s StaticTokenIssuer) Issue(_ context.Context, user domainauth.User) (domainauth.Credential, error) {
	if s.Err != nil {
		return domainauth.Credential{}, s.Err
	}
	ttl := s.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return domainauth.Credential{Token: "token-" + user.ID, ExpiresAt: time.Now().Add(ttl)}, nil
}

// ErrConflict is returned by mocks when a unique key already exists.
var ErrConflict = errors.New("conflict")
