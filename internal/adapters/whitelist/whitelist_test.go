package whitelist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	mocks "github.com/target/mmk-sso/internal/mocks/auth"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		pattern string
		typ     domainauth.WhitelistPatternType
		want    bool
	}{
		{"email exact", "Jane@Example.com", "jane@example.com", domainauth.PatternEmail, true},
		{"email different", "john@example.com", "jane@example.com", domainauth.PatternEmail, false},
		{"domain", "jane@example.com", "example.com", domainauth.PatternDomain, true},
		{"domain with at", "jane@example.com", "@example.com", domainauth.PatternDomain, true},
		{"domain excludes subdomain", "jane@mail.example.com", "example.com", domainauth.PatternDomain, false},
		{"wildcard base", "jane@example.com", "*.example.com", domainauth.PatternWildcard, true},
		{"wildcard subdomain", "jane@eu.mail.example.com", "*.example.com", domainauth.PatternWildcard, true},
		{"wildcard partial suffix", "jane@badexample.com", "*.example.com", domainauth.PatternWildcard, false},
		{"etld+1 subdomain", "jane@mail.example.co.uk", "example.co.uk", domainauth.PatternETLDPlusOne, true},
		{"etld+1 sibling", "jane@other.co.uk", "example.co.uk", domainauth.PatternETLDPlusOne, false},
		{"etld+1 from subdomain pattern", "jane@example.com", "corp.example.com", domainauth.PatternETLDPlusOne, true},
		{"no domain", "jane", "example.com", domainauth.PatternDomain, false},
		{"empty email", "", "example.com", domainauth.PatternDomain, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.email, domainauth.WhitelistEntry{Pattern: tt.pattern, PatternType: tt.typ})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhitelist_Disabled(t *testing.T) {
	w := New(Options{Enabled: false})
	assert.NoError(t, w.Check(context.Background(), "anyone@anywhere.test"))
}

func TestWhitelist_StaticEntries(t *testing.T) {
	w := New(Options{Enabled: true, Entries: []string{"ops@example.com", "@corp.example", " "}})
	ctx := context.Background()

	assert.NoError(t, w.Check(ctx, "ops@example.com"))
	assert.NoError(t, w.Check(ctx, "anyone@corp.example"))

	err := w.Check(ctx, "dev@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePolicy, apperrors.GetCode(err))
	assert.Equal(t, ErrNotWhitelisted, err.Error())
}

func TestWhitelist_EnabledButEmptyRejects(t *testing.T) {
	w := New(Options{Enabled: true})
	assert.Error(t, w.Check(context.Background(), "ops@example.com"))
}

func TestWhitelist_RepositoryEntries(t *testing.T) {
	repo := mocks.NewMemoryWhitelistRepo()
	_, err := repo.Add(context.Background(), domainauth.WhitelistEntry{
		Pattern:     "example.co.uk",
		PatternType: domainauth.PatternETLDPlusOne,
	})
	require.NoError(t, err)

	w := New(Options{Enabled: true, Repo: repo})
	assert.NoError(t, w.Check(context.Background(), "jane@mail.example.co.uk"))
	assert.Error(t, w.Check(context.Background(), "jane@example.com"))
}

func TestWhitelist_RepositoryFailure(t *testing.T) {
	repo := mocks.NewMemoryWhitelistRepo()
	repo.ListErr = errors.New("db down")

	w := New(Options{Enabled: true, Repo: repo})
	err := w.Check(context.Background(), "jane@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePolicy, apperrors.GetCode(err))
	assert.ErrorIs(t, err, repo.ListErr)
}
