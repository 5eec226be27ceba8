package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	assert.Equal(t, MethodS256, m.Method)
	assert.GreaterOrEqual(t, len(m.Verifier), 43)
	assert.NotContains(t, m.Challenge, "=")
	assert.NotContains(t, m.Challenge, "+")
	assert.NotContains(t, m.Challenge, "/")

	sum := sha256.Sum256([]byte(m.Verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), m.Challenge)
	assert.Equal(t, m.Challenge, Challenge(m.Verifier))
}

func TestNew_Unique(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		m := New()
		require.False(t, seen[m.Verifier], "verifier repeated")
		seen[m.Verifier] = true
	}
}

func TestChallenge_RFC7636Vector(t *testing.T) {
	// Appendix B of RFC 7636.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", Challenge(verifier))
}

func TestNewState(t *testing.T) {
	s1 := NewState()
	s2 := NewState()

	assert.NotEqual(t, s1, s2)
	raw, err := base64.RawURLEncoding.DecodeString(s1)
	require.NoError(t, err)
	assert.Len(t, raw, stateBytes)
	assert.False(t, strings.ContainsAny(s1, "=+/"))
}
