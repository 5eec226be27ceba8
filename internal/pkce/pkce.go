// Package pkce generates PKCE verifier/challenge pairs and anti-CSRF state tokens.
package pkce

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// MethodS256 is the only challenge method this service sends.
const MethodS256 = "S256"

// stateBytes is the amount of entropy behind a state token (256 bits).
const stateBytes = 32

// Material is one PKCE verifier with its derived challenge.
type Material struct {
	Verifier  string
	Challenge string
	Method    string
}

// New returns a fresh verifier (32 random bytes, base64url, 43 chars) and its
// S256 challenge. It panics if the system entropy source fails.
func New() Material {
	verifier := oauth2.GenerateVerifier()
	return Material{
		Verifier:  verifier,
		Challenge: Challenge(verifier),
		Method:    MethodS256,
	}
}

// Challenge derives the S256 challenge: base64url(SHA-256(verifier)) without padding.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// NewState returns a 256-bit random, base64url-encoded state token.
// It panics if the system entropy source fails.
func NewState() string {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		panic("pkce: entropy source failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
