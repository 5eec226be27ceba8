// Package jwtissuer issues the signed admin credential handed to the console after sign-in.
package jwtissuer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
)

const minSecretLen = 32

// Claims is the payload of an admin credential.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Options configures Issuer.
type Options struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Now    func() time.Time // Optional, defaults to time.Now
}

// Issuer signs HS256 credentials.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

var _ ports.TokenIssuer = (*Issuer)(nil)

// New creates an Issuer. The secret must be at least 32 bytes.
func New(opts Options) (*Issuer, error) {
	if len(opts.Secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}
	if opts.TTL <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: opts.Secret, ttl: opts.TTL, issuer: opts.Issuer, now: now}, nil
}

func (i *Issuer) Issue(_ context.Context, user domainauth.User) (domainauth.Credential, error) {
	if user.ID == "" {
		return domainauth.Credential{}, errors.New("user id is required")
	}
	now := i.now()
	exp := now.Add(i.ttl)
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.ID)
	}
	claims := Claims{
		Email: user.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("sign credential: %w", err)
	}
	return domainauth.Credential{Token: signed, ExpiresAt: exp}, nil
}

// Verify parses and validates a credential issued by i.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}
	return claims, nil
}
