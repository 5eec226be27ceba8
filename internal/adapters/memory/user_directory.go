package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
)

// UserDirectory keeps admin users in process memory. Users never expire;
// everything is lost on restart.
type UserDirectory struct {
	mu  sync.Mutex // serializes Provision so one email maps to one user
	c   *gocache.Cache
	now func() time.Time
}

var _ ports.UserDirectory = (*UserDirectory)(nil)

// NewUserDirectory creates an empty in-memory directory.
func NewUserDirectory() *UserDirectory {
	return &UserDirectory{c: gocache.New(gocache.NoExpiration, 0), now: time.Now}
}

// FindByEmail returns the user registered under exactly email, or nil.
func (d *UserDirectory) FindByEmail(_ context.Context, email string) (*domainauth.User, error) {
	v, ok := d.c.Get(email)
	if !ok {
		return nil, nil
	}
	u := v.(domainauth.User)
	u.Roles = slices.Clone(u.Roles)
	return &u, nil
}

// Provision creates the user, or returns the existing one with created=false
// when the email is already registered.
func (d *UserDirectory) Provision(_ context.Context, in domainauth.NewUser) (*domainauth.User, bool, error) {
	email := in.Email
	if strings.TrimSpace(email) == "" {
		return nil, false, errors.New("email is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if v, ok := d.c.Get(email); ok {
		u := v.(domainauth.User)
		u.Roles = slices.Clone(u.Roles)
		return &u, false, nil
	}

	u := domainauth.User{
		ID:              uuid.NewString(),
		Email:           email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		PreferredLocale: in.Locale,
		Roles:           slices.Clone(in.Roles),
		IsActive:        true,
		CreatedAt:       d.now().UTC(),
	}
	d.c.Set(email, u, gocache.NoExpiration)
	return &u, true, nil
}
