package service

import (
	"slices"
	"strings"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
)

// ResolutionAction tells the orchestrator what to do with a validated identity.
type ResolutionAction string

const (
	// ActionReuseExisting signs in the matching local user unchanged.
	ActionReuseExisting ResolutionAction = "reuse_existing"
	// ActionProvision creates a local user from the identity claims.
	ActionProvision ResolutionAction = "provision"
)

// Resolution is the outcome of ResolveIdentity.
type Resolution struct {
	Action ResolutionAction
	// Existing is set for ActionReuseExisting.
	Existing *domainauth.User
	// NewUser is populated for ActionProvision (Locale is left to the caller).
	NewUser domainauth.NewUser
}

// ResolveIdentity decides between reusing and provisioning a local user.
// A whitelist rejection always wins. A missing role mapping provisions the
// user with no roles. The function performs no I/O.
func ResolveIdentity(
	claims domainauth.IdentityClaims,
	whitelistErr error,
	existing *domainauth.User,
	roles []domainauth.RoleRef,
) (Resolution, error) {
	if whitelistErr != nil {
		return Resolution{}, apperrors.EnsureCode(whitelistErr, apperrors.ErrCodePolicy)
	}
	email := claims.Email
	if strings.TrimSpace(email) == "" {
		return Resolution{}, apperrors.Claim("email not set")
	}
	if existing != nil {
		return Resolution{Action: ActionReuseExisting, Existing: existing}, nil
	}

	if roles == nil {
		roles = []domainauth.RoleRef{}
	}
	return Resolution{
		Action: ActionProvision,
		NewUser: domainauth.NewUser{
			Email:     email,
			FirstName: claims.DisplayName(),
			LastName:  claims.FamilyName,
			Roles:     slices.Clone(roles),
		},
	}, nil
}
