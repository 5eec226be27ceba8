package authroles

import (
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
)

// StaticRoleMapper hands out a fixed role list per provider, read from configuration.
// Providers without an entry yield no roles.
type StaticRoleMapper struct {
	Roles map[domainauth.ProviderName][]string
}

// DefaultRolesFor returns fresh RoleRefs so callers may modify the result.
func (m StaticRoleMapper) DefaultRolesFor(provider domainauth.ProviderName) []domainauth.RoleRef {
	ids := m.Roles[provider]
	refs := make([]domainauth.RoleRef, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		refs = append(refs, domainauth.RoleRef{ID: id})
	}
	return refs
}
