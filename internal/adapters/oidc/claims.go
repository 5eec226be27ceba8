package oidc

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
)

// ClaimPaths holds the JMESPath expressions used to read identity attributes
// out of a userinfo document. Empty paths are skipped.
type ClaimPaths struct {
	Email         string
	EmailVerified string
	GivenName     string
	FamilyName    string
	Username      string
	Groups        string
}

// merge returns p with empty fields filled from defaults.
func (p ClaimPaths) merge(defaults ClaimPaths) ClaimPaths {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) != "" {
			return v
		}
		return d
	}
	return ClaimPaths{
		Email:         pick(p.Email, defaults.Email),
		EmailVerified: pick(p.EmailVerified, defaults.EmailVerified),
		GivenName:     pick(p.GivenName, defaults.GivenName),
		FamilyName:    pick(p.FamilyName, defaults.FamilyName),
		Username:      pick(p.Username, defaults.Username),
		Groups:        pick(p.Groups, defaults.Groups),
	}
}

// AzureADClaimPaths reads the claims returned by the Microsoft Graph OIDC userinfo endpoint.
var AzureADClaimPaths = ClaimPaths{
	Email:      "email",
	GivenName:  "given_name",
	FamilyName: "family_name",
	Username:   "name",
	Groups:     "groups",
}

// CognitoClaimPaths reads the claims returned by the Cognito hosted UI userInfo endpoint.
// Names are left unmapped so new accounts are named after the Cognito username.
var CognitoClaimPaths = ClaimPaths{
	Email:         "email",
	EmailVerified: "email_verified",
	Username:      "username",
	Groups:        `"cognito:groups"`,
}

// ClaimMapper maps a raw userinfo document onto IdentityClaims.
type ClaimMapper struct {
	paths ClaimPaths
}

// NewClaimMapper compiles every non-empty path up front so a bad expression
// fails at startup rather than during a sign-in.
func NewClaimMapper(paths, defaults ClaimPaths) (*ClaimMapper, error) {
	merged := paths.merge(defaults)
	for name, expr := range map[string]string{
		"email":          merged.Email,
		"email_verified": merged.EmailVerified,
		"given_name":     merged.GivenName,
		"family_name":    merged.FamilyName,
		"username":       merged.Username,
		"groups":         merged.Groups,
	} {
		if expr == "" {
			continue
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("claim path %s: %w", name, err)
		}
	}
	return &ClaimMapper{paths: merged}, nil
}

// Map extracts IdentityClaims from raw. Missing attributes are left empty.
func (m *ClaimMapper) Map(raw map[string]any) (domainauth.IdentityClaims, error) {
	var (
		claims domainauth.IdentityClaims
		err    error
	)
	if claims.Email, err = m.text(m.paths.Email, raw); err != nil {
		return claims, err
	}
	if claims.EmailVerified, err = m.text(m.paths.EmailVerified, raw); err != nil {
		return claims, err
	}
	if claims.GivenName, err = m.text(m.paths.GivenName, raw); err != nil {
		return claims, err
	}
	if claims.FamilyName, err = m.text(m.paths.FamilyName, raw); err != nil {
		return claims, err
	}
	if claims.Username, err = m.text(m.paths.Username, raw); err != nil {
		return claims, err
	}
	if claims.Groups, err = m.list(m.paths.Groups, raw); err != nil {
		return claims, err
	}
	claims.Raw = raw
	return claims, nil
}

func (m *ClaimMapper) text(expr string, data any) (string, error) {
	if expr == "" {
		return "", nil
	}
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	// Only JSON strings count; a boolean email_verified must not read as "true".
	s, _ := v.(string)
	return s, nil
}

func (m *ClaimMapper) list(expr string, data any) ([]string, error) {
	if expr == "" {
		return nil, nil
	}
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	case string:
		return []string{val}, nil
	default:
		return nil, nil
	}
}
