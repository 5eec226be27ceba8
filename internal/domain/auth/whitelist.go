package auth

import (
	"strings"
	"time"
)

// WhitelistPatternType says how a whitelist pattern is compared with an email address.
type WhitelistPatternType string

const (
	// PatternEmail matches one address exactly (case-insensitive).
	PatternEmail WhitelistPatternType = "email"
	// PatternDomain matches every address at exactly this domain.
	PatternDomain WhitelistPatternType = "domain"
	// PatternWildcard ("*.example.com") matches the domain and all of its subdomains.
	PatternWildcard WhitelistPatternType = "wildcard"
	// PatternETLDPlusOne matches every address whose registrable domain equals the pattern's.
	PatternETLDPlusOne WhitelistPatternType = "etld_plus_one"
)

// Valid reports whether t is a known pattern type.
func (t WhitelistPatternType) Valid() bool {
	switch t {
	case PatternEmail, PatternDomain, PatternWildcard, PatternETLDPlusOne:
		return true
	default:
		return false
	}
}

// WhitelistEntry is one allow rule.
type WhitelistEntry struct {
	ID          string               `json:"id"           db:"id"`
	Pattern     string               `json:"pattern"      db:"pattern"`
	PatternType WhitelistPatternType `json:"pattern_type" db:"pattern_type"`
	CreatedAt   time.Time            `json:"created_at"   db:"created_at"`
}

// InferWhitelistEntry builds an entry from the short form used in configuration:
// "ops@example.com", "@example.com" or "*.example.com".
func InferWhitelistEntry(raw string) WhitelistEntry {
	p := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(p, "*."):
		return WhitelistEntry{Pattern: p, PatternType: PatternWildcard}
	case strings.HasPrefix(p, "@"):
		return WhitelistEntry{Pattern: strings.TrimPrefix(p, "@"), PatternType: PatternDomain}
	case strings.Contains(p, "@"):
		return WhitelistEntry{Pattern: p, PatternType: PatternEmail}
	default:
		return WhitelistEntry{Pattern: p, PatternType: PatternDomain}
	}
}
