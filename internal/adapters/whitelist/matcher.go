package whitelist

import (
	"strings"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"golang.org/x/net/publicsuffix"
)

// Match checks if email satisfies a single whitelist entry.
func Match(email string, entry domainauth.WhitelistEntry) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	pattern := strings.ToLower(strings.TrimSpace(entry.Pattern))
	if email == "" || pattern == "" {
		return false
	}

	switch entry.PatternType {
	case domainauth.PatternEmail:
		return email == pattern
	case domainauth.PatternDomain:
		return domainOf(email) == strings.TrimPrefix(pattern, "@")
	case domainauth.PatternWildcard:
		return matchWildcard(domainOf(email), pattern)
	case domainauth.PatternETLDPlusOne:
		return matchETLDPlusOne(domainOf(email), pattern)
	default:
		return email == pattern
	}
}

// MatchAny checks if email satisfies any of the entries.
func MatchAny(email string, entries []domainauth.WhitelistEntry) bool {
	for i := range entries {
		if Match(email, entries[i]) {
			return true
		}
	}
	return false
}

func domainOf(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

// matchWildcard matches "*.example.com" against example.com and any subdomain of it.
func matchWildcard(domain, pattern string) bool {
	if domain == "" {
		return false
	}
	base := strings.TrimPrefix(pattern, "*.")
	if base == "" || base == pattern {
		return domain == pattern
	}
	if domain == base {
		return true
	}
	return strings.HasSuffix(domain, "."+base)
}

// matchETLDPlusOne compares registrable domains, so "example.co.uk" admits
// "mail.example.co.uk" but not "other.co.uk".
func matchETLDPlusOne(domain, pattern string) bool {
	if domain == "" {
		return false
	}
	if domain == pattern {
		return true
	}
	d := etldPlusOne(domain)
	return d != "" && d == etldPlusOne(pattern)
}

func etldPlusOne(domain string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return ""
	}
	return etld1
}
