package service

import (
	"golang.org/x/text/language"
)

// LocaleNegotiator picks the admin console language for a new user from the
// browser's Accept-Language header.
type LocaleNegotiator struct {
	supported []string
	matcher   language.Matcher
}

// NewLocaleNegotiator builds a negotiator over supported locales; the first
// entry is the fallback. Unparseable entries are skipped.
func NewLocaleNegotiator(supported []string) *LocaleNegotiator {
	var (
		names []string
		tags  []language.Tag
	)
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		names = append(names, s)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		names = []string{"en"}
		tags = []language.Tag{language.English}
	}
	return &LocaleNegotiator{supported: names, matcher: language.NewMatcher(tags)}
}

// Negotiate returns the best supported locale for acceptLanguage, or the fallback.
func (n *LocaleNegotiator) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return n.supported[0]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return n.supported[0]
	}
	_, idx, confidence := n.matcher.Match(tags...)
	if confidence == language.No {
		return n.supported[0]
	}
	return n.supported[idx]
}
