package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleNegotiator(t *testing.T) {
	n := NewLocaleNegotiator([]string{"en", "ja"})

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ja-JP,ja;q=0.9,en;q=0.8", "ja"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR", "en"},
		{"ja;q=0.5,en;q=0.9", "en"},
		{";;;=", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Negotiate(tt.header))
		})
	}
}

func TestLocaleNegotiator_FallbackIsFirstSupported(t *testing.T) {
	n := NewLocaleNegotiator([]string{"ja", "en"})
	assert.Equal(t, "ja", n.Negotiate(""))
	assert.Equal(t, "ja", n.Negotiate("de-DE"))
}

func TestLocaleNegotiator_SkipsInvalidEntries(t *testing.T) {
	n := NewLocaleNegotiator([]string{"not a locale!!"})
	assert.Equal(t, "en", n.Negotiate("ja"))
}
