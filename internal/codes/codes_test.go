package codes

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVoucherCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^EAT-[` + alphabet + `]{6}$`)
	for i := 0; i < 100; i++ {
		code := NewVoucherCode()
		assert.Regexp(t, pattern, code)
		for _, ambiguous := range "01OIL" {
			assert.NotContains(t, code[4:], string(ambiguous))
		}
	}
}

func TestNewPickupCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewPickupCode()
		assert.Len(t, code, 8)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(alphabet, ch), "unexpected character %q", ch)
		}
	}
}

func TestNewQRTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := NewQRToken()
		assert.NotEmpty(t, token)
		_, dup := seen[token]
		assert.False(t, dup, "duplicate token %s", token)
		seen[token] = struct{}{}
	}
}
