package refcode

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var codeRE = regexp.MustCompile(`^TAL[A-Z2-7]{6}$`)

func TestNew_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := New()
		assert.NoError(t, err)
		assert.True(t, codeRE.MatchString(code), "generated code %q does not match format", code)
		assert.NotEqual(t, AdminCode, code)
	}
}

func TestNew_Dispersion(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code, err := New()
		assert.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 32^6 possible bodies; 1000 draws colliding would point at broken randomness.
	assert.Equal(t, 1000, len(seen))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"generated shape", "TALB7Q2ZX", true},
		{"admin code", "TALADMIN", true},
		{"empty", "", false},
		{"too short", "TALB7Q2", false},
		{"too long", "TALB7Q2ZXA", false},
		{"wrong prefix", "TBLB7Q2ZX", false},
		{"lowercase body", "TALb7q2zx", false},
		{"digit zero", "TAL0AAAAA", false},
		{"digit one", "TAL1AAAAA", false},
		{"digit eight", "TAL8AAAAA", false},
		{"admin with suffix", "TALADMINX", false},
		{"whitespace", "TAL B7Q2Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.code))
		})
	}
}
