// Package refcode defines the TALOWA referral code format and random
// generation of new code bodies. A code is the fixed prefix "TAL" followed
// by six symbols from a 32-symbol alphabet, or the reserved admin code.
package refcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	Prefix  = "TAL"
	BodyLen = 6

	// AdminCode is the universal fallback referrer. It is provisioned by
	// the bootstrap command and never produced by NewBody.
	AdminCode = "TALADMIN"

	// alphabet keeps the digits 0 and 1 out of codes; they read as O and I.
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
)

// New returns a freshly generated full code, prefix included.
func New() (string, error) {
	body, err := NewBody()
	if err != nil {
		return "", err
	}
	return Prefix + body, nil
}

// NewBody draws BodyLen random symbols from the code alphabet.
func NewBody() (string, error) {
	buf := make([]byte, BodyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf), nil
}

// Valid reports whether s is a well-formed referral code: exactly the
// prefix plus BodyLen alphabet symbols, or the admin code itself.
func Valid(s string) bool {
	if s == AdminCode {
		return true
	}
	if len(s) != len(Prefix)+BodyLen {
		return false
	}
	if !strings.HasPrefix(s, Prefix) {
		return false
	}
	for _, r := range s[len(Prefix):] {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
