// Package deeplink parses and builds referral share links and holds a
// referral code captured from a deep link until registration consumes it.
package deeplink

import (
	"net/url"
	"strings"
	"sync"

	"github.com/talowa-org/talowa-backend/pkg/refcode"
)

const (
	// DefaultBase is the public join URL the mobile clients open.
	DefaultBase = "https://talowa.app/join"

	refParam = "ref"
)

// Parse extracts a referral code from a share link. Two shapes are
// recognized: "…/join?ref=CODE" and "…/join/CODE". The empty string is
// returned when the URL carries no well-formed code.
func Parse(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if code := u.Query().Get(refParam); code != "" {
		if refcode.Valid(code) {
			return code
		}
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	if segments[len(segments)-2] != "join" {
		return ""
	}
	code := segments[len(segments)-1]
	if !refcode.Valid(code) {
		return ""
	}
	return code
}

// IsReferralLink reports whether Parse would extract a code from raw.
func IsReferralLink(raw string) bool {
	return Parse(raw) != ""
}

// Build returns the canonical share link for a code. Build and Parse
// round-trip: Parse(Build(c)) == c for every valid c.
func Build(code string) string {
	return DefaultBase + "?" + refParam + "=" + url.QueryEscape(code)
}

// PendingStore holds at most one captured referral code. Set overwrites
// any previous value; Consume returns the stored code and clears it, so
// each captured code is read exactly once.
type PendingStore interface {
	Set(code string)
	Consume() string
}

// MemoryPendingStore is the single-process PendingStore.
type MemoryPendingStore struct {
	mu   sync.Mutex
	code string
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{}
}

func (s *MemoryPendingStore) Set(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
}

func (s *MemoryPendingStore) Consume() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.code
	s.code = ""
	return code
}
