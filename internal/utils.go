package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// SafeMap is an in-memory visited set.
type SafeMap struct {
	mu sync.Mutex
	v  map[string]bool
}

func NewSafeMap() *SafeMap {
	return &SafeMap{v: make(map[string]bool)}
}

// Contains reports whether url was seen before and marks it as seen.
func (s *SafeMap) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v[url] {
		return true // Already visited
	}
	s.v[url] = true
	return false // New URL
}

// Visit is Contains behind the engine's visited-set interface.
func (s *SafeMap) Visit(_ context.Context, url string) (bool, error) {
	return s.Contains(url), nil
}

// HashURL returns the hex SHA-256 of a URL, used for fixed-size store keys.
func HashURL(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(h[:])
}
