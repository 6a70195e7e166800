package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-onboarding-api/internal/domain"
)

// Store keeps live one-time codes in memory, keyed by identifier (phone or
// email). It is an explicitly owned object with no package-level state, so
// tests can run isolated instances in parallel. Access is mutex-guarded:
// issuance for different identifiers never interferes.
type Store struct {
	mu    sync.Mutex
	codes map[string]domain.OneTimeCode
	ttl   time.Duration
	now   func() time.Time
}

// NewStore creates a code store with the given TTL per issued code.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		codes: make(map[string]domain.OneTimeCode),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue generates a uniformly random 6-digit code for the identifier,
// overwriting any existing entry. The code is returned so an out-of-band
// delivery channel (or a dev-mode response) can carry it to the user.
func (s *Store) Issue(identifier string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[identifier] = domain.OneTimeCode{
		Identifier: identifier,
		Code:       code,
		ExpiresAt:  s.now().Add(s.ttl),
	}
	return code, nil
}

// Validate checks the submitted code against the stored one. A match
// consumes the entry (single use); expiry also consumes it, so a later
// attempt reports ErrCodeNotFound rather than ErrCodeExpired. A mismatch
// keeps the entry live so a corrected retry can still succeed.
func (s *Store) Validate(identifier, submitted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[identifier]
	if !ok {
		return domain.ErrCodeNotFound
	}
	if s.now().After(entry.ExpiresAt) {
		delete(s.codes, identifier)
		return domain.ErrCodeExpired
	}
	if entry.Code != submitted {
		return domain.ErrCodeMismatch
	}
	delete(s.codes, identifier)
	return nil
}
