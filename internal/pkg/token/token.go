package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSecret generates a cryptographically random 64-character hex secret.
// Used to satisfy the credential store's non-empty-secret requirement when a
// user has not chosen a password yet. Never reused, never logged.
func NewSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
