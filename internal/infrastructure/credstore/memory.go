package credstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-onboarding-api/internal/domain"
	"github.com/go-onboarding-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// MemoryStore is an in-process credential store used when no external
// credential service is configured (local development, tests). Secrets are
// bcrypt-hashed; access tokens are random and live until sign-out or
// process exit.
type MemoryStore struct {
	mu          sync.Mutex
	credentials map[string]memoryCredential
	sessions    map[string]string // access token -> identifier
}

type memoryCredential struct {
	hash  []byte
	attrs domain.CredentialAttributes
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: make(map[string]memoryCredential),
		sessions:    make(map[string]string),
	}
}

func (s *MemoryStore) CreateCredential(ctx context.Context, identifier, secret string, attrs domain.CredentialAttributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[identifier]; ok {
		return fmt.Errorf("credential for %s already exists: %w", identifier, domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}
	s.credentials[identifier] = memoryCredential{hash: hash, attrs: attrs}
	return nil
}

func (s *MemoryStore) SignIn(ctx context.Context, identifier, secret string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.credentials[identifier]
	if !ok {
		return "", fmt.Errorf("unknown credential: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(secret)); err != nil {
		return "", fmt.Errorf("secret mismatch: %w", domain.ErrUnauthorized)
	}

	accessToken, err := token.NewSecret()
	if err != nil {
		return "", err
	}
	s.sessions[accessToken] = identifier
	return accessToken, nil
}

func (s *MemoryStore) SignOut(ctx context.Context, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accessToken)
	return nil
}

func (s *MemoryStore) CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identifier, ok := s.sessions[accessToken]
	if !ok {
		return nil, fmt.Errorf("unknown access token: %w", domain.ErrUnauthorized)
	}
	cred := s.credentials[identifier]
	return &domain.Identity{Identifier: identifier, UserID: cred.attrs.UserID}, nil
}
