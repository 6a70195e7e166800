package credstore

import (
	"context"
	"testing"

	"github.com/go-onboarding-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndSignIn(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	attrs := domain.CredentialAttributes{DisplayName: "Ann Lee", PhoneNumber: "+15551234567", UserID: "u1"}

	require.NoError(t, s.CreateCredential(ctx, "ann@example.com", "secret-pass", attrs))

	token, err := s.SignIn(ctx, "ann@example.com", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	ident, err := s.CurrentIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", ident.Identifier)
	assert.Equal(t, "u1", ident.UserID)
}

func TestMemoryStore_DuplicateCredentialConflicts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateCredential(ctx, "ann@example.com", "a", domain.CredentialAttributes{}))
	err := s.CreateCredential(ctx, "ann@example.com", "b", domain.CredentialAttributes{})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMemoryStore_WrongSecret(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateCredential(ctx, "ann@example.com", "right", domain.CredentialAttributes{}))

	_, err := s.SignIn(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = s.SignIn(ctx, "ghost@example.com", "right")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMemoryStore_SignOutRevokesToken(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateCredential(ctx, "ann@example.com", "secret-pass", domain.CredentialAttributes{}))
	token, err := s.SignIn(ctx, "ann@example.com", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, s.SignOut(ctx, token))
	_, err = s.CurrentIdentity(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Signing out twice is harmless.
	require.NoError(t, s.SignOut(ctx, token))
}
