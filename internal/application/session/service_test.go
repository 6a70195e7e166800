package session

import (
	"context"
	"errors"
	"testing"

	"github.com/go-onboarding-api/internal/application/registration"
	"github.com/go-onboarding-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.UserRecord, error) {
	args := m.Called(ctx, identifier)
	if u, _ := args.Get(0).(*domain.UserRecord); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.UserRecord, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.UserRecord); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCredentialStore struct{ mock.Mock }

func (m *mockCredentialStore) SignIn(ctx context.Context, identifier, secret string) (string, error) {
	args := m.Called(ctx, identifier, secret)
	return args.String(0), args.Error(1)
}

func (m *mockCredentialStore) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *mockCredentialStore) CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	args := m.Called(ctx, accessToken)
	if i, _ := args.Get(0).(*domain.Identity); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, identifier string) (string, error) {
	args := m.Called(userID, identifier)
	return args.String(0), args.Error(1)
}

// --- tests ---

func TestLogin_PhoneUserSignsInViaPlaceholderIdentifier(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByIdentifier", mock.Anything, "+15551234567").
		Return(&domain.UserRecord{UserID: "u1", PhoneNumber: "+15551234567"}, nil)

	credID := registration.CredentialIdentifier("+15551234567", "")
	cs := &mockCredentialStore{}
	cs.On("SignIn", mock.Anything, credID, "pass-word").Return("access-1", nil)
	cs.On("CurrentIdentity", mock.Anything, "access-1").
		Return(&domain.Identity{Identifier: credID, UserID: "u1"}, nil)

	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", "+15551234567").Return("bearer-1", nil)

	svc := NewService(ServiceDeps{UserRepo: us, CredentialStore: cs, JWTProvider: jwt})
	result, err := svc.Login(context.Background(), "+15551234567", "pass-word")

	require.NoError(t, err)
	assert.Equal(t, "bearer-1", result.Bearer)
	assert.Equal(t, "access-1", result.AccessToken)
	cs.AssertExpectations(t)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByIdentifier", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := NewService(ServiceDeps{UserRepo: us, CredentialStore: &mockCredentialStore{}})
	_, err := svc.Login(context.Background(), "ghost@example.com", "x")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_BadPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByIdentifier", mock.Anything, "ann@example.com").
		Return(&domain.UserRecord{UserID: "u1", PhoneNumber: "+15551234567", Email: "ann@example.com"}, nil)

	cs := &mockCredentialStore{}
	cs.On("SignIn", mock.Anything, "ann@example.com", "wrong").
		Return("", errors.New("invalid login credentials"))

	svc := NewService(ServiceDeps{UserRepo: us, CredentialStore: cs})
	_, err := svc.Login(context.Background(), "ann@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout_EmptyTokenIsNoOp(t *testing.T) {
	cs := &mockCredentialStore{}
	svc := NewService(ServiceDeps{CredentialStore: cs})

	require.NoError(t, svc.Logout(context.Background(), ""))
	cs.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
}

func TestLogout_DelegatesToCredentialStore(t *testing.T) {
	cs := &mockCredentialStore{}
	cs.On("SignOut", mock.Anything, "access-1").Return(nil)

	svc := NewService(ServiceDeps{CredentialStore: cs})
	require.NoError(t, svc.Logout(context.Background(), "access-1"))
	cs.AssertExpectations(t)
}

func TestCurrent_ReturnsRecord(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.UserRecord{UserID: "u1"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	u, err := svc.Current(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
}
