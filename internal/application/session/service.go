package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-onboarding-api/internal/application/registration"
	"github.com/go-onboarding-api/internal/domain"
)

// Service handles password sign-in against the credential store and the
// current-identity/sign-out surface.
type Service interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	Current(ctx context.Context, userID string) (*domain.UserRecord, error)
}

// LoginResult carries our bearer plus the credential store's own access
// token, which the client needs for sign-out.
type LoginResult struct {
	Bearer      string
	AccessToken string
	User        *domain.UserRecord
}

type userStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.UserRecord, error)
	Get(ctx context.Context, userID string) (*domain.UserRecord, error)
}

type credentialStore interface {
	SignIn(ctx context.Context, identifier, secret string) (string, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error)
}

type jwtSigner interface {
	Sign(userID, identifier string) (string, error)
}

type service struct {
	userRepo    userStore
	credentials credentialStore
	jwtProvider jwtSigner
}

type ServiceDeps struct {
	UserRepo        userStore
	CredentialStore credentialStore
	JWTProvider     jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:    deps.UserRepo,
		credentials: deps.CredentialStore,
		jwtProvider: deps.JWTProvider,
	}
}

func (s *service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	u, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	credID := registration.CredentialIdentifier(u.PhoneNumber, u.Email)
	accessToken, err := s.credentials.SignIn(ctx, credID, password)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	// The credential should point back at the record it was created for.
	// Drift between the two stores is survivable but worth surfacing.
	if ident, err := s.credentials.CurrentIdentity(ctx, accessToken); err == nil {
		if ident.UserID != "" && ident.UserID != u.UserID {
			slog.Warn("credential linked to a different user record",
				"record_user_id", u.UserID, "credential_user_id", ident.UserID)
		}
	}

	result := &LoginResult{AccessToken: accessToken, User: u}
	if s.jwtProvider != nil {
		bearer, err := s.jwtProvider.Sign(u.UserID, identifier)
		if err != nil {
			return nil, err
		}
		result.Bearer = bearer
	}
	return result, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return s.credentials.SignOut(ctx, accessToken)
}

func (s *service) Current(ctx context.Context, userID string) (*domain.UserRecord, error) {
	return s.userRepo.Get(ctx, userID)
}
