package otp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-onboarding-api/internal/domain"
)

// Service issues one-time codes, delivers them out of band and turns a
// successful validation into a signed-in session for the alternate
// (passwordless) login path.
type Service interface {
	RequestCode(ctx context.Context, identifier string) (string, error)
	ValidateCode(ctx context.Context, identifier, code string) (*LoginResult, error)
}

// LoginResult is returned after a code validates against a known user.
type LoginResult struct {
	Bearer string
	User   *domain.UserRecord
}

type userStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.UserRecord, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type jwtSigner interface {
	Sign(userID, identifier string) (string, error)
}

type service struct {
	store       *Store
	userRepo    userStore
	smsSender   smsSender
	mailer      mailer
	jwtProvider jwtSigner
}

// ServiceDeps wires the service. SMSSender, Mailer and JWTProvider may be
// nil; delivery is then skipped (development mode) and no bearer is issued.
type ServiceDeps struct {
	Store       *Store
	UserRepo    userStore
	SMSSender   smsSender
	Mailer      mailer
	JWTProvider jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:       deps.Store,
		userRepo:    deps.UserRepo,
		smsSender:   deps.SMSSender,
		mailer:      deps.Mailer,
		jwtProvider: deps.JWTProvider,
	}
}

func (s *service) RequestCode(ctx context.Context, identifier string) (string, error) {
	code, err := s.store.Issue(identifier)
	if err != nil {
		return "", err
	}

	if strings.Contains(identifier, "@") {
		if s.mailer != nil {
			if err := s.mailer.SendEmail(identifier, "Your login code", "Your code: "+code); err != nil {
				return "", fmt.Errorf("send code email: %w", err)
			}
		}
	} else if s.smsSender != nil {
		if err := s.smsSender.SendSMS(ctx, identifier, "Your login code: "+code); err != nil {
			return "", fmt.Errorf("send code SMS: %w", err)
		}
	}

	slog.Info("one-time code issued", "identifier", identifier)
	return code, nil
}

func (s *service) ValidateCode(ctx context.Context, identifier, code string) (*LoginResult, error) {
	if err := s.store.Validate(identifier, code); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("no account for identifier: %w", domain.ErrNotFound)
	}

	result := &LoginResult{User: u}
	if s.jwtProvider != nil {
		bearer, err := s.jwtProvider.Sign(u.UserID, identifier)
		if err != nil {
			return nil, err
		}
		result.Bearer = bearer
	}
	return result, nil
}
