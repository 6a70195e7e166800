package registration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-onboarding-api/internal/domain"
	"github.com/go-onboarding-api/internal/pkg/token"
)

// placeholderDomain is a reserved namespace for credential identifiers
// synthesized from phone numbers. The .invalid TLD guarantees the address is
// never externally routable.
const placeholderDomain = "phone.onboarding.invalid"

// Service performs the dual-write registration: a user record in the record
// store, then a best-effort credential in the credential store.
type Service interface {
	Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserRecord, error)
}

type recordStore interface {
	// Create returns domain.ErrConflict (wrapped) when a record with the same
	// phone number or email already exists.
	Create(ctx context.Context, rec *domain.UserRecord) (*domain.UserRecord, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.UserRecord, error)
}

type credentialStore interface {
	// CreateCredential returns domain.ErrConflict (wrapped) when a credential
	// for the identifier already exists.
	CreateCredential(ctx context.Context, identifier, secret string, attrs domain.CredentialAttributes) error
}

type service struct {
	records     recordStore
	credentials credentialStore
}

type ServiceDeps struct {
	RecordStore     recordStore
	CredentialStore credentialStore
}

func NewService(deps ServiceDeps) Service {
	return &service{records: deps.RecordStore, credentials: deps.CredentialStore}
}

// Register is idempotent with respect to the record store: a duplicate call
// for the same identifier resolves to the existing record and still reports
// success. The credential write is best-effort — the record's existence, not
// the credential's, defines "registered".
func (s *service) Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserRecord, error) {
	rec := &domain.UserRecord{
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Name:        req.Name,
		Surname:     req.Surname,
		DateOfBirth: req.DateOfBirth,
		Status:      domain.StatusPending,
	}

	created, err := s.records.Create(ctx, rec)
	switch {
	case errors.Is(err, domain.ErrConflict):
		existing, lookupErr := s.records.GetByIdentifier(ctx, req.PhoneNumber)
		if lookupErr != nil || existing == nil {
			return nil, fmt.Errorf("user already exists but could not retrieve record: %w", domain.ErrReconciliation)
		}
		created = existing
	case err != nil:
		return nil, err
	}

	secret := req.Password
	if secret == "" {
		secret, err = token.NewSecret()
		if err != nil {
			return nil, err
		}
	}

	credID := CredentialIdentifier(req.PhoneNumber, req.Email)
	attrs := domain.CredentialAttributes{
		DisplayName: req.Name + " " + req.Surname,
		PhoneNumber: req.PhoneNumber,
		UserID:      created.UserID,
	}
	if err := s.credentials.CreateCredential(ctx, credID, secret, attrs); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			slog.Info("credential already exists, user record stands", "user_id", created.UserID)
		} else {
			slog.Warn("credential creation failed, user record stands", "user_id", created.UserID, "err", err)
		}
	}

	return created, nil
}

// CredentialIdentifier picks the login identifier for the credential store:
// the user's email when one exists, otherwise a deterministic placeholder
// address hashed from the phone number. Hashing keeps distinct numbers from
// ever colliding after normalization, and repeated calls for the same number
// always target the same placeholder identity.
func CredentialIdentifier(phoneNumber, email string) string {
	if email != "" {
		return email
	}
	sum := sha256.Sum256([]byte(phoneNumber))
	return hex.EncodeToString(sum[:])[:24] + "@" + placeholderDomain
}
