// Package credstore abstracts the external credential service used for the
// second half of the dual-write registration. Credentials live outside the
// users table; the user record remains the source of truth for "registered".
package credstore

import (
	"context"

	"github.com/go-onboarding-api/internal/domain"
)

type Store interface {
	// CreateCredential provisions a sign-in credential for identifier.
	// Returns domain.ErrConflict when one already exists.
	CreateCredential(ctx context.Context, identifier, secret string, attrs domain.CredentialAttributes) error

	// SignIn exchanges identifier+secret for an access token.
	SignIn(ctx context.Context, identifier, secret string) (string, error)

	// SignOut revokes an access token. Unknown tokens are not an error.
	SignOut(ctx context.Context, accessToken string) error

	// CurrentIdentity resolves an access token back to its identity.
	CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error)
}
