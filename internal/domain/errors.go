package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrReconciliation is returned when the record store reports a duplicate
	// but the conflicting record cannot be retrieved. The registration flow
	// surfaces this instead of guessing, because it is the one divergence it
	// cannot resolve on its own.
	ErrReconciliation = errors.New("record reported as duplicate but not retrievable")
)

// One-time-code validation outcomes. Each is distinct so the caller can
// message the user precisely.
var (
	ErrCodeNotFound = errors.New("no code issued for identifier")
	ErrCodeExpired  = errors.New("code expired")
	ErrCodeMismatch = errors.New("code does not match")
)
