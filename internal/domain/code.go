package domain

import "time"

// OneTimeCode is a short-lived 6-digit login/verification factor keyed by a
// phone number or email. At most one live code exists per identifier; a new
// issuance overwrites any prior one.
type OneTimeCode struct {
	Identifier string
	Code       string
	ExpiresAt  time.Time
}
