package domain

import "encoding/json"

// SessionStatus mirrors the verification provider's reported session status.
// No statuses are invented locally beyond these five.
type SessionStatus string

const (
	SessionCreated  SessionStatus = "Created"
	SessionPending  SessionStatus = "Pending"
	SessionApproved SessionStatus = "Approved"
	SessionDeclined SessionStatus = "Declined"
	SessionError    SessionStatus = "Error"
)

// VerificationState is the client-visible state of a verification controller.
type VerificationState string

const (
	StateIdle            VerificationState = "idle"
	StateSessionCreating VerificationState = "session_creating"
	StateAwaitingUser    VerificationState = "awaiting_user"
	StatePolling         VerificationState = "polling"
	StateApproved        VerificationState = "approved"
	StateDeclined        VerificationState = "declined"
	StateFailed          VerificationState = "failed"
)

// Terminal reports whether the state permanently ends polling.
func (s VerificationState) Terminal() bool {
	return s == StateApproved || s == StateDeclined || s == StateFailed
}

// ExtractedIdentity holds the attributes the provider extracted from the
// user's documents. Populated only on an approved session.
type ExtractedIdentity struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	DocumentNumber string `json:"document_number,omitempty"`
}

// Complete reports whether the identity carries everything registration
// needs. The document number is optional.
func (e *ExtractedIdentity) Complete() bool {
	return e != nil && e.FirstName != "" && e.LastName != "" && e.DateOfBirth != ""
}

// ProviderSession is what the provider returns on session creation.
type ProviderSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// SessionResult is one poll's view of a provider session. Raw keeps the
// undecoded provider payload for archival.
type SessionResult struct {
	Status   SessionStatus
	Identity *ExtractedIdentity
	Raw      json.RawMessage
}

// VerifiedIdentity is the controller's output on approval, forwarded to the
// next onboarding step.
type VerifiedIdentity struct {
	SessionID      string `json:"session_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	DocumentNumber string `json:"document_number,omitempty"`
}
