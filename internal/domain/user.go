package domain

import "time"

// User record statuses. A record is created as pending and flips to verified
// once the identity-verification decision has been attached to it.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// UserRecord is the primary user profile owned by the record store.
// Its existence — not the credential's — defines "registered".
type UserRecord struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	PhoneNumber string    `json:"phone_number" dynamodbav:"phone_number"`
	Email       string    `json:"email,omitempty" dynamodbav:"email"`
	Name        string    `json:"name" dynamodbav:"name"`
	Surname     string    `json:"surname" dynamodbav:"surname"`
	DateOfBirth string    `json:"date_of_birth" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	Status      string    `json:"status" dynamodbav:"status"`               // "pending" | "verified"
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RegisterUserRequest is the input to the registration orchestrator.
// Password is optional: a user arriving from the verification flow has not
// chosen one yet, and a throwaway secret is synthesized for the credential
// store in that case.
type RegisterUserRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Email       string `json:"email" validate:"omitempty,email"`
	Name        string `json:"name" validate:"required"`
	Surname     string `json:"surname" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Password    string `json:"password" validate:"omitempty,min=8,max=72"`
}

// CredentialAttributes is the metadata attached to a credential-store entry,
// linking it back to the user record.
type CredentialAttributes struct {
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number"`
	UserID      string `json:"user_id"`
}

// Identity is the credential store's view of a signed-in principal.
type Identity struct {
	Identifier string `json:"identifier"`
	UserID     string `json:"user_id"`
}
