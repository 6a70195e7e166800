package domain

// GovernmentRecord is a citizen entry from the government registry, looked up
// by national ID number. Read-only.
type GovernmentRecord struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
}
