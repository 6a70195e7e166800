// Package govregistry is a stand-in for the official identity registry.
// It answers national-id lookups with either a seeded record or data
// synthesized deterministically from the id, so repeated queries for the
// same id always agree.
package govregistry

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-onboarding-api/internal/domain"
)

var firstNames = []string{"Michael", "Sarah", "David", "Emily", "Robert", "Lisa", "James", "Maria", "Christopher", "Jennifer"}

var lastNames = []string{"Brown", "Davis", "Wilson", "Moore", "Taylor", "Anderson", "Martinez", "Jackson", "White", "Harris"}

var seeded = map[string]domain.GovernmentRecord{
	"NID1234567890": {
		FirstName:   "John",
		LastName:    "Doe",
		DateOfBirth: "1990-05-15",
		PhoneNumber: "+1234567890",
		Email:       "john.doe@example.com",
	},
	"NID0987654321": {
		FirstName:   "Jane",
		LastName:    "Smith",
		DateOfBirth: "1985-03-22",
		PhoneNumber: "+1987654321",
	},
	"NID5555555555": {
		FirstName:   "Alice",
		LastName:    "Johnson",
		DateOfBirth: "1992-11-08",
		PhoneNumber: "+1555555555",
		Email:       "alice.j@example.com",
	},
}

type Registry struct{}

func NewRegistry() *Registry {
	return &Registry{}
}

// Lookup returns the record for a national id. Unknown ids get a record
// synthesized from the id's trailing digits, identical on every call.
func (r *Registry) Lookup(ctx context.Context, nationalID string) (*domain.GovernmentRecord, error) {
	if rec, ok := seeded[nationalID]; ok {
		out := rec
		return &out, nil
	}

	seed := idSeed(nationalID)
	first := firstNames[seed%len(firstNames)]
	last := lastNames[(seed*7)%len(lastNames)]

	rec := &domain.GovernmentRecord{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: fmt.Sprintf("%d-%02d-%02d", 1980+seed%30, seed%12+1, seed%28+1),
		PhoneNumber: fmt.Sprintf("+1%010d", 1000000000+seed),
	}
	if seed%2 == 0 {
		rec.Email = fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last))
	}
	return rec, nil
}

// idSeed reduces a national id to its last six digits, defaulting when the
// id carries no digits at all.
func idSeed(nationalID string) int {
	var digits strings.Builder
	for _, r := range nationalID {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 123456
	}
	return n
}
