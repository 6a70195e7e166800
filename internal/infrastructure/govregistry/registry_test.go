package govregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_SeededRecord(t *testing.T) {
	r := NewRegistry()

	rec, err := r.Lookup(context.Background(), "NID1234567890")

	require.NoError(t, err)
	assert.Equal(t, "John", rec.FirstName)
	assert.Equal(t, "Doe", rec.LastName)
	assert.Equal(t, "1990-05-15", rec.DateOfBirth)
	assert.Equal(t, "john.doe@example.com", rec.Email)
}

func TestLookup_SeededRecordWithoutEmail(t *testing.T) {
	r := NewRegistry()

	rec, err := r.Lookup(context.Background(), "NID0987654321")

	require.NoError(t, err)
	assert.Equal(t, "Jane", rec.FirstName)
	assert.Empty(t, rec.Email)
}

func TestLookup_SynthesizedIsDeterministic(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	a, err := r.Lookup(ctx, "NID7777712345")
	require.NoError(t, err)
	b, err := r.Lookup(ctx, "NID7777712345")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.FirstName)
	assert.NotEmpty(t, a.LastName)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, a.DateOfBirth)
	assert.Regexp(t, `^\+1\d{10}$`, a.PhoneNumber)
}

func TestLookup_DifferentIdsDiffer(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	a, err := r.Lookup(ctx, "NID000000111111")
	require.NoError(t, err)
	b, err := r.Lookup(ctx, "NID000000222222")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLookup_NonNumericIdUsesDefaultSeed(t *testing.T) {
	r := NewRegistry()

	rec, err := r.Lookup(context.Background(), "NO-DIGITS-HERE")

	require.NoError(t, err)
	assert.NotEmpty(t, rec.FirstName)
	assert.NotEmpty(t, rec.PhoneNumber)
}

func TestIDSeed(t *testing.T) {
	assert.Equal(t, 123456, idSeed("abc"))
	assert.Equal(t, 654321, idSeed("NID987654321"))
	assert.Equal(t, 42, idSeed("42"))
}
