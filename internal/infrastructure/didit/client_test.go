package didit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-onboarding-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/session/", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"session_id":"s1","url":"https://verify.example/s1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	sess, err := c.CreateSession(context.Background(), "en", map[string]string{"flow": "onboarding"})

	require.NoError(t, err)
	assert.Equal(t, "s1", sess.SessionID)
	assert.Equal(t, "https://verify.example/s1", sess.URL)
}

func TestCreateSession_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	_, err := c.CreateSession(context.Background(), "en", nil)

	var apiErr *ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "invalid api key")
}

func TestGetSessionResult_Approved(t *testing.T) {
	body := `{"session_id":"s1","status":"Approved","user_data":{"first_name":"Ann","last_name":"Lee","date_of_birth":"1991-02-03","document_number":"X123"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/session/s1/decision/", r.URL.Path)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	result, err := c.GetSessionResult(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, domain.SessionApproved, result.Status)
	require.NotNil(t, result.Identity)
	assert.Equal(t, "Ann", result.Identity.FirstName)
	assert.Equal(t, "X123", result.Identity.DocumentNumber)
	assert.JSONEq(t, body, string(result.Raw))
}

func TestGetSessionResult_DecisionStatusFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id":"s1","decision_status":"In Progress"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	result, err := c.GetSessionResult(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, domain.SessionPending, result.Status)
	assert.Nil(t, result.Identity)
}

func TestMapStatus_UnknownIsError(t *testing.T) {
	assert.Equal(t, domain.SessionError, mapStatus("Abandoned"))
	assert.Equal(t, domain.SessionError, mapStatus(""))
	assert.Equal(t, domain.SessionCreated, mapStatus("Not Started"))
}
