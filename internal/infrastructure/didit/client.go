package didit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-onboarding-api/internal/domain"
)

// Client talks to the Didit identity verification API. Authentication is a
// static x-api-key header on every request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type createSessionRequest struct {
	Language   string            `json:"language,omitempty"`
	VendorData string            `json:"vendor_data,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type decisionResponse struct {
	SessionID      string `json:"session_id"`
	Status         string `json:"status"`
	DecisionStatus string `json:"decision_status"`
	UserData       *struct {
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		DateOfBirth    string `json:"date_of_birth"`
		DocumentNumber string `json:"document_number"`
	} `json:"user_data"`
}

// ErrorResponse is the provider's error body. It doubles as the error
// returned to callers so they can inspect the HTTP status code.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
}

func (e *ErrorResponse) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Detail
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("didit: %s (status %d)", msg, e.StatusCode)
}

// CreateSession opens a new verification session and returns its id along
// with the hosted flow URL the end user must be sent to.
func (c *Client) CreateSession(ctx context.Context, language string, metadata map[string]string) (*domain.ProviderSession, error) {
	body, err := json.Marshal(createSessionRequest{Language: language, Metadata: metadata})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/session/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.errorFrom(resp)
	}

	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	return &domain.ProviderSession{SessionID: out.SessionID, URL: out.URL}, nil
}

// GetSessionResult fetches the current decision for a session. The raw
// response body is returned verbatim alongside the decoded fields.
func (c *Client) GetSessionResult(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	url := fmt.Sprintf("%s/v2/session/%s/decision/", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session decision: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFrom(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read decision body: %w", err)
	}

	var out decisionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode decision response: %w", err)
	}

	status := out.Status
	if status == "" {
		status = out.DecisionStatus
	}

	result := &domain.SessionResult{
		Status: mapStatus(status),
		Raw:    raw,
	}
	if out.UserData != nil {
		result.Identity = &domain.ExtractedIdentity{
			FirstName:      out.UserData.FirstName,
			LastName:       out.UserData.LastName,
			DateOfBirth:    out.UserData.DateOfBirth,
			DocumentNumber: out.UserData.DocumentNumber,
		}
	}
	return result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
}

func (c *Client) errorFrom(resp *http.Response) error {
	apiErr := &ErrorResponse{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		_ = json.Unmarshal(body, apiErr)
	}
	return apiErr
}

func mapStatus(s string) domain.SessionStatus {
	switch s {
	case "Not Started":
		return domain.SessionCreated
	case "In Progress", "In Review", "Pending":
		return domain.SessionPending
	case "Approved":
		return domain.SessionApproved
	case "Declined":
		return domain.SessionDeclined
	default:
		return domain.SessionError
	}
}
