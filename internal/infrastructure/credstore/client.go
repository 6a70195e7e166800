package credstore

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

// Client implements Store against a GoTrue-style auth API (signup,
// password grant, logout, user introspection). The service-role API key
// authorizes admin signup; user-scoped calls carry the access token.
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

type signupRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type userResponse struct {
	Email        string `json:"email"`
	UserMetadata struct {
		UserID string `json:"user_id"`
	} `json:"user_metadata"`
}

type apiError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"msg"`
	ErrorText  string `json:"error_description"`
}

func (e *apiError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorText
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("credstore: %s (status %d)", msg, e.StatusCode)
}

func (c *Client) CreateCredential(ctx context.Context, identifier, secret string, attrs domain.CredentialAttributes) error {
	body := signupRequest{
		Email:    identifier,
		Password: secret,
		Data: map[string]any{
			"display_name": attrs.DisplayName,
			"phone_number": attrs.PhoneNumber,
			"user_id":      attrs.UserID,
		},
	}
	resp, err := c.do(ctx, http.MethodPost, "/signup", c.apiKey, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("credential for %s already exists: %w", identifier, domain.ErrConflict)
	default:
		return c.errorFrom(resp)
	}
}

func (c *Client) SignIn(ctx context.Context, identifier, secret string) (string, error) {
	body := map[string]string{"email": identifier, "password": secret}
	resp, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.apiKey, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign in rejected: %w", domain.ErrUnauthorized)
	}
	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return out.AccessToken, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return c.errorFrom(resp)
	}
	return nil
}

func (c *Client) CurrentIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token not accepted: %w", domain.ErrUnauthorized)
	}
	var out userResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &domain.Identity{Identifier: out.Email, UserID: out.UserMetadata.UserID}, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credential service request: %w", err)
	}
	return resp, nil
}

func (c *Client) errorFrom(resp *http.Response) error {
	e := &apiError{StatusCode: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		_ = json.Unmarshal(b, e)
	}
	return e
}
