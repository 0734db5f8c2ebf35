// Package backend provides a client for the trading backend REST API
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultTimeout = 30 * time.Second
)

// Sentinel errors for the backend error taxonomy. APIError unwraps to
// one of these so callers can branch with errors.Is.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrNetwork         = errors.New("network or server error")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Unwrap maps the status code onto the error taxonomy.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return ErrValidation
	case e.StatusCode >= 500:
		return ErrNetwork
	}
	return nil
}

// Client implements the BackendClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new backend client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// errorPayload covers the two message shapes the backend emits.
type errorPayload struct {
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

func (p *errorPayload) message(fallback string) string {
	if p.Msg != "" {
		return p.Msg
	}
	if p.Error != "" {
		return p.Error
	}
	return fallback
}

// doJSON performs a request with an optional JSON body, decoding a JSON
// response into result when result is non-nil. When authed is true the
// bearer token is taken from the context session.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		session, err := common.RequireSession(ctx)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, ErrUnauthenticated)
		}
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("Backend API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var payload errorPayload
		_ = json.Unmarshal(raw, &payload)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    payload.message(http.StatusText(resp.StatusCode)),
			Endpoint:   path,
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result, true)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result, true)
}

func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, body, result, true)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, true)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp models.LoginResponse
	creds := models.Credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", &creds, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response missing token: %w", ErrNetwork)
	}
	return resp.Token, nil
}

// Signup creates a new account.
func (c *Client) Signup(ctx context.Context, req *models.SignupRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/signup", req, nil, false)
}
