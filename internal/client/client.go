// Package client is a Go client for the travel API. It keeps the bearer token
// of the logged-in user in memory and, optionally, in a session file.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
)

var ErrNotAuthenticated = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Body       dto.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Body.Error)
}

// Session is the persisted login state.
type Session struct {
	Token string           `json:"token"`
	User  dto.UserResponse `json:"user"`
}

type Client struct {
	baseURL     string
	http        *http.Client
	sessionPath string
	fallback    Fallback
	session     Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionFile persists the session at path and loads any existing one.
func WithSessionFile(path string) Option {
	return func(c *Client) { c.sessionPath = path }
}

func WithFallback(f Fallback) Option {
	return func(c *Client) { c.fallback = f }
}

// New returns a client for the API rooted at baseURL (for example
// "http://localhost:8080/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 90 * time.Second},
		fallback: FallbackFail,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sessionPath != "" {
		if err := c.loadSession(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil, false)
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.UserResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, false); err != nil {
		return nil, err
	}

	c.session = Session{Token: resp.Token, User: resp.User}
	if err := c.saveSession(); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout forgets the token locally. The server keeps no session state.
func (c *Client) Logout() error {
	c.session = Session{}
	if c.sessionPath == "" {
		return nil
	}
	if err := os.Remove(c.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is held. It does not contact the server.
func (c *Client) IsAuthenticated() bool {
	return c.session.Token != ""
}

func (c *Client) User() dto.UserResponse {
	return c.session.User
}

// Verify asks the server whether the held token is still valid.
func (c *Client) Verify(ctx context.Context) (*dto.VerifyResponse, error) {
	var resp dto.VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/auth/verify", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		raw, ok := in.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(in)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.session.Token == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(raw, &apiErr.Body) != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *json.RawMessage:
		*dst = append((*dst)[:0], raw...)
		return nil
	default:
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

func (c *Client) loadSession() error {
	raw, err := os.ReadFile(c.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(raw, &c.session); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	return nil
}

func (c *Client) saveSession() error {
	if c.sessionPath == "" {
		return nil
	}
	raw, err := json.Marshal(c.session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(c.sessionPath, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
