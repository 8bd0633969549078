// Package auth is the client for the authentication endpoints. Login and
// refresh are the only two calls that run outside the bearer-authenticated
// API client: login has no token yet and refresh must never recurse into
// the 401-retry path.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	errs "github.com/techcorp/partsquote/internal/errors"
)

const (
	LoginPath   = "/auth/login"
	RefreshPath = "/auth/refresh"
)

// TokenPair is the credential pair returned by the authentication endpoints.
// RefreshToken may be empty on refresh responses; the caller keeps the
// previous one in that case.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	TenantID     string `json:"tenantId"`
}

// Client calls the authentication endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption configures the auth Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates an auth endpoint client for the given base URL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password, tenantID string) (*TokenPair, error) {
	pair, status, err := c.post(ctx, LoginPath, loginRequest{Email: email, Password: password, TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.log.Warn().Int("status", status).Msg("login rejected")
		return nil, errs.ErrInvalidCredentials
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken, tenantID string) (*TokenPair, error) {
	pair, status, err := c.post(ctx, RefreshPath, refreshRequest{RefreshToken: refreshToken, TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.log.Warn().Int("status", status).Msg("refresh rejected")
		return nil, errs.ErrSessionExpired
	}
	return pair, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*TokenPair, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, errs.Wrapf(err, "[auth.Client] marshal %s", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, errs.Wrapf(err, "[auth.Client] request %s", path)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", errs.ErrTransport, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, resp.StatusCode, errs.Wrapf(err, "[auth.Client] decode %s", path)
	}
	return &pair, resp.StatusCode, nil
}
