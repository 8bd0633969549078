// Package rest is the bearer-authenticated JSON client shared by every
// entity service. It attaches the session's access token to each request
// and owns the reactive half of token renewal: a 401 on any endpoint
// funnels into the session's single-flight refresh and the request is
// replayed once with the new token.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/internal/metrics"
)

// Credentials is the slice of the session manager the client depends on.
// The client never mutates token state directly; it only reads the current
// token and asks the session to refresh.
type Credentials interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// Client performs JSON requests against the quotation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	log        zerolog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithCredentials binds the client to a session. Without credentials the
// client sends unauthenticated requests (the vendor submission page).
func WithCredentials(creds Credentials) ClientOption {
	return func(c *Client) { c.creds = creds }
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Get performs a GET request, decoding the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errs.Wrapf(err, "[rest.Client] marshal %s %s", method, path)
		}
	}

	status, respBody, err := c.roundTrip(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	// Reactive refresh: a 401 anywhere but the refresh endpoint means the
	// access token went stale before the proactive timer fired. Refresh
	// through the session's single-flight guard and replay once.
	if status == http.StatusUnauthorized && c.creds != nil {
		if refreshErr := c.creds.Refresh(ctx); refreshErr != nil {
			return fmt.Errorf("%w: %v", errs.ErrSessionExpired, refreshErr)
		}
		status, respBody, err = c.roundTrip(ctx, method, path, query, payload)
		if err != nil {
			return err
		}
	}

	switch {
	case status >= 200 && status < 300:
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return errs.Wrapf(err, "[rest.Client] decode %s %s", method, path)
			}
		}
		return nil
	case status == http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errs.ErrNotFound, path)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		vErr := &ValidationError{}
		if err := json.Unmarshal(respBody, vErr); err != nil || (vErr.Message == "" && len(vErr.Fields) == 0) {
			vErr.Message = strings.TrimSpace(string(respBody))
		}
		return vErr
	case status >= 500:
		return fmt.Errorf("%w: server error %d on %s", errs.ErrTransport, status, path)
	default:
		return &APIError{StatusCode: status, Body: strings.TrimSpace(string(respBody))}
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, errs.Wrapf(err, "[rest.Client] request %s %s", method, path)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(method, "error").Inc()
		return 0, nil, fmt.Errorf("%w: %s %s: %v", errs.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("api request")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body %s %s: %v", errs.ErrTransport, method, path, err)
	}
	return resp.StatusCode, respBody, nil
}

func statusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
