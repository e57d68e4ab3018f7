package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenSource supplies the bearer token attached to outgoing requests. An
// empty token (or an error) means the request proceeds unauthenticated; the
// server decides.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to [TokenSource].
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements [TokenSource].
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken returns a [TokenSource] that always yields token.
func StaticToken(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) { return token, nil })
}

// HTTPError is a non-2xx backend response. Message carries the backend's
// envelope message when one could be decoded.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// Envelope mirrors the backend response contract: every domain endpoint
// returns {success, message, data?}.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// Config configures a [Client].
type Config struct {
	// BaseURL must already be resolved and normalized (see [ResolveBaseURL]).
	BaseURL string
	// Timeout bounds every request; zero selects 10s.
	Timeout time.Duration
}

// Option mutates a [Client] during construction.
type Option func(*Client)

// WithTokenSource sets the bearer token supplier.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

// WithUnauthorizedHandler registers the callback invoked once per HTTP 401
// response, before the error is returned to the caller.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the structured logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying transport. The configured timeout is
// still applied.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client is the shared HTTP chokepoint.
type Client struct {
	base           string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	log            logrus.FieldLogger
}

// NewClient builds a [Client] from cfg and opts.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		base: NormalizeAPIURL(cfg.BaseURL),
		http: &http.Client{Timeout: timeout},
		log:  discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Timeout == 0 {
		// Copy an injected client before applying the timeout so the caller's
		// instance is left untouched.
		hc := *c.http
		hc.Timeout = timeout
		c.http = &hc
	}
	return c
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// BaseURL returns the resolved base URL the client dispatches against.
func (c *Client) BaseURL() string { return c.base }

// Get issues a GET and decodes the JSON body into out (ignored when nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Ping probes backend health: /health first, /ping as a fallback.
func (c *Client) Ping(ctx context.Context) bool {
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, nil); err == nil {
		return true
	}
	if err := c.do(ctx, http.MethodGet, "/ping", nil, nil, nil); err == nil {
		return true
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		// A token source failure is treated as "no token": the request goes
		// out unauthenticated and the server decides.
		if token, tokenErr := c.tokens.Token(ctx); tokenErr == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).
			WithError(err).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).
			Warn("unauthorized response, clearing session")
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return &HTTPError{Status: resp.StatusCode, Message: envelopeMessage(payload)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Message: envelopeMessage(payload)}
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// envelopeMessage best-effort extracts the backend message from an error body.
func envelopeMessage(payload []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return ""
	}
	return env.Message
}
