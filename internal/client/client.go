// ABOUTME: HTTP client for the airport operations API
// ABOUTME: Single request executor with auth header, deadline and error mapping

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every call that does not set its own.
	DefaultTimeout = 60 * time.Second

	// DefaultIngestTimeout bounds ingestion triggers.
	DefaultIngestTimeout = 3 * time.Minute

	// RequestIDHeader carries a per-call uuid for server-side correlation.
	RequestIDHeader = "X-Request-ID"
)

// TokenSource supplies the bearer credential, if any, for each call.
type TokenSource interface {
	Token() string
}

// Client is the API client for the airport operations backend
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	timeout       time.Duration
	ingestTimeout time.Duration
	log           *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches the credential used for Authorization headers.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout overrides the default per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithIngestTimeout overrides the deadline used by IngestFlights.
func WithIngestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ingestTimeout = d
		}
	}
}

// WithTransport routes calls through rt (for example a SOCKS5 tunnel).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.httpClient.Transport = rt
		}
	}
}

// WithLogger attaches a logger for per-call debug lines.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{},
		timeout:       DefaultTimeout,
		ingestTimeout: DefaultIngestTimeout,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes one call. The zero value is a GET with the
// client's default timeout.
type RequestOptions struct {
	Method  string
	Query   url.Values
	Body    any
	Headers map[string]string
	Timeout time.Duration
}

// Execute performs one HTTP call and returns the parsed JSON body.
// A 2xx response with an empty body returns (nil, nil).
func (c *Client) Execute(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	reqURL := c.baseURL + path
	if len(opts.Query) > 0 {
		reqURL += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(RequestIDHeader, requestID)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, callCtx, timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.handleRequestError(ctx, callCtx, timeout, err)
	}

	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", requestID),
	)

	raw, err := parseBody(resp.StatusCode, data)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp, data)
	}
	return raw, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// parseBody returns nil for an empty body and the raw JSON otherwise. Any
// non-empty body must be JSON, whitespace included.
func parseBody(status int, data []byte) (json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &MalformedResponseError{Status: status, Body: data, Err: err}
	}
	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// handleRequestError converts context errors to typed failures
func (c *Client) handleRequestError(parent, call context.Context, timeout time.Duration, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return ErrCanceled
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout}
	}
	return fmt.Errorf("cannot connect to API at %s: %w", c.baseURL, err)
}
