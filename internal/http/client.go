// Package http wraps resty with the SDK's JSON codec, logging and error
// taxonomy. It is the single transport collaborator for all versioned
// REST clients; it knows nothing about signing or rate limiting.
package http

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"whitebit/internal/circuitbreaker"
	"whitebit/pkg/core"
)

// Client is the shared HTTP transport for the WhiteBIT REST API.
type Client struct {
	client  *resty.Client
	breaker *circuitbreaker.Breaker
	logger  zerolog.Logger
	mu      sync.RWMutex
	closed  bool
}

// RequestOption customizes a single outgoing request.
type RequestOption func(*resty.Request)

// ClientOption customizes the transport at construction.
type ClientOption func(*Client)

// WithBreaker installs a circuit breaker. Requests fail fast with
// ErrCircuitOpen while the breaker is open; transport failures and 5xx
// responses count against it.
func WithBreaker(breaker *circuitbreaker.Breaker) ClientOption {
	return func(c *Client) { c.breaker = breaker }
}

// NewClient creates an HTTP transport from the SDK configuration.
// JSON encoding and decoding use sonic; request and response traces go
// to the logger at debug level.
func NewClient(config *core.Config, logger zerolog.Logger, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(config.MaxRetries)
	client.SetRetryWaitTime(config.RetryWaitMin)
	client.SetRetryMaxWaitTime(config.RetryWaitMax)

	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder("application/json", func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})
	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	c := &Client{
		client: client,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the transport's underlying connections. Subsequent
// requests fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Get performs a GET request against the given path.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*resty.Response, error) {
	req, err := c.prepare(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if !c.admit() {
		return nil, &core.TransportError{Op: "GET " + path, Err: core.ErrCircuitOpen}
	}
	resp, err := req.Get(path)
	c.report(resp, err)
	if err != nil {
		return nil, &core.TransportError{Op: "GET " + path, Err: err}
	}
	return resp, nil
}

// Post performs a POST request against the given path. The body is sent
// verbatim when it is a byte slice, which signed requests rely on: the
// transmitted bytes must equal the signed bytes exactly.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*resty.Response, error) {
	req, err := c.prepare(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if !c.admit() {
		return nil, &core.TransportError{Op: "POST " + path, Err: core.ErrCircuitOpen}
	}
	req.SetBody(body)
	resp, err := req.Post(path)
	c.report(resp, err)
	if err != nil {
		return nil, &core.TransportError{Op: "POST " + path, Err: err}
	}
	return resp, nil
}

func (c *Client) admit() bool {
	return c.breaker == nil || c.breaker.Allow()
}

// report feeds the request outcome to the breaker. Only transport
// failures and 5xx responses count against it; 4xx means the endpoint
// is alive and rejecting this particular request.
func (c *Client) report(resp *resty.Response, err error) {
	if c.breaker == nil {
		return
	}
	c.breaker.Record(err == nil && (resp == nil || resp.StatusCode() < 500))
}

func (c *Client) prepare(ctx context.Context, opts ...RequestOption) (*resty.Request, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	req := c.client.R().SetContext(ctx)
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// WithHeader sets one header on the request.
func WithHeader(key, value string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeader(key, value)
	}
}

// WithHeaders sets multiple headers on the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeaders(headers)
	}
}

// WithQueryParam sets one query parameter on the request.
func WithQueryParam(key, value string) RequestOption {
	return func(r *resty.Request) {
		r.SetQueryParam(key, value)
	}
}

// WithQueryParams sets multiple query parameters on the request.
func WithQueryParams(params map[string]string) RequestOption {
	return func(r *resty.Request) {
		r.SetQueryParams(params)
	}
}
