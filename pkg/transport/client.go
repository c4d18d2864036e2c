package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/storage"
)

// DefaultBaseURL is the gateway address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// ErrSessionExpired is returned when a 401 could not be recovered: the
// refresh token was missing or the refresh exchange itself failed. By the
// time a caller sees it, all persisted credentials have been purged.
var ErrSessionExpired = errors.New("transport: session expired")

// Config holds the settings for the shared gateway client.
type Config struct {
	// BaseURL is the API gateway root. Defaults to DefaultBaseURL.
	BaseURL string

	// Storage is the persisted slice tokens are read from and written to.
	Storage storage.Adapter

	// OnSessionExpired is invoked after credentials are purged following an
	// unrecoverable 401. The CLI uses it to route the user back to login.
	OnSessionExpired func()

	// HTTPClient optionally supplies the underlying client; its Transport
	// is wrapped with the credential and recovery layers.
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration

	// EnableTracing wraps the transport with otelhttp instrumentation.
	EnableTracing bool

	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// Client is the single shared HTTP client every service client routes
// through. It attaches the stored access token to outbound requests and
// recovers from session expiry with exactly one silent refresh per request.
// It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	bare      *http.Client
	storage   storage.Adapter
	logger    *observability.Logger
	metrics   *observability.Metrics
	onExpired func()
	refresh   singleflight.Group
}

// New creates the shared gateway client.
func New(cfg Config) (*Client, error) {
	if cfg.Storage == nil {
		return nil, fmt.Errorf("transport: storage adapter is required")
	}

	rawURL := cfg.BaseURL
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL %q: %w", rawURL, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	inner := http.DefaultTransport
	if cfg.EnableTracing {
		inner = otelhttp.NewTransport(inner)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		base:      base,
		storage:   cfg.Storage,
		logger:    logger,
		metrics:   cfg.Metrics,
		onExpired: cfg.OnSessionExpired,
	}
	httpClient.Transport = &authTransport{client: c, next: inner}
	c.http = httpClient

	// The refresh exchange goes through a bare client so an expired access
	// token can never recurse into another recovery attempt.
	c.bare = &http.Client{Timeout: httpClient.Timeout, Transport: inner}

	return c, nil
}

// BaseURL returns the configured gateway root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Get issues a GET request and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the envelope data
// into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Put issues a PUT request with a JSON body and decodes the envelope data
// into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	target := c.base.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("gateway request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	}

	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &api.Error{
				Code:    "HTTP_" + strconv.Itoa(resp.StatusCode),
				Message: http.StatusText(resp.StatusCode),
				Status:  resp.StatusCode,
			}
		}
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if err := env.Err(resp.StatusCode); err != nil {
		return err
	}
	return env.Decode(out)
}
