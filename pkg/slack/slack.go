// Package slack implements the chat service against the Slack Web API:
// message search, profile lookups, and a paged member directory scan.
// Calls are paced by a client-side token bucket so a large batch stays
// inside the service's request quotas.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/codeGROOVE-dev/doorman/pkg/chat"
	"github.com/codeGROOVE-dev/doorman/pkg/sanitize"
)

const defaultBaseURL = "https://slack.com/api"

// Client-side pacing defaults, set below Slack's Tier 2 method limits.
const (
	DefaultRateLimitPerMinute = 20
	DefaultBurstLimit         = 5
)

// Bounds for the users.list directory scan.
const (
	directoryPageSize = 200
	maxDirectoryPages = 10
)

// APIError describes a Slack Web API failure.
//
//nolint:govet // fieldalignment: intentional layout for readability
type APIError struct {
	StatusCode int    // HTTP status of the response
	Endpoint   string // Web API method, e.g. "search.messages"
	Reason     string // Slack error string or transport detail
	Err        error  // sentinel for errors.Is, may be nil
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s failed (status %d): %s", e.Endpoint, e.StatusCode, e.Reason)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client talks to the Slack Web API on behalf of a single bearer token.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*config)

type config struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	perMinute  int
	burst      int
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) { c.httpClient = httpClient }
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = baseURL }
}

// WithRateLimit overrides the client-side pacing. Values below 1 keep the
// defaults.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *config) {
		c.perMinute = perMinute
		c.burst = burst
	}
}

// New creates a Slack client for the given bearer token.
func New(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("slack token is required")
	}

	cfg := &config{
		logger:    slog.Default(),
		baseURL:   defaultBaseURL,
		perMinute: DefaultRateLimitPerMinute,
		burst:     DefaultBurstLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.perMinute < 1 {
		cfg.perMinute = DefaultRateLimitPerMinute
	}
	if cfg.burst < 1 {
		cfg.burst = DefaultBurstLimit
	}

	cfg.logger.InfoContext(ctx, "slack client ready",
		"token", sanitize.RedactToken(token),
		"rate_limit_per_minute", cfg.perMinute,
		"burst", cfg.burst)

	return &Client{
		httpClient: cfg.httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.perMinute)), cfg.burst),
		logger:     cfg.logger,
		baseURL:    cfg.baseURL,
		token:      token,
	}, nil
}

// call performs one rate-limited GET against a Web API method and decodes
// the JSON body into result. The limiter wait honors ctx deadlines, so a
// caller's budget caps time spent queued behind the token bucket.
func (c *Client) call(ctx context.Context, method string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+method+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "response body close failed", "method", method, "error", cerr)
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: method, Reason: "too many requests", Err: chat.ErrRateLimited}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: method, Reason: http.StatusText(resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
