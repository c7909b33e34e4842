package adsb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the adsb.lol v2 API
	DefaultBaseURL = "https://api.adsb.lol/v2"

	// DefaultTimeout bounds one request, including reading the body
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of a failed response is quoted in errors
	maxErrorBody = 512
)

// ClientConfig contains configuration for the API client.
type ClientConfig struct {
	// BaseURL is the API base URL (default: https://api.adsb.lol/v2)
	BaseURL string

	Timeout time.Duration

	// RequestsPerSecond limits outgoing requests. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter burst (default: one request per category)
	Burst int

	UserAgent string
}

// Client fetches aircraft batches from a readsb-compatible HTTP API.
// It is safe for concurrent use.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	parser      *Parser
	now         func() time.Time
}

// NewClient creates a new API client. Responses are decoded with parser.
func NewClient(cfg ClientConfig, parser *Parser) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(numCategories)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, cfg.Burst),
		parser:      parser,
		now:         time.Now,
	}
}

// Fetch issues one GET for the query's category endpoint and decodes it.
// Network failures, timeouts and non-2xx responses are *TransportError; a
// 429 additionally wraps a *RateLimitError. Decode failures are returned as
// the parser reports them.
func (c *Client) Fetch(ctx context.Context, q Query) (Batch, error) {
	body, err := c.get(ctx, q.Category, q.Path())
	if err != nil {
		return Batch{}, err
	}
	return c.parser.ParseBatch(body)
}

// FetchHex looks up a single aircraft by ICAO address. Returns nil if the
// aircraft is not currently tracked.
func (c *Client) FetchHex(ctx context.Context, hex string) (*Aircraft, error) {
	body, err := c.get(ctx, Regular, "/hex/"+strings.ToLower(strings.TrimSpace(hex)))
	if err != nil {
		return nil, err
	}
	batch, err := c.parser.ParseBatch(body)
	if err != nil {
		return nil, err
	}
	if len(batch.Aircraft) == 0 {
		return nil, nil
	}
	return &batch.Aircraft[0], nil
}

func (c *Client) get(ctx context.Context, category Category, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &TransportError{Category: category, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Category: category, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Category: category, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &TransportError{
			Category:   category,
			StatusCode: resp.StatusCode,
			Err: &RateLimitError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header, c.now()),
				Message:    "Rate limit exceeded",
				Headers:    extractRateLimitHeaders(resp.Header),
			},
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{
			Category:   category,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API error: %s", strings.TrimSpace(string(snippet))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Category: category, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}
