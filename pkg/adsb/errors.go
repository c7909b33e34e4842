package adsb

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrMissingIdentity means an aircraft object had no usable hex.
	ErrMissingIdentity = errors.New("aircraft record has no hex identity")

	// ErrMalformedBatch means the response body could not be read as a batch
	// at all, not even through the per-record fallback.
	ErrMalformedBatch = errors.New("malformed aircraft batch")

	// ErrUnsafeInteger means a record carried an integer literal beyond the
	// configured safe range. The parser rewrites such literals and retries.
	ErrUnsafeInteger = errors.New("integer literal exceeds safe range")
)

// TransportError is a network, timeout or non-2xx failure for one category.
type TransportError struct {
	Category   Category
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed with status %d: %v", e.Category, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Category, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError represents an HTTP 429 rate limit error with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Headers    RateLimitHeaders
}

// RateLimitHeaders contains rate limit information from response headers.
type RateLimitHeaders struct {
	Limit     int       // X-Rate-Limit-Limit: Maximum requests allowed
	Remaining int       // X-Rate-Limit-Remaining: Requests remaining in current window
	Reset     time.Time // X-Rate-Limit-Reset: When the rate limit resets
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError checks if an error is, or wraps, a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value.
// Returns the duration to wait, or 0 if header is not present.
// Supports both delay-seconds (integer) and HTTP-date formats.
//
// Examples:
//
//	Retry-After: 30                            -> 30 seconds
//	Retry-After: Wed, 21 Oct 2015 07:28:00 GMT -> duration until that time
func parseRetryAfter(headers http.Header, now time.Time) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := retryTime.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}

// headerInt reads the first of names that parses as an integer, or -1.
func headerInt(headers http.Header, names ...string) int {
	for _, name := range names {
		if v := headers.Get(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return -1
}

// extractRateLimitHeaders extracts common rate limit headers from the response.
// Both the X-Rate-Limit-* and X-RateLimit-* spellings are in use.
func extractRateLimitHeaders(headers http.Header) RateLimitHeaders {
	rlh := RateLimitHeaders{
		Limit:     headerInt(headers, "X-Rate-Limit-Limit", "X-RateLimit-Limit"),
		Remaining: headerInt(headers, "X-Rate-Limit-Remaining", "X-RateLimit-Remaining"),
	}

	if reset := headerInt(headers, "X-Rate-Limit-Reset", "X-RateLimit-Reset"); reset > 0 {
		rlh.Reset = time.Unix(int64(reset), 0)
	}

	return rlh
}
