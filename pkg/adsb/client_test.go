package adsb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{BaseURL: baseURL}, newTestParser())
}

// TestNewClient tests client construction.
func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "https://api.test.com/v2/"}, nil)

	if client.baseURL != "https://api.test.com/v2" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultTimeout, client.httpClient.Timeout)
	}

	defaults := NewClient(ClientConfig{}, NewParser(nil, zerolog.Nop()))
	if defaults.baseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", defaults.baseURL)
	}
}

// TestFetch tests fetching one category endpoint.
func TestFetch(t *testing.T) {
	t.Run("Regular query path and decode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expectedPath := "/lat/35.0000/lon/-80.0000/dist/100"
			if r.URL.Path != expectedPath {
				t.Errorf("Expected path %s, got %s", expectedPath, r.URL.Path)
			}
			fmt.Fprint(w, `{"ac":[{"hex":"A12345","flight":"UAL123 ","lat":35.5,"lon":-80.5,"alt_baro":30000,"gs":450}],"now":1700000000000,"total":1,"msg":"No error"}`)
		}))
		defer server.Close()

		batch, err := newTestClient(server.URL).Fetch(context.Background(), Query{Category: Regular, Lat: 35, Lon: -80, RadiusNM: 100})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(batch.Aircraft) != 1 {
			t.Fatalf("Expected 1 aircraft, got %d", len(batch.Aircraft))
		}
		ac := batch.Aircraft[0]
		if ac.Hex != "a12345" {
			t.Errorf("Expected hex a12345, got %s", ac.Hex)
		}
		if ac.Callsign() != "UAL123" {
			t.Errorf("Expected callsign UAL123, got %s", ac.Callsign())
		}
		if ac.AltBaro == nil || *ac.AltBaro != 30000 {
			t.Errorf("Expected alt_baro 30000, got %v", ac.AltBaro)
		}
	})

	t.Run("Fixed category paths", func(t *testing.T) {
		var seen []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			fmt.Fprint(w, `{"ac":[],"now":1,"total":0}`)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		for _, cat := range []Category{PIA, Military, LADD} {
			if _, err := client.Fetch(context.Background(), Query{Category: cat}); err != nil {
				t.Fatalf("%s: unexpected error %v", cat, err)
			}
		}

		want := []string{"/pia", "/mil", "/ladd"}
		for i := range want {
			if i >= len(seen) || seen[i] != want[i] {
				t.Fatalf("Expected paths %v, got %v", want, seen)
			}
		}
	})

	t.Run("Server error is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream down")
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Category: Military})

		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("Expected TransportError, got %T: %v", err, err)
		}
		if te.StatusCode != http.StatusBadGateway || te.Category != Military {
			t.Errorf("Unexpected transport error fields: %+v", te)
		}
	})

	t.Run("Rate limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Category: PIA})

		rle, ok := IsRateLimitError(err)
		if !ok {
			t.Fatalf("Expected RateLimitError, got %v", err)
		}
		if rle.RetryAfter != 30*time.Second {
			t.Errorf("Expected RetryAfter 30s, got %v", rle.RetryAfter)
		}
		if rle.Headers.Limit != 60 || rle.Headers.Remaining != 0 {
			t.Errorf("Unexpected headers: %+v", rle.Headers)
		}
		var te *TransportError
		if !errors.As(err, &te) {
			t.Error("Expected rate limit to surface as a transport error")
		}
	})

	t.Run("Garbage body is a malformed batch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>oops</html>")
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Category: LADD})
		if !errors.Is(err, ErrMalformedBatch) {
			t.Errorf("Expected ErrMalformedBatch, got %v", err)
		}
		var te *TransportError
		if errors.As(err, &te) {
			t.Error("A decodable transport must not report a transport error")
		}
	})

	t.Run("Timeout is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, newTestParser())
		_, err := client.Fetch(context.Background(), Query{Category: Regular, Lat: 1, Lon: 1, RadiusNM: 5})

		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("Expected TransportError, got %v", err)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient("http://127.0.0.1:1").Fetch(ctx, Query{Category: PIA})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

// TestFetchHex tests single aircraft lookup.
func TestFetchHex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hex/abc123" {
			fmt.Fprint(w, `{"ac":[{"hex":"abc123","lat":1,"lon":2}],"now":1}`)
			return
		}
		fmt.Fprint(w, `{"ac":[],"now":1}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ac, err := client.FetchHex(context.Background(), "ABC123")
	if err != nil || ac == nil {
		t.Fatalf("Expected aircraft, got %v, %v", ac, err)
	}

	ac, err = client.FetchHex(context.Background(), "ffffff")
	if err != nil || ac != nil {
		t.Errorf("Expected nil, nil for unknown aircraft, got %v, %v", ac, err)
	}
}

// TestParseRetryAfter tests Retry-After header formats.
func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2015, 10, 21, 7, 27, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"Missing", "", 0},
		{"Seconds", "30", 30 * time.Second},
		{"HTTP date", "Wed, 21 Oct 2015 07:28:00 GMT", time.Minute},
		{"Past date", "Wed, 21 Oct 2015 07:00:00 GMT", 0},
		{"Garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			if got := parseRetryAfter(h, now); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestExtractRateLimitHeaders tests both header spellings.
func TestExtractRateLimitHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit-Limit", "100")
	h.Set("X-RateLimit-Remaining", "7")
	h.Set("X-Rate-Limit-Reset", "1445412480")

	rlh := extractRateLimitHeaders(h)
	if rlh.Limit != 100 || rlh.Remaining != 7 {
		t.Errorf("Unexpected limit/remaining: %+v", rlh)
	}
	if !rlh.Reset.Equal(time.Unix(1445412480, 0)) {
		t.Errorf("Unexpected reset: %v", rlh.Reset)
	}

	empty := extractRateLimitHeaders(http.Header{})
	if empty.Limit != -1 || empty.Remaining != -1 || !empty.Reset.IsZero() {
		t.Errorf("Expected unknown headers, got %+v", empty)
	}
}
