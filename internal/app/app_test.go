package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/adsb-tracker/internal/db"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/config"
)

const pointBody = `{"ac":[
	{"hex":"A1B2C3","flight":"UAL123  ","lat":40.64,"lon":-73.78,"alt_baro":3500,"gs":"180.5"},
	{"hex":"ae0001","flight":"RCH871","lat":40.70,"lon":-73.90,"alt_baro":"ground"},
	{"hex":"c0ffee"}
],"now":1718000000000,"total":3,"ctime":1718000000000,"ptime":4,"msg":"No error"}`

func newFeed(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/mil":
			_, _ = w.Write([]byte(`{"ac":[],"now":1718000000000,"total":0}`))
		default:
			_, _ = w.Write([]byte(pointBody))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ADSB.BaseURL = baseURL + "/v2"
	cfg.ADSB.RequestsPerSecond = 0
	cfg.Observer.Latitude = 40.64
	cfg.Observer.Longitude = -73.78
	cfg.Observer.RadiusNM = 25
	cfg.Observer.Zoom = 12
	return cfg
}

func TestNewAndStart(t *testing.T) {
	srv := newFeed(t)

	a, err := New(testConfig(srv.URL), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Greater(t, a.Airports.Len(), 0)

	got := make(chan []adsb.Aircraft, 8)
	unsubscribe := a.Tracker.Subscribe(func(list []adsb.Aircraft) {
		if len(list) > 0 {
			select {
			case got <- list:
			default:
			}
		}
	})
	defer unsubscribe()

	require.NoError(t, a.Start())

	select {
	case list := <-got:
		hexes := make([]string, 0, len(list))
		for _, ac := range list {
			hexes = append(hexes, ac.Hex)
		}
		assert.ElementsMatch(t, []string{"a1b2c3", "ae0001"}, hexes)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	st := a.Tracker.Status()
	assert.True(t, st.HasViewport)
	assert.Equal(t, 25.0, st.Viewport.RadiusNM)
}

func TestStartWithoutViewport(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Observer.RadiusNM = 0

	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Start())
	assert.False(t, a.Tracker.Status().HasViewport)
}

func TestNewRejectsBadAirportFile(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Airports.File = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(cfg, zerolog.Nop())
	require.Error(t, err)
}

func TestLoadAirportsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airports.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- icao: lkpr
  iata: prg
  name: Prague
  lat: 50.1008
  lon: 14.26
`), 0644))

	cfg := config.DefaultConfig()
	cfg.Airports.File = path

	dir, err := LoadAirports(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, dir.Len())
	_, ok := dir.ByIATA("PRG")
	assert.True(t, ok)
}

func TestOpenDatabaseDisabled(t *testing.T) {
	database, err := OpenDatabase(context.Background(), config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, database)
}

type fakeStore struct {
	mu      sync.Mutex
	calls   [][]adsb.Aircraft
	err     error
	release chan struct{}
}

func (f *fakeStore) RecordSnapshot(_ context.Context, aircraft []adsb.Aircraft, _ time.Time) (db.RecordStats, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, aircraft)
	return db.RecordStats{Upserted: len(aircraft)}, f.err
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRecorderKeepsNewestSnapshot(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, zerolog.Nop())

	r.Offer([]adsb.Aircraft{{Hex: "000001"}})
	r.Offer([]adsb.Aircraft{{Hex: "000002"}})
	r.Offer(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	require.Eventually(t, func() bool { return store.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	assert.Equal(t, "000002", store.calls[0][0].Hex)
	store.mu.Unlock()

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Dropped)
	assert.Equal(t, int64(1), stats.Recorded)
}

func TestRecorderCountsFailures(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	r := NewRecorder(store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Offer([]adsb.Aircraft{{Hex: "000001"}})

	require.Eventually(t, func() bool { return r.Stats().Failed == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), r.Stats().Recorded)
}

func TestRecorderOfferDoesNotBlock(t *testing.T) {
	store := &fakeStore{release: make(chan struct{})}
	r := NewRecorder(store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Offer([]adsb.Aircraft{{Hex: "000001"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Offer blocked while the store was busy")
	}
	close(store.release)
}

func TestNewAuthService(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Nil(t, NewAuthService(cfg))

	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NotNil(t, NewAuthService(cfg))
}

type countingCleaner struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
}

func (c *countingCleaner) CleanupOldData(_ context.Context, _ time.Time, maxAge time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.maxAge = maxAge
	return nil
}

func TestRunCleanup(t *testing.T) {
	c := &countingCleaner{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunCleanup(ctx, c, 5*time.Millisecond, zerolog.Nop())
		close(done)
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.calls >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	c.mu.Lock()
	assert.Equal(t, visibleFor, c.maxAge)
	c.mu.Unlock()
}
