// Package tracker is the long-lived aircraft tracking service. It owns the
// freshness cache and poll scheduler, fans each tick out into one concurrent
// fetch per enabled source category, and exposes the merged result plus
// status fields to whatever UI or API sits on top.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/cache"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/scheduler"
)

const (
	DefaultFetchTimeout       = 10 * time.Second
	DefaultAreaChangeFraction = 0.5
)

var (
	// ErrClosed is returned by control operations after Close.
	ErrClosed = errors.New("tracker closed")

	// ErrInvalidViewport is returned for out-of-range centers or radii.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// Config configures a Tracker.
type Config struct {
	// FetchTimeout bounds each category request.
	FetchTimeout time.Duration

	Retention time.Duration
	Validity  adsb.ValidityRule

	Burst scheduler.Config

	// AreaChangeFraction decides when a viewport change is a new area: the
	// center moved, or the radius changed, by more than this fraction of the
	// previous radius.
	AreaChangeFraction float64

	// Categories is the initial enabled set. Empty means Regular only.
	Categories adsb.CategorySet
}

// Viewport is the area the collaborator is looking at.
type Viewport struct {
	Center   coordinates.Geographic `json:"center"`
	RadiusNM float64                `json:"radius_nm"`
	Zoom     float64                `json:"zoom"`
}

// Tracker coordinates fetching, caching and scheduling. Construct one per
// process and share it; all methods are safe for concurrent use.
type Tracker struct {
	cfg     Config
	fetcher Fetcher
	cache   *cache.Cache
	sched   *scheduler.Scheduler
	clock   scheduler.Clock
	logger  zerolog.Logger

	// root is cancelled by Close and parents every fetch.
	root       context.Context
	cancelRoot context.CancelFunc
	wg         sync.WaitGroup

	// ctlMu serializes control operations so scheduler restarts never interleave.
	ctlMu sync.Mutex

	mu          sync.RWMutex
	viewport    Viewport
	hasViewport bool
	enabled     adsb.CategorySet
	interval    time.Duration
	paused      bool
	closed      bool
	generation  uint64
	inFlight    int
	lastErr     error
	catErrs     map[adsb.Category]error
	lastUpdate  time.Time

	subMu   sync.Mutex
	subs    map[int]func([]adsb.Aircraft)
	nextSub int
}

// New creates a tracker. Nothing is fetched until SetViewport is called.
// A nil clock selects the real clock.
func New(cfg Config, fetcher Fetcher, clock scheduler.Clock, logger zerolog.Logger) *Tracker {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.AreaChangeFraction <= 0 {
		cfg.AreaChangeFraction = DefaultAreaChangeFraction
	}
	if clock == nil {
		clock = scheduler.RealClock{}
	}

	root, cancel := context.WithCancel(context.Background())

	t := &Tracker{
		cfg:        cfg,
		fetcher:    fetcher,
		cache:      cache.New(cache.Config{Retention: cfg.Retention, Validity: cfg.Validity}),
		clock:      clock,
		logger:     logger,
		root:       root,
		cancelRoot: cancel,
		enabled:    cfg.Categories,
		catErrs:    make(map[adsb.Category]error),
		subs:       make(map[int]func([]adsb.Aircraft)),
	}
	t.sched = scheduler.New(cfg.Burst, clock, t.fetchEnabled, logger)

	return t
}

// SetViewport points the tracker at a new area. It fetches immediately and
// (re)starts polling at the zoom-appropriate interval. Moving to a materially
// different area flushes the cache, discards results still in flight for the
// old area and polls in a short burst to repopulate.
func (t *Tracker) SetViewport(center coordinates.Geographic, radiusNM, zoom float64) error {
	if err := center.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidViewport, err)
	}
	if radiusNM <= 0 || math.IsNaN(radiusNM) || math.IsInf(radiusNM, 0) {
		return fmt.Errorf("%w: radius %v must be positive", ErrInvalidViewport, radiusNM)
	}

	t.ctlMu.Lock()
	defer t.ctlMu.Unlock()

	next := Viewport{Center: center, RadiusNM: radiusNM, Zoom: zoom}
	interval := scheduler.IntervalForZoom(zoom)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	newArea := !t.hasViewport || t.materialChange(t.viewport, next)
	if newArea && t.hasViewport {
		t.generation++
		t.cache.Flush()
	}
	t.viewport = next
	t.hasViewport = true
	t.interval = interval
	paused := t.paused
	t.mu.Unlock()

	t.logger.Info().
		Str("center", center.String()).
		Float64("radius_nm", radiusNM).
		Float64("zoom", zoom).
		Dur("interval", interval).
		Bool("new_area", newArea).
		Msg("Viewport updated")

	if newArea {
		t.notify()
	}
	if paused {
		return nil
	}

	t.sched.Start(interval, newArea)
	return nil
}

func (t *Tracker) materialChange(prev, next Viewport) bool {
	limit := t.cfg.AreaChangeFraction * prev.RadiusNM
	if coordinates.DistanceNauticalMiles(prev.Center, next.Center) > limit {
		return true
	}
	return math.Abs(next.RadiusNM-prev.RadiusNM) > limit
}

// SetEnabledCategories changes which categories are fetched and shown. Newly
// enabled categories are fetched right away when the tracker is running.
func (t *Tracker) SetEnabledCategories(set adsb.CategorySet) error {
	t.ctlMu.Lock()
	defer t.ctlMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	added := set.OrDefault() &^ t.enabled.OrDefault()
	t.enabled = set
	for c := range t.catErrs {
		if !set.OrDefault().Has(c) {
			delete(t.catErrs, c)
		}
	}
	t.lastErr = t.firstCategoryErrorLocked()
	running := t.hasViewport && !t.paused
	t.mu.Unlock()

	t.logger.Info().Str("categories", set.OrDefault().String()).Msg("Enabled categories updated")

	if running && !added.Empty() {
		t.fetch(added)
	}
	t.notify()
	return nil
}

// Pause stops polling and discards results still in flight, keeping the cache.
func (t *Tracker) Pause() {
	t.ctlMu.Lock()
	defer t.ctlMu.Unlock()

	t.mu.Lock()
	if t.paused || t.closed {
		t.mu.Unlock()
		return
	}
	t.paused = true
	t.generation++
	t.mu.Unlock()

	t.sched.Stop()
	t.logger.Info().Msg("Tracking paused")
}

// Resume restarts polling after Pause at the current viewport's interval.
func (t *Tracker) Resume() {
	t.ctlMu.Lock()
	defer t.ctlMu.Unlock()

	t.mu.Lock()
	if !t.paused || t.closed {
		t.mu.Unlock()
		return
	}
	t.paused = false
	start := t.hasViewport
	interval := t.interval
	t.mu.Unlock()

	t.logger.Info().Msg("Tracking resumed")
	if start {
		t.sched.Start(interval, false)
	}
}

// Close stops polling and waits for in-flight fetches to finish. The cache
// stays readable.
func (t *Tracker) Close() error {
	t.ctlMu.Lock()
	defer t.ctlMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.generation++
	t.mu.Unlock()

	t.sched.Stop()
	t.cancelRoot()
	t.wg.Wait()
	return nil
}

// CurrentSnapshot returns the cached aircraft in the enabled categories.
func (t *Tracker) CurrentSnapshot() []adsb.Aircraft {
	t.mu.RLock()
	enabled := t.enabled.OrDefault()
	t.mu.RUnlock()

	return t.cache.Snapshot(t.clock.Now(), enabled)
}

// Aircraft returns one cached aircraft by hex, if it is still fresh.
func (t *Tracker) Aircraft(hex string) (adsb.Aircraft, bool) {
	ac, _, ok := t.cache.Get(hex, t.clock.Now())
	return ac, ok
}

// Subscribe registers fn to receive the snapshot after every merge, flush or
// filter change. fn runs on a fetch goroutine and must not block. The returned
// function unsubscribes.
func (t *Tracker) Subscribe(fn func([]adsb.Aircraft)) (unsubscribe func()) {
	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.subMu.Unlock()

	return func() {
		t.subMu.Lock()
		delete(t.subs, id)
		t.subMu.Unlock()
	}
}

func (t *Tracker) notify() {
	t.subMu.Lock()
	subs := make([]func([]adsb.Aircraft), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.subMu.Unlock()

	if len(subs) == 0 {
		return
	}

	snapshot := t.CurrentSnapshot()
	for _, fn := range subs {
		fn(snapshot)
	}
}
