package tracker

import (
	"time"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
)

// Status is a point-in-time view of the tracker for collaborators.
type Status struct {
	IsLoading bool

	// LastError is the error of a category whose most recent fetch failed,
	// nil once every category has succeeded again.
	LastError      error
	CategoryErrors map[adsb.Category]error

	// LastUpdate is when a batch was last merged; zero before the first one.
	LastUpdate time.Time

	CurrentInterval time.Duration
	CurrentZoom     float64

	Viewport    Viewport
	HasViewport bool
	Enabled     adsb.CategorySet
	Paused      bool
	Cached      int
	Generation  uint64
}

// Stale reports whether no batch has been merged within threshold of now,
// the signal for a "service may be experiencing issues" notice.
func (s Status) Stale(now time.Time, threshold time.Duration) bool {
	if s.LastUpdate.IsZero() {
		return s.HasViewport && !s.Paused
	}
	return now.Sub(s.LastUpdate) > threshold
}

// Status returns the current status.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	errs := make(map[adsb.Category]error, len(t.catErrs))
	for c, err := range t.catErrs {
		errs[c] = err
	}

	return Status{
		IsLoading:       t.inFlight > 0,
		LastError:       t.lastErr,
		CategoryErrors:  errs,
		LastUpdate:      t.lastUpdate,
		CurrentInterval: t.interval,
		CurrentZoom:     t.viewport.Zoom,
		Viewport:        t.viewport,
		HasViewport:     t.hasViewport,
		Enabled:         t.enabled.OrDefault(),
		Paused:          t.paused,
		Cached:          t.cache.Len(),
		Generation:      t.generation,
	}
}
