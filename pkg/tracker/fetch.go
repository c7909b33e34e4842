package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
)

// fetchEnabled is the scheduler tick.
func (t *Tracker) fetchEnabled() {
	t.mu.RLock()
	set := t.enabled.OrDefault()
	t.mu.RUnlock()

	t.fetch(set)
}

// fetch issues one concurrent request per category in set. Results land in
// the cache asynchronously, tagged with the generation current at issue time.
func (t *Tracker) fetch(set adsb.CategorySet) {
	t.mu.Lock()
	if t.closed || t.paused || !t.hasViewport {
		t.mu.Unlock()
		return
	}
	vp := t.viewport
	gen := t.generation
	cats := set.Categories()
	t.inFlight += len(cats)
	t.wg.Add(len(cats))
	t.mu.Unlock()

	for _, c := range cats {
		q := adsb.Query{Category: c}
		if c == adsb.Regular {
			q.Lat = vp.Center.Latitude
			q.Lon = vp.Center.Longitude
			q.RadiusNM = vp.RadiusNM
		}
		go t.fetchOne(q, gen)
	}
}

func (t *Tracker) fetchOne(q adsb.Query, gen uint64) {
	defer t.wg.Done()

	ctx, cancel := context.WithTimeout(t.root, t.cfg.FetchTimeout)
	defer cancel()

	batch, err := t.fetcher.Fetch(ctx, q)
	if err == nil && batch.Malformed() {
		err = fmt.Errorf("%s: %w: %d records undecodable", q.Category, adsb.ErrMalformedBatch, batch.Dropped)
	}
	now := t.clock.Now()

	t.mu.Lock()
	t.inFlight--

	if gen != t.generation {
		t.mu.Unlock()
		t.logger.Debug().
			Str("category", q.Category.String()).
			Uint64("generation", gen).
			Msg("Discarded result from superseded generation")
		return
	}

	if err != nil {
		if !t.enabled.OrDefault().Has(q.Category) {
			t.mu.Unlock()
			return
		}
		t.catErrs[q.Category] = err
		t.lastErr = err
		t.mu.Unlock()

		if !errors.Is(err, context.Canceled) {
			t.logger.Warn().Err(err).Str("category", q.Category.String()).Msg("Fetch failed")
		}
		return
	}

	if q.Category == adsb.Military {
		for i := range batch.Aircraft {
			batch.Aircraft[i].IsMilitary = true
		}
	}

	stats := t.cache.Merge(batch.Aircraft, q.Category, now)
	delete(t.catErrs, q.Category)
	t.lastErr = t.firstCategoryErrorLocked()
	t.lastUpdate = now
	t.mu.Unlock()

	t.logger.Debug().
		Str("category", q.Category.String()).
		Int("received", len(batch.Aircraft)).
		Int("dropped", batch.Dropped).
		Int("added", stats.Added).
		Int("updated", stats.Updated).
		Int("evicted", stats.Evicted).
		Msg("Merged batch")

	t.notify()
}

// firstCategoryErrorLocked returns the error of the first still-failing
// enabled category in declaration order, or nil.
func (t *Tracker) firstCategoryErrorLocked() error {
	enabled := t.enabled.OrDefault()
	for _, c := range adsb.AllCategories() {
		if !enabled.Has(c) {
			continue
		}
		if err, ok := t.catErrs[c]; ok {
			return err
		}
	}
	return nil
}
