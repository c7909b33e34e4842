package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func aircraft(hex string, alt *int64) adsb.Aircraft {
	lat, lon := 50.0, 14.0
	return adsb.Aircraft{Hex: hex, Lat: &lat, Lon: &lon, AltBaro: alt, Flight: "TEST1"}
}

func alt(v int64) *int64 { return &v }

func hexes(records []adsb.Aircraft) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Hex)
	}
	return out
}

var all = adsb.NewCategorySet(adsb.AllCategories()...)

func TestMergeAndSnapshot(t *testing.T) {
	c := New(Config{})

	stats := c.Merge([]adsb.Aircraft{aircraft("a1", alt(1000)), aircraft("a2", alt(30000))}, adsb.Regular, t0)
	assert.Equal(t, MergeStats{Added: 2}, stats)

	snap := c.Snapshot(t0, all)
	require.Len(t, snap, 2)
	assert.Equal(t, []string{"a2", "a1"}, hexes(snap))
	assert.Equal(t, adsb.Regular, snap[0].Source)
}

func TestMergeSkipsUnpositioned(t *testing.T) {
	c := New(Config{})

	noPos := adsb.Aircraft{Hex: "a1", Flight: "X"}

	stats := c.Merge([]adsb.Aircraft{noPos, aircraft("a3", nil), {}}, adsb.Regular, t0)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, c.Len())
}

func TestValidityAppliesOnRead(t *testing.T) {
	c := New(Config{Validity: adsb.RequirePositionAndCallsign})

	noCallsign := aircraft("a2", nil)
	noCallsign.Flight = "  "

	stats := c.Merge([]adsb.Aircraft{noCallsign, aircraft("a3", nil)}, adsb.Regular, t0)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 2, c.Len(), "records without a callsign are kept")

	assert.Equal(t, []string{"a3"}, hexes(c.Snapshot(t0, all)))
	_, _, ok := c.Get("a2", t0)
	assert.False(t, ok)

	// A silent callsign still refreshes the entry and keeps it from expiring.
	later := t0.Add(DefaultRetention)
	c.Merge([]adsb.Aircraft{noCallsign}, adsb.Regular, later)
	end := later.Add(DefaultRetention)
	assert.Equal(t, 1, c.Evict(end), "only a3 has gone silent")

	named := aircraft("a2", nil)
	named.Flight = "CSA2"
	c.Merge([]adsb.Aircraft{named}, adsb.Regular, end)

	got, seen, ok := c.Get("a2", end)
	require.True(t, ok)
	assert.Equal(t, "CSA2", got.Flight)
	assert.Equal(t, end, seen)
}

func TestMergeIsIdempotent(t *testing.T) {
	batch := []adsb.Aircraft{aircraft("a1", alt(1000)), aircraft("a2", nil)}

	once := New(Config{})
	once.Merge(batch, adsb.Military, t0)

	twice := New(Config{})
	twice.Merge(batch, adsb.Military, t0)
	stats := twice.Merge(batch, adsb.Military, t0)
	assert.Equal(t, 2, stats.Updated)

	assert.Equal(t, once.Snapshot(t0, all), twice.Snapshot(t0, all))

	later := t0.Add(3 * time.Second)
	twice.Merge(batch, adsb.Military, later)
	_, seen, ok := twice.Get("a1", later)
	require.True(t, ok)
	assert.Equal(t, later, seen)
	assert.Equal(t, once.Snapshot(t0, all), twice.Snapshot(later, all))
}

func TestMergeKeepsNewerObservation(t *testing.T) {
	c := New(Config{})

	c.Merge([]adsb.Aircraft{aircraft("a1", alt(5000))}, adsb.Regular, t0.Add(2*time.Second))
	stats := c.Merge([]adsb.Aircraft{aircraft("a1", alt(4000))}, adsb.Military, t0)

	assert.Equal(t, 1, stats.Skipped)
	ac, _, ok := c.Get("a1", t0.Add(2*time.Second))
	require.True(t, ok)
	assert.Equal(t, int64(5000), *ac.AltBaro)
	assert.Equal(t, adsb.Regular, ac.Source)
}

func TestCategoryOverwrittenOnRefresh(t *testing.T) {
	c := New(Config{})

	c.Merge([]adsb.Aircraft{aircraft("a1", nil)}, adsb.Regular, t0)
	c.Merge([]adsb.Aircraft{aircraft("a1", nil)}, adsb.Military, t0.Add(time.Second))

	assert.Empty(t, c.Snapshot(t0.Add(time.Second), adsb.NewCategorySet(adsb.Regular)))
	assert.Len(t, c.Snapshot(t0.Add(time.Second), adsb.NewCategorySet(adsb.Military)), 1)
	assert.Equal(t, 1, c.Len())
}

func TestEvictionBoundary(t *testing.T) {
	const eps = time.Nanosecond
	c := New(Config{Retention: 10 * time.Second})

	c.Merge([]adsb.Aircraft{aircraft("old", nil)}, adsb.Regular, t0)
	now := t0.Add(10*time.Second + eps)
	c.Merge([]adsb.Aircraft{aircraft("fresh", nil)}, adsb.Regular, now.Add(-10*time.Second+eps))

	snap := c.Snapshot(now, all)
	assert.Equal(t, []string{"fresh"}, hexes(snap))

	exactly := New(Config{Retention: 10 * time.Second})
	exactly.Merge([]adsb.Aircraft{aircraft("edge", nil)}, adsb.Regular, t0)
	assert.Len(t, exactly.Snapshot(t0.Add(10*time.Second), all), 1)
}

func TestMergeEvicts(t *testing.T) {
	c := New(Config{})

	c.Merge([]adsb.Aircraft{aircraft("a1", nil)}, adsb.Regular, t0)
	stats := c.Merge([]adsb.Aircraft{aircraft("a2", nil)}, adsb.PIA, t0.Add(11*time.Second))

	assert.Equal(t, 1, stats.Evicted)
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, 1, c.Evict(t0.Add(30*time.Second)))
	assert.Zero(t, c.Len())
}

func TestSnapshotFilter(t *testing.T) {
	inserts := []struct {
		hex string
		cat adsb.Category
	}{
		{"r1", adsb.Regular}, {"m1", adsb.Military}, {"p1", adsb.PIA}, {"l1", adsb.LADD},
	}

	for _, order := range [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}} {
		c := New(Config{})
		for _, i := range order {
			c.Merge([]adsb.Aircraft{aircraft(inserts[i].hex, nil)}, inserts[i].cat, t0)
		}

		snap := c.Snapshot(t0, adsb.NewCategorySet(adsb.Regular, adsb.Military))
		assert.Equal(t, []string{"m1", "r1"}, hexes(snap))
	}
}

func TestSnapshotOrdering(t *testing.T) {
	c := New(Config{})
	c.Merge([]adsb.Aircraft{
		aircraft("c", nil),
		aircraft("b", alt(2000)),
		aircraft("a", nil),
		aircraft("d", alt(2000)),
		aircraft("e", alt(39000)),
	}, adsb.Regular, t0)

	assert.Equal(t, []string{"e", "b", "d", "a", "c"}, hexes(c.Snapshot(t0, all)))
}

func TestFlush(t *testing.T) {
	c := New(Config{})
	c.Merge([]adsb.Aircraft{aircraft("a1", nil), aircraft("a2", nil)}, adsb.Regular, t0)

	c.Flush()

	assert.Zero(t, c.Len())
	assert.Empty(t, c.Snapshot(t0, all))
	_, _, ok := c.Get("a1", t0)
	assert.False(t, ok)
}
