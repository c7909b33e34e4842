package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/airports"
	"github.com/unklstewy/adsb-tracker/pkg/config"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/tracker"
)

type fakeTracker struct {
	viewports []tracker.Viewport
	status    tracker.Status
}

func (f *fakeTracker) SetViewport(center coordinates.Geographic, radiusNM, zoom float64) error {
	f.viewports = append(f.viewports, tracker.Viewport{Center: center, RadiusNM: radiusNM, Zoom: zoom})
	return nil
}

func (f *fakeTracker) SetEnabledCategories(set adsb.CategorySet) error {
	f.status.Enabled = set
	return nil
}

func (f *fakeTracker) Pause()                 { f.status.Paused = true }
func (f *fakeTracker) Resume()                { f.status.Paused = false }
func (f *fakeTracker) Status() tracker.Status { return f.status }

func (f *fakeTracker) last() tracker.Viewport {
	return f.viewports[len(f.viewports)-1]
}

func newTestModel() (model, *fakeTracker) {
	cfg := config.DefaultConfig()
	cfg.Observer.Latitude = 35.2144
	cfg.Observer.Longitude = -80.9431
	cfg.Observer.RadiusNM = 40
	cfg.Observer.Zoom = 10

	ft := &fakeTracker{status: tracker.Status{Enabled: adsb.NewCategorySet(adsb.Regular)}}
	return newModel(ft, airports.Default(), cfg, make(chan []adsb.Aircraft)), ft
}

func press(m model, keys ...tea.KeyMsg) model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ptr[T any](v T) *T { return &v }

func TestPanMovesCenterByQuarterRadius(t *testing.T) {
	m, ft := newTestModel()
	start := m.center

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})

	require.Len(t, ft.viewports, 1)
	vp := ft.last()
	assert.Greater(t, vp.Center.Latitude, start.Latitude)
	assert.InDelta(t, 10.0, coordinates.DistanceNauticalMiles(start, vp.Center), 0.01)
	assert.Equal(t, vp.Center, m.center)
}

func TestZoomHalvesAndDoublesRadius(t *testing.T) {
	m, ft := newTestModel()

	m = press(m, runes("+"))
	assert.Equal(t, 20.0, ft.last().RadiusNM)
	assert.Equal(t, 11.0, ft.last().Zoom)

	m = press(m, runes("-"), runes("-"))
	assert.Equal(t, 80.0, ft.last().RadiusNM)
	assert.Equal(t, 9.0, ft.last().Zoom)

	for i := 0; i < 5; i++ {
		m = press(m, runes("-"))
	}
	assert.Equal(t, adsb.MaxRegularRadiusNM, m.radiusNM)
}

func TestCategoryToggle(t *testing.T) {
	m, ft := newTestModel()

	m = press(m, runes("3"))
	assert.True(t, ft.status.Enabled.Has(adsb.Military))
	assert.True(t, m.status.Enabled.Has(adsb.Military))

	m = press(m, runes("3"))
	assert.False(t, ft.status.Enabled.Has(adsb.Military))
	assert.True(t, m.status.Enabled.Has(adsb.Regular))
}

func TestPauseToggle(t *testing.T) {
	m, ft := newTestModel()

	m = press(m, runes("p"))
	assert.True(t, ft.status.Paused)

	m = press(m, runes("p"))
	assert.False(t, ft.status.Paused)
	assert.False(t, m.status.Paused)
}

func TestGoToAirport(t *testing.T) {
	m, ft := newTestModel()

	m = press(m, runes("g"), runes("j"), runes("f"), runes("k"), tea.KeyMsg{Type: tea.KeyEnter})

	require.NoError(t, m.err)
	assert.False(t, m.inputMode)
	assert.InDelta(t, 40.6413, ft.last().Center.Latitude, 1e-6)
	assert.InDelta(t, -73.7781, ft.last().Center.Longitude, 1e-6)
}

func TestGoToUnknownAirport(t *testing.T) {
	m, ft := newTestModel()

	m = press(m, runes("g"), runes("zzzz"), tea.KeyMsg{Type: tea.KeyEnter})

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "ZZZZ")
	assert.Empty(t, ft.viewports)
}

func TestSnapshotSortedByDistanceKeepsSelection(t *testing.T) {
	m, _ := newTestModel()

	near := adsb.Aircraft{Hex: "aaaaaa", Lat: ptr(35.22), Lon: ptr(-80.94)}
	far := adsb.Aircraft{Hex: "bbbbbb", Lat: ptr(35.60), Lon: ptr(-80.94)}
	blind := adsb.Aircraft{Hex: "cccccc"}

	next, _ := m.Update(snapshotMsg{blind, far, near})
	m = next.(model)
	require.Len(t, m.aircraft, 3)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb", "cccccc"},
		[]string{m.aircraft[0].Hex, m.aircraft[1].Hex, m.aircraft[2].Hex})

	m = press(m, runes("j"))
	assert.Equal(t, "bbbbbb", m.selectedHex())

	closer := adsb.Aircraft{Hex: "dddddd", Lat: ptr(35.2144), Lon: ptr(-80.9431)}
	next, _ = m.Update(snapshotMsg{near, far, closer})
	m = next.(model)
	assert.Equal(t, "bbbbbb", m.selectedHex())
}

func TestScopeProjection(t *testing.T) {
	center := coordinates.Geographic{Latitude: 35, Longitude: -80}
	s := newScope(center, 50, 80, 30)

	x, y, ok := s.project(center)
	require.True(t, ok)
	cx, cy := s.origin()
	assert.Equal(t, cx, x)
	assert.Equal(t, cy, y)

	north := coordinates.Destination(center, 0, 25)
	x, y, ok = s.project(north)
	require.True(t, ok)
	assert.Equal(t, cx, x)
	assert.Less(t, y, cy)

	east := coordinates.Destination(center, 90, 25)
	x, _, ok = s.project(east)
	require.True(t, ok)
	assert.Greater(t, x, cx)

	_, _, ok = s.project(coordinates.Destination(center, 45, 60))
	assert.False(t, ok)
}

func TestRenderRadarLabelsSelected(t *testing.T) {
	center := coordinates.Geographic{Latitude: 35, Longitude: -80}
	pos := coordinates.Destination(center, 0, 10)
	ac := adsb.Aircraft{Hex: "abc123", Flight: "DAL42  ", Lat: &pos.Latitude, Lon: &pos.Longitude}

	out := renderRadar(center, 50, []adsb.Aircraft{ac}, "abc123", 60, 20)

	assert.Contains(t, out, "DAL42")
	assert.Equal(t, 22, strings.Count(out, "\n")+1)
}

func TestRingSpacing(t *testing.T) {
	assert.Equal(t, 5.0, ringSpacing(20))
	assert.Equal(t, 25.0, ringSpacing(100))
	assert.Equal(t, 100.0, ringSpacing(250))
	assert.Equal(t, 250.0, ringSpacing(2000))
}
