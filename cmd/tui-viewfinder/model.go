package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/airports"
	"github.com/unklstewy/adsb-tracker/pkg/config"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/tracker"
)

const (
	minRadiusNM = 5.0
	maxZoom     = 20.0
	minZoom     = 1.0

	// listRows is how many aircraft the side panel shows
	listRows = 20
)

// viewTracker is what the UI needs from the tracker.
type viewTracker interface {
	SetViewport(center coordinates.Geographic, radiusNM, zoom float64) error
	SetEnabledCategories(set adsb.CategorySet) error
	Pause()
	Resume()
	Status() tracker.Status
}

type snapshotMsg []adsb.Aircraft

type tickMsg time.Time

type model struct {
	trk      viewTracker
	airports *airports.Directory
	updates  <-chan []adsb.Aircraft

	center   coordinates.Geographic
	radiusNM float64
	zoom     float64

	aircraft []adsb.Aircraft
	status   tracker.Status
	selected int

	inputMode bool
	input     string

	staleAfter time.Duration
	err        error
	width      int
	height     int
}

func newModel(trk viewTracker, dir *airports.Directory, cfg *config.Config, updates <-chan []adsb.Aircraft) model {
	return model{
		trk:        trk,
		airports:   dir,
		updates:    updates,
		center:     cfg.Observer.Center(),
		radiusNM:   cfg.Observer.RadiusNM,
		zoom:       cfg.Observer.Zoom,
		status:     trk.Status(),
		staleAfter: cfg.Tracker.StaleThreshold(),
		width:      120,
		height:     40,
	}
}

func waitForSnapshot(ch <-chan []adsb.Aircraft) tea.Cmd {
	return func() tea.Msg {
		list, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(list)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		m.setAircraft(msg)
		m.status = m.trk.Status()
		return m, waitForSnapshot(m.updates)

	case tickMsg:
		m.status = m.trk.Status()
		return m, tick()

	case tea.KeyMsg:
		if m.inputMode {
			return m.updateInput(msg), nil
		}
		return m.updateKey(msg)
	}

	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "w":
		m.pan(0)
	case "right", "d":
		m.pan(90)
	case "down", "s":
		m.pan(180)
	case "left", "a":
		m.pan(270)

	case "+", "=":
		m.radiusNM = max(m.radiusNM/2, minRadiusNM)
		m.zoom = min(m.zoom+1, maxZoom)
		m.applyViewport()
	case "-", "_":
		m.radiusNM = min(m.radiusNM*2, adsb.MaxRegularRadiusNM)
		m.zoom = max(m.zoom-1, minZoom)
		m.applyViewport()

	case "1", "2", "3", "4":
		c := adsb.AllCategories()[msg.String()[0]-'1']
		m.toggleCategory(c)

	case "p", " ":
		if m.status.Paused {
			m.trk.Resume()
		} else {
			m.trk.Pause()
		}
		m.status = m.trk.Status()

	case "j":
		if m.selected < len(m.aircraft)-1 {
			m.selected++
		}
	case "k":
		if m.selected > 0 {
			m.selected--
		}

	case "g":
		m.inputMode = true
		m.input = ""
	}

	return m, nil
}

// updateInput collects an airport code and recentres on it.
func (m model) updateInput(msg tea.KeyMsg) model {
	switch msg.Type {
	case tea.KeyEnter:
		m.inputMode = false
		a, ok := m.airports.ByICAO(m.input)
		if !ok {
			a, ok = m.airports.ByIATA(m.input)
		}
		if !ok {
			m.err = fmt.Errorf("airport %s not found", strings.ToUpper(m.input))
			return m
		}
		m.center = a.Position()
		m.applyViewport()
	case tea.KeyEsc:
		m.inputMode = false
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input += strings.ToUpper(string(msg.Runes))
	}
	return m
}

// pan moves the center a quarter of the radius along bearing.
func (m *model) pan(bearing float64) {
	m.center = coordinates.Destination(m.center, bearing, m.radiusNM/4)
	m.applyViewport()
}

func (m *model) applyViewport() {
	m.err = m.trk.SetViewport(m.center, m.radiusNM, m.zoom)
	m.status = m.trk.Status()
	m.setAircraft(m.aircraft)
}

func (m *model) toggleCategory(c adsb.Category) {
	set := m.status.Enabled
	if set.Has(c) {
		set = set.Without(c)
	} else {
		set = set.With(c)
	}
	m.err = m.trk.SetEnabledCategories(set)
	m.status = m.trk.Status()
}

// setAircraft stores list sorted by distance from the center, keeping the
// selection on the same aircraft where possible.
func (m *model) setAircraft(list []adsb.Aircraft) {
	var selectedHex string
	if m.selected < len(m.aircraft) {
		selectedHex = m.aircraft[m.selected].Hex
	}

	sorted := make([]adsb.Aircraft, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return m.distance(sorted[i]) < m.distance(sorted[j])
	})
	m.aircraft = sorted

	m.selected = 0
	for i, ac := range sorted {
		if ac.Hex == selectedHex {
			m.selected = i
			break
		}
	}
}

func (m model) distance(ac adsb.Aircraft) float64 {
	pos, ok := ac.Position()
	if !ok {
		return 1e9
	}
	return coordinates.DistanceNauticalMiles(m.center, pos)
}

func (m model) selectedHex() string {
	if m.selected < len(m.aircraft) {
		return m.aircraft[m.selected].Hex
	}
	return ""
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	milStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("ADS-B VIEWFINDER"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	radarWidth, radarHeight := m.radarSize()
	scope := renderRadar(m.center, m.radiusNM, m.aircraft, m.selectedHex(), radarWidth, radarHeight)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, scope, "  ", m.renderPanel()))
	b.WriteString("\n")

	switch {
	case m.inputMode:
		b.WriteString("Airport: " + m.input + "█")
	case m.err != nil:
		b.WriteString(errStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("arrows: pan  +/-: zoom  1-4: categories  p: pause  g: go to airport  j/k: select  q: quit"))

	return b.String()
}

func (m model) radarSize() (int, int) {
	w := m.width - 50
	if w < 60 {
		w = 60
	}
	h := m.height - 6
	if h < 20 {
		h = 20
	}
	return w, h
}

func (m model) statusLine() string {
	st := m.status
	parts := []string{
		m.center.String(),
		fmt.Sprintf("%.0f nm", m.radiusNM),
		fmt.Sprintf("zoom %.0f", m.zoom),
		fmt.Sprintf("every %s", st.CurrentInterval),
	}
	if st.IsLoading {
		parts = append(parts, "loading")
	}

	line := dimStyle.Render(strings.Join(parts, " | "))
	if st.Paused {
		line += " " + warnStyle.Render("PAUSED")
	}
	if st.Stale(time.Now(), m.staleAfter) {
		line += " " + warnStyle.Render("STALE")
	}
	if st.LastError != nil {
		line += " " + errStyle.Render(st.LastError.Error())
	}
	return line
}

func (m model) renderPanel() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("SOURCES"))
	b.WriteString("\n")
	for i, c := range adsb.AllCategories() {
		mark := dimStyle.Render("[ ]")
		if m.status.Enabled.Has(c) {
			mark = onStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %d %s", mark, i+1, c)
		if err, ok := m.status.CategoryErrors[c]; ok {
			line += " " + errStyle.Render(err.Error())
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("AIRCRAFT (%d)", len(m.aircraft))))
	b.WriteString("\n")

	for i, ac := range m.aircraft {
		if i >= listRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(m.aircraft)-listRows)))
			b.WriteString("\n")
			break
		}

		line := aircraftLine(ac, m.distance(ac))
		switch {
		case i == m.selected:
			line = selStyle.Render(line)
		case ac.IsEmergency:
			line = errStyle.Render(line)
		case ac.IsMilitary:
			line = milStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.selected < len(m.aircraft) {
		b.WriteString("\n")
		b.WriteString(m.renderDetail(m.aircraft[m.selected]))
	}

	return b.String()
}

func aircraftLine(ac adsb.Aircraft, distNM float64) string {
	callsign := ac.Callsign()
	if callsign == "" {
		callsign = ac.Hex
	}

	alt := "     -"
	switch {
	case ac.OnGround:
		alt = "   GND"
	case ac.AltBaro != nil:
		alt = fmt.Sprintf("%6d", *ac.AltBaro)
	}

	dist := "   -"
	if distNM < 1e9 {
		dist = fmt.Sprintf("%4.0f", distNM)
	}

	return fmt.Sprintf("%-8s %-4s %s ft %s nm", callsign, ac.TypeDesignator, alt, dist)
}

func (m model) renderDetail(ac adsb.Aircraft) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(ac.Hex)))
	b.WriteString("\n")

	field := func(label, value string) {
		if value != "" {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%-9s", label)) + value + "\n")
		}
	}

	field("Callsign", ac.Callsign())
	field("Reg", ac.Registration)
	field("Type", ac.TypeDesignator)
	field("Category", ac.CategoryDescription())
	field("Source", ac.Source.String())
	field("Feeder", string(ac.Feeder))
	if ac.Squawk != "" {
		sq := ac.Squawk
		if s := ac.SpecialSquawk(); s != "" {
			sq += " (" + s + ")"
		}
		field("Squawk", sq)
	}
	if ac.GroundSpeed != nil {
		field("Speed", fmt.Sprintf("%.0f kt", *ac.GroundSpeed))
	}
	if ac.Track != nil {
		field("Track", fmt.Sprintf("%03.0f°", *ac.Track))
	}
	if pos, ok := ac.Position(); ok {
		field("Bearing", fmt.Sprintf("%03.0f°", coordinates.Bearing(m.center, pos)))
	}
	if ac.IsMilitary {
		b.WriteString(milStyle.Render("MILITARY") + "\n")
	}
	if ac.IsEmergency {
		b.WriteString(errStyle.Render("EMERGENCY "+ac.Emergency) + "\n")
	}

	return b.String()
}
