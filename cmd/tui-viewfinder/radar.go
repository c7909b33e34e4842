package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

// Terminal cells are roughly twice as tall as they are wide; X distances are
// stretched by 1/aspectRatio so range rings come out round.
const aspectRatio = 0.5

// scope maps geographic positions onto a character grid centered on center.
type scope struct {
	center   coordinates.Geographic
	radiusNM float64
	width    int
	height   int
	scale    float64 // cells per nautical mile, vertically
}

func newScope(center coordinates.Geographic, radiusNM float64, width, height int) scope {
	maxY := float64(height/2 - 1)
	maxX := float64(width/2-2) * aspectRatio
	return scope{
		center:   center,
		radiusNM: radiusNM,
		width:    width,
		height:   height,
		scale:    math.Min(maxX, maxY) / radiusNM,
	}
}

func (s scope) origin() (int, int) {
	return s.width / 2, s.height / 2
}

// project returns the cell for pos, or ok=false when it lies outside the
// radius or the grid.
func (s scope) project(pos coordinates.Geographic) (x, y int, ok bool) {
	dist := coordinates.DistanceNauticalMiles(s.center, pos)
	if dist > s.radiusNM {
		return 0, 0, false
	}

	brg := coordinates.Bearing(s.center, pos) * coordinates.DegreesToRadians
	r := dist * s.scale
	cx, cy := s.origin()

	x = cx + int(math.Round(r*math.Sin(brg)/aspectRatio))
	y = cy - int(math.Round(r*math.Cos(brg)))
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return 0, 0, false
	}
	return x, y, true
}

// ringSpacing picks a round ring distance giving at most four rings.
func ringSpacing(radiusNM float64) float64 {
	for _, d := range []float64{5, 10, 25, 50, 100} {
		if radiusNM/d <= 4 {
			return d
		}
	}
	return 250
}

func renderRadar(center coordinates.Geographic, radiusNM float64, aircraft []adsb.Aircraft, selected string, width, height int) string {
	s := newScope(center, radiusNM, width, height)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	put := func(x, y int, r rune) {
		if y >= 0 && y < height && x >= 0 && x < width {
			grid[y][x] = r
		}
	}
	cx, cy := s.origin()

	spacing := ringSpacing(radiusNM)
	for d := spacing; d <= radiusNM; d += spacing {
		r := d * s.scale
		for a := 0.0; a < 360; a += 2 {
			rad := a * coordinates.DegreesToRadians
			put(cx+int(math.Round(r*math.Sin(rad)/aspectRatio)), cy-int(math.Round(r*math.Cos(rad))), '·')
		}
		text := fmt.Sprintf("%.0f", d)
		for i, ch := range text {
			put(cx+1+i, cy-int(math.Round(r)), ch)
		}
	}

	edge := radiusNM * s.scale
	put(cx, cy-int(edge), 'N')
	put(cx, cy+int(edge), 'S')
	put(cx+int(edge/aspectRatio), cy, 'E')
	put(cx-int(edge/aspectRatio), cy, 'W')
	put(cx, cy, '+')

	type label struct {
		x, y int
		text string
	}
	var labels []label

	for _, ac := range aircraft {
		pos, ok := ac.Position()
		if !ok {
			continue
		}
		x, y, ok := s.project(pos)
		if !ok {
			continue
		}

		if ac.Track != nil && !ac.OnGround {
			drawVector(grid, x, y, *ac.Track)
		}

		switch {
		case ac.Hex == selected:
			put(x, y, '◉')
			text := ac.Callsign()
			if text == "" {
				text = ac.Hex
			}
			labels = append(labels, label{x: x + 2, y: y, text: text})
		case ac.IsEmergency:
			put(x, y, '!')
		case ac.IsMilitary:
			put(x, y, '◆')
		default:
			put(x, y, '○')
		}
	}

	for _, l := range labels {
		for i, ch := range l.text {
			put(l.x+i, l.y, ch)
		}
	}

	border := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	var b strings.Builder
	b.WriteString(border.Render("┌" + strings.Repeat("─", width) + "┐"))
	b.WriteString("\n")
	for _, row := range grid {
		b.WriteString(border.Render("│"))
		for _, ch := range row {
			b.WriteString(styleFor(ch).Render(string(ch)))
		}
		b.WriteString(border.Render("│"))
		b.WriteString("\n")
	}
	b.WriteString(border.Render("└" + strings.Repeat("─", width) + "┘"))
	return b.String()
}

// drawVector draws a two-cell heading tick ahead of an aircraft symbol.
func drawVector(grid [][]rune, x, y int, trackDeg float64) {
	rad := trackDeg * coordinates.DegreesToRadians
	for i := 1; i <= 2; i++ {
		nx := x + int(math.Round(float64(i)*math.Sin(rad)/aspectRatio))
		ny := y - int(math.Round(float64(i)*math.Cos(rad)))
		if ny >= 0 && ny < len(grid) && nx >= 0 && nx < len(grid[ny]) && grid[ny][nx] == ' ' {
			grid[ny][nx] = '.'
		}
	}
}

var (
	ringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	planeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	originStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	plainStyle  = lipgloss.NewStyle()
)

func styleFor(ch rune) lipgloss.Style {
	switch ch {
	case '·', '.':
		return ringStyle
	case '○':
		return planeStyle
	case '◆':
		return milStyle
	case '◉':
		return selStyle
	case '!':
		return errStyle
	case '+':
		return originStyle
	case 'N', 'E', 'S', 'W':
		return dimStyle
	default:
		if ch >= '0' && ch <= '9' {
			return dimStyle
		}
		return plainStyle
	}
}
