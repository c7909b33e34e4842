package coordinates

import (
	"math"
	"testing"
)

// TestDistanceNauticalMiles tests great-circle distance against known airport pairs.
func TestDistanceNauticalMiles(t *testing.T) {
	tests := []struct {
		name     string
		from     Geographic
		to       Geographic
		expected float64
		tol      float64
	}{
		{
			name:     "Same point",
			from:     Geographic{Latitude: 50.1008, Longitude: 14.26},
			to:       Geographic{Latitude: 50.1008, Longitude: 14.26},
			expected: 0,
			tol:      1e-9,
		},
		{
			name:     "One degree of latitude",
			from:     Geographic{Latitude: 0, Longitude: 0},
			to:       Geographic{Latitude: 1, Longitude: 0},
			expected: 60.04,
			tol:      0.1,
		},
		{
			name:     "LKPR to EDDF",
			from:     Geographic{Latitude: 50.1008, Longitude: 14.26},
			to:       Geographic{Latitude: 50.0379, Longitude: 8.5622},
			expected: 219,
			tol:      3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceNauticalMiles(tt.from, tt.to)
			if math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("Expected %.2f NM, got %.2f", tt.expected, got)
			}
		})
	}
}

// TestBearing tests cardinal bearings.
func TestBearing(t *testing.T) {
	origin := Geographic{Latitude: 0, Longitude: 0}

	tests := []struct {
		name     string
		to       Geographic
		expected float64
	}{
		{"North", Geographic{Latitude: 1, Longitude: 0}, 0},
		{"East", Geographic{Latitude: 0, Longitude: 1}, 90},
		{"South", Geographic{Latitude: -1, Longitude: 0}, 180},
		{"West", Geographic{Latitude: 0, Longitude: -1}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(origin, tt.to)
			if math.Abs(got-tt.expected) > 0.01 {
				t.Errorf("Expected bearing %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

// TestNormalizeBearing tests wrap-around.
func TestNormalizeBearing(t *testing.T) {
	tests := []struct {
		input, expected float64
	}{
		{0, 0},
		{360, 0},
		{370, 10},
		{-10, 350},
		{-370, 350},
	}

	for _, tt := range tests {
		if got := NormalizeBearing(tt.input); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("NormalizeBearing(%v) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

// TestDestinationRoundTrip checks Destination against DistanceNauticalMiles and Bearing.
func TestDestinationRoundTrip(t *testing.T) {
	start := Geographic{Latitude: 50.0755, Longitude: 14.4378}

	for _, brg := range []float64{0, 45, 135, 270} {
		dest := Destination(start, brg, 25)

		if d := DistanceNauticalMiles(start, dest); math.Abs(d-25) > 0.01 {
			t.Errorf("bearing %v: expected 25 NM, got %.4f", brg, d)
		}
		if b := Bearing(start, dest); math.Abs(b-brg) > 0.1 && math.Abs(b-brg) < 359.9 {
			t.Errorf("bearing %v: round trip gave %.4f", brg, b)
		}
	}
}

// TestValidate tests WGS84 bounds.
func TestValidate(t *testing.T) {
	if err := (Geographic{Latitude: 50, Longitude: 14}).Validate(); err != nil {
		t.Errorf("Expected valid position, got %v", err)
	}
	if err := (Geographic{Latitude: 91, Longitude: 0}).Validate(); err == nil {
		t.Error("Expected latitude error")
	}
	if err := (Geographic{Latitude: 0, Longitude: -181}).Validate(); err == nil {
		t.Error("Expected longitude error")
	}
	if err := (Geographic{Latitude: math.NaN()}).Validate(); err == nil {
		t.Error("Expected NaN latitude error")
	}
}

// TestString tests hemisphere formatting.
func TestString(t *testing.T) {
	got := Geographic{Latitude: -33.9399, Longitude: 151.1753}.String()
	if got != "33.9399°S, 151.1753°E" {
		t.Errorf("unexpected format %q", got)
	}
}
