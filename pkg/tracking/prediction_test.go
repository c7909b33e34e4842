package tracking

import (
	"math"
	"testing"
	"time"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

func ptr[T any](v T) *T { return &v }

func TestPredict(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	start := coordinates.Geographic{Latitude: 35.0, Longitude: -80.0}

	cruising := adsb.Aircraft{
		Hex:         "a12345",
		Lat:         ptr(start.Latitude),
		Lon:         ptr(start.Longitude),
		AltBaro:     ptr(int64(10000)),
		GroundSpeed: ptr(360.0), // 6 nm per minute
		Track:       ptr(90.0),
		BaroRate:    ptr(int64(1200)),
	}

	tests := []struct {
		name         string
		aircraft     adsb.Aircraft
		after        time.Duration
		wantDistance float64
		wantAltitude float64
		wantConf     float64
		extrapolated bool
	}{
		{
			name:         "Zero delta returns the report",
			aircraft:     cruising,
			after:        0,
			wantDistance: 0,
			wantAltitude: 10000,
			wantConf:     1,
		},
		{
			name:         "Ten seconds east while climbing",
			aircraft:     cruising,
			after:        10 * time.Second,
			wantDistance: 1,
			wantAltitude: 10200,
			wantConf:     1 - 10.0/60.0,
			extrapolated: true,
		},
		{
			name:         "Thirty seconds is stale and half as confident",
			aircraft:     cruising,
			after:        30 * time.Second,
			wantDistance: 3,
			wantAltitude: 10600,
			wantConf:     0.25,
			extrapolated: true,
		},
		{
			name: "Aircraft on the ground stays put",
			aircraft: adsb.Aircraft{
				Hex: "a12345", Lat: ptr(35.0), Lon: ptr(-80.0), OnGround: true,
				GroundSpeed: ptr(20.0), Track: ptr(180.0),
			},
			after:    30 * time.Second,
			wantConf: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Predict(tt.aircraft, base, base.Add(tt.after))
			if !ok {
				t.Fatal("Predict() ok = false")
			}

			if d := coordinates.DistanceNauticalMiles(start, p.Position); math.Abs(d-tt.wantDistance) > 0.01 {
				t.Errorf("distance = %.3f nm, want %.3f", d, tt.wantDistance)
			}
			if tt.wantAltitude != 0 && (p.AltitudeFt == nil || math.Abs(*p.AltitudeFt-tt.wantAltitude) > 0.5) {
				t.Errorf("altitude = %v, want %.0f", p.AltitudeFt, tt.wantAltitude)
			}
			if math.Abs(p.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("confidence = %.3f, want %.3f", p.Confidence, tt.wantConf)
			}
			if p.Extrapolated != tt.extrapolated {
				t.Errorf("extrapolated = %v, want %v", p.Extrapolated, tt.extrapolated)
			}
		})
	}
}

func TestPredictHeadsAlongTrack(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ac := adsb.Aircraft{Lat: ptr(35.0), Lon: ptr(-80.0), GroundSpeed: ptr(480.0), Track: ptr(0.0)}

	p, _ := Predict(ac, base, base.Add(15*time.Second))

	if p.Position.Latitude <= 35.0 {
		t.Errorf("latitude = %f, want north of 35", p.Position.Latitude)
	}
	if math.Abs(p.Position.Longitude+80.0) > 1e-9 {
		t.Errorf("longitude = %f, want -80", p.Position.Longitude)
	}
}

func TestPredictClampsAtGround(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ac := adsb.Aircraft{
		Lat: ptr(35.0), Lon: ptr(-80.0), AltBaro: ptr(int64(200)),
		GroundSpeed: ptr(140.0), Track: ptr(45.0), BaroRate: ptr(int64(-1500)),
	}

	p, _ := Predict(ac, base, base.Add(20*time.Second))

	if p.AltitudeFt == nil || *p.AltitudeFt != 0 {
		t.Errorf("altitude = %v, want 0", p.AltitudeFt)
	}
	want := (1 - 20.0/60.0) * 0.5 * 0.5
	if math.Abs(p.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", p.Confidence, want)
	}
}

func TestPredictWithoutPosition(t *testing.T) {
	if _, ok := Predict(adsb.Aircraft{Hex: "a12345"}, time.Now(), time.Now()); ok {
		t.Error("Predict() ok = true for an aircraft without position")
	}
}

func TestObservedAt(t *testing.T) {
	batch := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := ObservedAt(adsb.Aircraft{}, batch); !got.Equal(batch) {
		t.Errorf("ObservedAt() without seen = %v, want %v", got, batch)
	}
	if got := ObservedAt(adsb.Aircraft{Seen: ptr(2.5)}, batch); !got.Equal(batch.Add(-2500 * time.Millisecond)) {
		t.Errorf("ObservedAt() = %v", got)
	}
}

func TestPredictWithLatency(t *testing.T) {
	batch := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ac := adsb.Aircraft{
		Lat: ptr(35.0), Lon: ptr(-80.0), GroundSpeed: ptr(360.0), Track: ptr(90.0), Seen: ptr(4.0),
	}

	// Heard 4s before the batch, predicted 6s after it: 10s at 6 nm/min
	p, ok := PredictWithLatency(ac, batch, batch.Add(4*time.Second), 2*time.Second)
	if !ok {
		t.Fatal("PredictWithLatency() ok = false")
	}
	start := coordinates.Geographic{Latitude: 35.0, Longitude: -80.0}
	if d := coordinates.DistanceNauticalMiles(start, p.Position); math.Abs(d-1) > 0.01 {
		t.Errorf("distance = %.3f nm, want 1", d)
	}
}
