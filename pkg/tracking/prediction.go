// Package tracking estimates where an aircraft is now from its last report.
package tracking

import (
	"math"
	"time"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

const (
	// horizon is how far ahead a prediction keeps any confidence
	horizon = 60 * time.Second

	// staleReport halves confidence once the report is older than this
	staleReport = 10 * time.Second
)

// Prediction is an aircraft's dead-reckoned position.
type Prediction struct {
	Position coordinates.Geographic

	// AltitudeFt is absent when the report had no barometric altitude
	AltitudeFt *float64

	// At is when the prediction is valid
	At time.Time

	// Confidence falls from 1 to 0 over the prediction horizon
	Confidence float64

	// Extrapolated is false when the report was returned unchanged
	Extrapolated bool
}

// ObservedAt is when the feed last heard the aircraft, given the time the
// batch was produced. Seen is relative to that.
func ObservedAt(ac adsb.Aircraft, batchTime time.Time) time.Time {
	if ac.Seen == nil || *ac.Seen <= 0 {
		return batchTime
	}
	return batchTime.Add(-time.Duration(*ac.Seen * float64(time.Second)))
}

// Predict extrapolates ac, last heard at observed, to at. It assumes constant
// ground speed, track and vertical rate, with no wind correction. ok is false
// when the aircraft has no position.
func Predict(ac adsb.Aircraft, observed, at time.Time) (p Prediction, ok bool) {
	pos, ok := ac.Position()
	if !ok {
		return Prediction{}, false
	}

	p = Prediction{Position: pos, At: at, Confidence: 1}
	if ac.AltBaro != nil {
		alt := float64(*ac.AltBaro)
		p.AltitudeFt = &alt
	}

	dt := at.Sub(observed)
	if dt <= 0 || ac.OnGround || ac.GroundSpeed == nil || ac.Track == nil {
		return p, true
	}

	p.Extrapolated = true
	p.Confidence = math.Max(0, 1-dt.Seconds()/horizon.Seconds())
	if at.Sub(observed) > staleReport {
		p.Confidence *= 0.5
	}

	// One knot is one nautical mile per hour
	distanceNM := *ac.GroundSpeed * dt.Hours()
	p.Position = coordinates.Destination(pos, *ac.Track, distanceNM)

	if p.AltitudeFt != nil && ac.BaroRate != nil {
		alt := *p.AltitudeFt + float64(*ac.BaroRate)*dt.Minutes()
		if alt < 0 {
			alt = 0
			p.Confidence *= 0.5
		}
		p.AltitudeFt = &alt
	}

	return p, true
}

// PredictWithLatency predicts ac latency past now, for a report taken from a
// batch produced at batchTime.
func PredictWithLatency(ac adsb.Aircraft, batchTime, now time.Time, latency time.Duration) (Prediction, bool) {
	return Predict(ac, ObservedAt(ac, batchTime), now.Add(latency))
}
