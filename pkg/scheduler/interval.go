package scheduler

import (
	"math"
	"time"
)

const (
	MinZoom = 5.0
	MaxZoom = 20.0

	// FastZoom is the zoom at and above which polling runs at MinInterval.
	FastZoom = 15.0

	MinInterval = 5 * time.Second
	MaxInterval = 30 * time.Second
)

// IntervalForZoom maps a map zoom level to a poll interval. Street-level zoom
// polls every 5s; the interval grows exponentially as the map zooms out, up
// to 30s at continent scale:
//
//	f(z) = 5s * 6^((15-z)/10), z clamped to [5,20], rounded to whole seconds
func IntervalForZoom(zoom float64) time.Duration {
	if math.IsNaN(zoom) {
		zoom = MinZoom
	}
	zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
	if zoom >= FastZoom {
		return MinInterval
	}

	seconds := math.Round(MinInterval.Seconds() * math.Pow(6, (FastZoom-zoom)/10))
	d := time.Duration(seconds) * time.Second

	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}
