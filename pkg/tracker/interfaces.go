package tracker

//go:generate mockgen -destination=mock_tracker.go -package=tracker github.com/unklstewy/adsb-tracker/pkg/tracker Fetcher

import (
	"context"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
)

// Fetcher retrieves one category's aircraft. *adsb.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, q adsb.Query) (adsb.Batch, error)
}
