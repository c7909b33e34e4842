package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/internal/db"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
)

// SnapshotStore persists tracker snapshots.
type SnapshotStore interface {
	RecordSnapshot(ctx context.Context, aircraft []adsb.Aircraft, now time.Time) (db.RecordStats, error)
}

type pending struct {
	aircraft []adsb.Aircraft
	at       time.Time
}

// Recorder hands tracker snapshots to a store on its own goroutine. Offer
// never blocks: when the store falls behind, only the newest snapshot is kept.
type Recorder struct {
	store  SnapshotStore
	logger zerolog.Logger
	now    func() time.Time
	queue  chan pending

	recorded atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store SnapshotStore, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
		queue:  make(chan pending, 1),
	}
}

// Offer queues a snapshot, replacing one that has not been written yet.
// It matches the tracker subscriber signature.
func (r *Recorder) Offer(aircraft []adsb.Aircraft) {
	if len(aircraft) == 0 {
		return
	}
	p := pending{aircraft: aircraft, at: r.now()}

	for {
		select {
		case r.queue <- p:
			return
		default:
		}
		select {
		case <-r.queue:
			r.dropped.Add(1)
		default:
		}
	}
}

// Run writes queued snapshots until ctx is done.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-r.queue:
			stats, err := r.store.RecordSnapshot(ctx, p.aircraft, p.at)
			if err != nil {
				r.failed.Add(1)
				if ctx.Err() == nil {
					r.logger.Warn().Err(err).Int("aircraft", len(p.aircraft)).Msg("Failed to record snapshot")
				}
				continue
			}
			r.recorded.Add(1)
			r.logger.Debug().
				Int("upserted", stats.Upserted).
				Int("positions", stats.Positions).
				Msg("Snapshot recorded")
		}
	}
}

// RecorderStats counts snapshots by outcome.
type RecorderStats struct {
	Recorded int64
	Dropped  int64
	Failed   int64
}

// Stats returns the running counters.
func (r *Recorder) Stats() RecorderStats {
	return RecorderStats{
		Recorded: r.recorded.Load(),
		Dropped:  r.dropped.Load(),
		Failed:   r.failed.Load(),
	}
}

const (
	// cleanupInterval is how often recorded data is aged out
	cleanupInterval = time.Minute

	// visibleFor is how long a recorded aircraft stays visible after its last sighting
	visibleFor = 5 * time.Minute
)

// Cleaner ages out recorded data.
type Cleaner interface {
	CleanupOldData(ctx context.Context, now time.Time, maxAge time.Duration) error
}

// RunCleanup calls CleanupOldData every interval until ctx is done.
func RunCleanup(ctx context.Context, c Cleaner, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := c.CleanupOldData(ctx, now, visibleFor); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("Cleanup failed")
			}
		}
	}
}

// Record subscribes a recorder for database to the tracker and keeps the
// stored data aged out. Both stop when ctx is done.
func (a *App) Record(ctx context.Context, database *db.DB) *Recorder {
	log := a.Logger.With().Str("component", "recorder").Logger()

	rec := NewRecorder(db.NewSightingRepository(database, log), log)
	unsubscribe := a.Tracker.Subscribe(rec.Offer)

	go rec.Run(ctx)
	go RunCleanup(ctx, database, cleanupInterval, log)
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return rec
}
