// Package scheduler drives periodic aircraft polling. A Scheduler is either
// Stopped or Running at one interval; starting it again replaces the running
// loop, and stopping guarantees that no further tick fires once Stop returns.
package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the scheduler state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Config configures the burst of rapid polls issued when the viewport moves
// to a new area.
type Config struct {
	// BurstCount is the number of rapid polls, including the immediate one (default: 3)
	BurstCount int

	// BurstInterval is the spacing between burst polls (default: 1 second)
	BurstInterval time.Duration
}

// DefaultConfig returns the default burst settings.
func DefaultConfig() Config {
	return Config{
		BurstCount:    3,
		BurstInterval: time.Second,
	}
}

// Scheduler calls a tick function on a repeating interval.
//
// The tick function runs on the scheduler goroutine and should return quickly;
// it may call State and Interval but must not call Start or Stop.
type Scheduler struct {
	cfg    Config
	clock  Clock
	tick   func()
	logger zerolog.Logger

	// ctlMu serializes Start and Stop.
	ctlMu sync.Mutex

	mu       sync.Mutex
	state    State
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// New creates a stopped scheduler. A nil clock selects the real clock.
func New(cfg Config, clock Clock, tick func(), logger zerolog.Logger) *Scheduler {
	if cfg.BurstCount <= 0 {
		cfg.BurstCount = 1
	}
	if cfg.BurstInterval <= 0 {
		cfg.BurstInterval = time.Second
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		cfg:    cfg,
		clock:  clock,
		tick:   tick,
		logger: logger,
	}
}

// Start (re)starts the loop: one tick fires immediately, then, when burst is
// set, BurstCount-1 more at BurstInterval, then one every interval. Any
// running loop is stopped first.
func (s *Scheduler) Start(interval time.Duration, burst bool) {
	if interval <= 0 {
		interval = MinInterval
	}

	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	s.halt()

	stop := make(chan struct{})
	done := make(chan struct{})

	s.mu.Lock()
	s.state = Running
	s.interval = interval
	s.stop = stop
	s.done = done
	s.mu.Unlock()

	s.logger.Info().Dur("interval", interval).Bool("burst", burst).Msg("Poll scheduler started")

	go s.run(interval, burst, stop, done)
}

// Stop moves to Stopped. It is idempotent and returns only after the loop has
// exited, so no tick fires after it returns.
func (s *Scheduler) Stop() {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	if s.halt() {
		s.logger.Info().Msg("Poll scheduler stopped")
	}
}

// halt stops the running loop, if any. Caller holds ctlMu.
func (s *Scheduler) halt() bool {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.state = Stopped
	s.mu.Unlock()

	if stop == nil {
		return false
	}
	close(stop)
	<-done
	return true
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interval returns the steady-state interval of the running loop, or the
// last one used when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) run(interval time.Duration, burst bool, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if !s.fire(stop) {
		return
	}

	if burst && s.cfg.BurstCount > 1 && !s.loop(s.cfg.BurstInterval, s.cfg.BurstCount-1, stop) {
		return
	}

	s.loop(interval, -1, stop)
}

// loop fires count ticks (forever when count < 0) spaced by every. It reports
// false when stopped.
func (s *Scheduler) loop(every time.Duration, count int, stop <-chan struct{}) bool {
	ticker := s.clock.Ticker(every)
	defer ticker.Stop()
	c := ticker.Chan()

	for fired := 0; count < 0 || fired < count; fired++ {
		select {
		case <-stop:
			return false
		case <-c:
		}
		if !s.fire(stop) {
			return false
		}
	}
	return true
}

func (s *Scheduler) fire(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return false
	default:
	}
	s.tick()
	return true
}
