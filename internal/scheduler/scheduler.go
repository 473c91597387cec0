// Package scheduler coalesces bursts of save requests into as few writes as
// possible without ever dropping the latest state.
//
// A request made after a quiet period writes immediately. A request made while
// a burst is in progress (a timer is pending, or the previous request was
// recent) re-arms a short timer; only the last armed timer writes, and it
// writes whatever the state is when it fires.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultDelay is how long a deferred write waits for the burst to settle.
	DefaultDelay = 500 * time.Millisecond
	// DefaultQuietPeriod is how long after the previous request a new one is
	// considered the start of a fresh burst and written immediately.
	DefaultQuietPeriod = 5 * time.Second
)

// WriteFunc persists the current state. It is called without any scheduler
// lock held other than the write mutex, so it may read shared state.
type WriteFunc func() error

// Scheduler debounces calls to a WriteFunc.
type Scheduler struct {
	write  WriteFunc
	clock  clockwork.Clock
	logger *slog.Logger
	delay  time.Duration
	quiet  time.Duration

	mu          sync.Mutex
	pending     clockwork.Timer
	gen         uint64
	lastRequest time.Time
	lastErr     error

	// writeMu serializes writes so a late timer and an immediate write never interleave.
	writeMu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock used for timestamps and timers.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger used for write failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.delay = d }
}

// WithQuietPeriod overrides DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Scheduler) { s.quiet = d }
}

// New returns a Scheduler that calls write.
func New(write WriteFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		write:  write,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
		delay:  DefaultDelay,
		quiet:  DefaultQuietPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request asks for the current state to be saved. It never blocks on a
// deferred write and never returns the write's error; failures are logged and
// the next request retries.
func (s *Scheduler) Request() {
	s.mu.Lock()
	now := s.clock.Now()
	idle := s.pending == nil && (s.lastRequest.IsZero() || now.Sub(s.lastRequest) > s.quiet)
	s.lastRequest = now

	if idle {
		s.mu.Unlock()
		s.run("immediate")
		return
	}

	if s.pending != nil {
		s.pending.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()
}

// fire runs a deferred write unless it has been superseded or cancelled.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()
	s.run("deferred")
}

// take detaches the pending timer, if any, and invalidates it.
func (s *Scheduler) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return false
	}
	s.pending.Stop()
	s.pending = nil
	s.gen++
	return true
}

// Flush performs a pending deferred write now, or repeats the last write if it
// failed. It is a no-op when nothing is pending and the last write succeeded.
func (s *Scheduler) Flush() error {
	if !s.take() && s.Err() == nil {
		return nil
	}
	return s.run("flush")
}

// Cancel discards a pending deferred write and waits for any write in progress.
// A failed earlier write is forgotten.
func (s *Scheduler) Cancel() {
	s.take()
	s.waitIdle()
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

// waitIdle blocks until a write started by a timer that fired before take
// has returned, so callers can rely on no write following them.
func (s *Scheduler) waitIdle() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
}

// Err returns the error of the most recent write, or nil if it succeeded.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Pending reports whether a deferred write is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Scheduler) run(reason string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.write()
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("save failed", "reason", reason, "error", err)
		return err
	}
	s.logger.Debug("saved", "reason", reason)
	return nil
}
