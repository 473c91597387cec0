// Package timeline owns the month/entry collection. Every mutation updates the
// in-memory graph synchronously and then asks the save scheduler to persist the
// whole timeline as one record under a single key.
package timeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/scheduler"
	"github.com/Tiliavir/activity-timeline/internal/storage"
)

// DefaultKey is the storage key of the timeline record.
const DefaultKey = "timeline"

// ErrNotLoaded is returned by writes while the persisted record could not be
// read, so that an unreadable timeline is never overwritten by a partial one.
var ErrNotLoaded = errors.New("timeline was not loaded")

// Store is the timeline data store.
type Store struct {
	adapter storage.Adapter
	key     string
	clock   clockwork.Clock
	logger  *slog.Logger
	newID   func() string
	saver   *scheduler.Scheduler

	mu          sync.RWMutex
	months      []model.Month
	lastUpdated *time.Time
	// loadErr is set while the last Load could not read the record.
	loadErr error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock for timestamps, the current month and save timers.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithIDGenerator overrides the random UUID entry ids.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New returns an empty Store backed by adapter. Call Load to restore persisted state.
func New(adapter storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		key:     DefaultKey,
		clock:   clockwork.NewRealClock(),
		logger:  slog.Default(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.saver = scheduler.New(s.persist,
		scheduler.WithClock(s.clock),
		scheduler.WithLogger(s.logger),
	)
	return s
}

// Load replaces the in-memory timeline with the persisted record. Missing or
// malformed data leaves the timeline empty; malformed data is copied to
// "<key>.corrupt" first. It reports whether a record was restored.
//
// A read error is returned and, until a later Load succeeds, every save
// fails with ErrNotLoaded.
func (s *Store) Load() (bool, error) {
	raw, ok, err := s.adapter.Get(s.key)
	if err != nil {
		s.reset()
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return false, fmt.Errorf("load timeline: %w", err)
	}
	s.mu.Lock()
	s.loadErr = nil
	s.mu.Unlock()
	if !ok {
		s.reset()
		return false, nil
	}

	d, err := decode(raw)
	if err != nil {
		backup := s.key + ".corrupt"
		if berr := s.adapter.Set(backup, raw); berr != nil {
			s.logger.Error("could not back up malformed timeline", "key", backup, "error", berr)
		}
		s.logger.Warn("malformed timeline, starting empty", "key", s.key, "backup", backup, "error", err)
		s.reset()
		return false, nil
	}
	if d.badTimestamp != "" {
		s.logger.Warn("ignoring unparsable lastUpdated", "value", d.badTimestamp)
	}

	s.mu.Lock()
	s.months = d.months
	s.lastUpdated = d.lastUpdated
	s.mu.Unlock()
	s.logger.Debug("timeline loaded", "months", len(d.months))
	return true, nil
}

func (s *Store) reset() {
	s.mu.Lock()
	s.months = nil
	s.lastUpdated = nil
	s.mu.Unlock()
}

// persist writes the state as it is at the moment of the call.
func (s *Store) persist() error {
	s.mu.RLock()
	if s.loadErr != nil {
		err := s.loadErr
		s.mu.RUnlock()
		return fmt.Errorf("save timeline: %w: %w", ErrNotLoaded, err)
	}
	data, err := encode(s.months, s.lastUpdated)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := s.adapter.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("save timeline: %w", err)
	}
	return nil
}

// Save writes the timeline now, bypassing the scheduler.
func (s *Store) Save() error {
	return s.persist()
}

// Flush performs any deferred write that is still pending and retries the
// last write if it failed.
func (s *Store) Flush() error {
	return s.saver.Flush()
}

// Close flushes pending or failed writes and closes the adapter if it holds resources.
func (s *Store) Close() error {
	err := s.Flush()
	if c, ok := s.adapter.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// Clear empties the timeline and removes the persisted record immediately.
func (s *Store) Clear() error {
	s.saver.Cancel()
	s.reset()
	if err := s.adapter.Remove(s.key); err != nil {
		return fmt.Errorf("clear timeline: %w", err)
	}
	s.mu.Lock()
	s.loadErr = nil
	s.mu.Unlock()
	return nil
}

// touch stamps lastUpdated. Callers hold s.mu.
func (s *Store) touch() {
	now := s.clock.Now()
	s.lastUpdated = &now
}

// commit releases the write lock taken by a mutation and schedules a save.
// The lock must not be held while the scheduler runs, since an immediate
// write reads the state under s.mu.
func (s *Store) commit() {
	s.mu.Unlock()
	s.saver.Request()
}
