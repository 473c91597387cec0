package timeline

import (
	"time"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
)

// AllMonths returns a sorted deep copy of the timeline's months.
func (s *Store) AllMonths() []model.Month {
	s.mu.RLock()
	out := make([]model.Month, len(s.months))
	for i, m := range s.months {
		out[i] = m.Clone()
	}
	s.mu.RUnlock()
	sortMonths(out)
	return out
}

// MonthsIncludingCurrent is AllMonths plus an empty placeholder for the
// current calendar month when it has no entries. The placeholder is never stored.
func (s *Store) MonthsIncludingCurrent() []model.Month {
	out := s.AllMonths()
	cur := timecalc.MonthOf(s.clock.Now())
	if indexOf(out, cur) < 0 {
		out = append(out, model.Month{Year: cur.Year, Month: cur.Month, Entries: []model.Entry{}})
		sortMonths(out)
	}
	return out
}

// Month returns a copy of the month at key.
func (s *Store) Month(key model.MonthKey) (model.Month, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.months, key)
	if i < 0 {
		return model.Month{}, false
	}
	return s.months[i].Clone(), true
}

// Find returns the month key and a copy of the entry with id.
func (s *Store) Find(id string) (model.MonthKey, model.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mi, ei, ok := s.locate(id)
	if !ok {
		return model.MonthKey{}, model.Entry{}, false
	}
	return s.months[mi].Key(), s.months[mi].Entries[ei], true
}

// Count returns the number of months in the timeline.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.months)
}

// LastUpdated returns the time of the last mutation, or nil.
func (s *Store) LastUpdated() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated == nil {
		return nil
	}
	t := *s.lastUpdated
	return &t
}

// Snapshot returns the months and lastUpdated as one consistent copy.
func (s *Store) Snapshot() model.Timeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tl := model.Timeline{Months: make([]model.Month, len(s.months))}
	for i, m := range s.months {
		tl.Months[i] = m.Clone()
	}
	sortMonths(tl.Months)
	if s.lastUpdated != nil {
		t := *s.lastUpdated
		tl.LastUpdated = &t
	}
	return tl
}
