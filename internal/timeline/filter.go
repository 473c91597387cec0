package timeline

import (
	"slices"

	"github.com/Tiliavir/activity-timeline/internal/model"
)

// Filter narrows a month projection to some entry types and statuses.
// An empty list matches everything.
type Filter struct {
	Types    []model.EntryType
	Statuses []model.Status
}

// Active reports whether the filter restricts anything.
func (f Filter) Active() bool {
	return len(f.Types) != 0 || len(f.Statuses) != 0
}

// Reset clears the filter so it shows everything.
func (f *Filter) Reset() {
	f.Types = nil
	f.Statuses = nil
}

// Match reports whether e passes the filter.
func (f Filter) Match(e model.Entry) bool {
	if len(f.Types) != 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}
	if len(f.Statuses) != 0 && !slices.Contains(f.Statuses, e.Status) {
		return false
	}
	return true
}

// Apply returns the months with only matching entries. Months left without
// entries are dropped, except those that were already empty (such as the
// current-month placeholder).
func (f Filter) Apply(months []model.Month) []model.Month {
	if !f.Active() {
		return months
	}
	out := make([]model.Month, 0, len(months))
	for _, m := range months {
		if len(m.Entries) == 0 {
			out = append(out, m)
			continue
		}
		kept := make([]model.Entry, 0, len(m.Entries))
		for _, e := range m.Entries {
			if f.Match(e) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, model.Month{Year: m.Year, Month: m.Month, Entries: kept})
	}
	return out
}
