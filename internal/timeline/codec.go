package timeline

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/Tiliavir/activity-timeline/internal/model"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// record is the persisted shape of a timeline.
type record struct {
	Months      []model.Month `json:"months"`
	LastUpdated *string       `json:"lastUpdated"`
	// LastSynced is the field name used by older records; read only.
	LastSynced *string `json:"lastSynced,omitempty"`
}

func encode(months []model.Month, lastUpdated *time.Time) ([]byte, error) {
	rec := record{Months: months}
	if rec.Months == nil {
		rec.Months = []model.Month{}
	}
	if lastUpdated != nil {
		ts := lastUpdated.UTC().Format(timestampLayout)
		rec.LastUpdated = &ts
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal timeline: %w", err)
	}
	return data, nil
}

// decoded is the result of decoding a record. badTimestamp is set when a
// timestamp was present but could not be parsed.
type decoded struct {
	months       []model.Month
	lastUpdated  *time.Time
	badTimestamp string
}

// decode parses and normalizes a persisted record: months with the same key
// are merged, empty months are dropped and the result is sorted. Invalid
// months or entries and duplicate entry ids make the whole record malformed.
func decode(raw string) (decoded, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return decoded{}, fmt.Errorf("parse timeline: %w", err)
	}

	var months []model.Month
	ids := map[string]model.MonthKey{}
	for _, m := range rec.Months {
		key := m.Key()
		if err := key.Validate(); err != nil {
			return decoded{}, err
		}
		for _, e := range m.Entries {
			if err := e.Validate(); err != nil {
				return decoded{}, err
			}
			if prev, dup := ids[e.ID]; dup {
				return decoded{}, fmt.Errorf("%w: id %s appears in %s and %s", model.ErrInvalidEntry, e.ID, prev, key)
			}
			ids[e.ID] = key
		}
		if len(m.Entries) == 0 {
			continue
		}
		if i := indexOf(months, key); i >= 0 {
			months[i].Entries = append(months[i].Entries, m.Entries...)
			continue
		}
		months = append(months, m.Clone())
	}
	sortMonths(months)

	out := decoded{months: months}
	ts := rec.LastUpdated
	if ts == nil {
		ts = rec.LastSynced
	}
	if ts != nil && *ts != "" {
		t, err := time.Parse(time.RFC3339Nano, *ts)
		if err != nil {
			out.badTimestamp = *ts
		} else {
			out.lastUpdated = &t
		}
	}
	return out, nil
}

func sortMonths(months []model.Month) {
	slices.SortFunc(months, func(a, b model.Month) int {
		return a.Key().Compare(b.Key())
	})
}

func indexOf(months []model.Month, key model.MonthKey) int {
	return slices.IndexFunc(months, func(m model.Month) bool { return m.Key() == key })
}
