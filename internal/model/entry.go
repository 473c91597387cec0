package model

import (
	"cmp"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidMonth is returned for a (year, month) pair outside the calendar.
	ErrInvalidMonth = errors.New("invalid month")
	// ErrInvalidEntry is returned for an entry with a missing name or an unknown type or status.
	ErrInvalidEntry = errors.New("invalid entry")
)

// EntryType is the kind of activity an entry tracks.
type EntryType string

const (
	TypeLearn EntryType = "learn"
	TypePlay  EntryType = "play"
	TypeWatch EntryType = "watch"
	TypeRead  EntryType = "read"
)

// EntryTypes lists every entry type in display order.
var EntryTypes = []EntryType{TypeLearn, TypePlay, TypeWatch, TypeRead}

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case TypeLearn, TypePlay, TypeWatch, TypeRead:
		return true
	}
	return false
}

// ParseEntryType converts s into an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown type %q (want learn, play, watch or read)", ErrInvalidEntry, s)
	}
	return t, nil
}

// Entry is a single tracked activity.
type Entry struct {
	ID     string    `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Type   EntryType `json:"type" yaml:"type"`
	Status Status    `json:"status" yaml:"status"`
	Notes  string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate checks the fields a stored entry must carry.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: entry %s has an empty name", ErrInvalidEntry, e.ID)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: entry %s has unknown type %q", ErrInvalidEntry, e.ID, e.Type)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: entry %s has unknown status %q", ErrInvalidEntry, e.ID, e.Status)
	}
	return nil
}

// EntryDraft carries the user-supplied fields of a new entry. The id is
// assigned by the store. An empty Status means StatusNotStarted.
type EntryDraft struct {
	Name   string
	Type   EntryType
	Status Status
	Notes  string
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
}

// Validate rejects keys outside years 1–9999 or months 1–12.
func (k MonthKey) Validate() error {
	if k.Year < 1 || k.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidMonth, k.Year)
	}
	if k.Month < 1 || k.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidMonth, k.Month)
	}
	return nil
}

// String formats the key as YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// Compare orders keys by year, then month.
func (k MonthKey) Compare(o MonthKey) int {
	if k.Year != o.Year {
		return cmp.Compare(k.Year, o.Year)
	}
	return cmp.Compare(k.Month, o.Month)
}

// Month holds the entries recorded for one calendar month.
type Month struct {
	Year    int     `json:"year" yaml:"year"`
	Month   int     `json:"month" yaml:"month"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Key returns the month's (year, month) key.
func (m Month) Key() MonthKey {
	return MonthKey{Year: m.Year, Month: m.Month}
}

// Clone returns a deep copy of m.
func (m Month) Clone() Month {
	entries := make([]Entry, len(m.Entries))
	copy(entries, m.Entries)
	return Month{Year: m.Year, Month: m.Month, Entries: entries}
}

// Timeline is a read-only snapshot of the whole collection.
type Timeline struct {
	Months      []Month    `json:"months" yaml:"months"`
	LastUpdated *time.Time `json:"lastUpdated" yaml:"lastUpdated"`
}
