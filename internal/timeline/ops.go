package timeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Tiliavir/activity-timeline/internal/model"
)

// maxIDAttempts bounds retries when a generated id collides with an existing one.
const maxIDAttempts = 8

// errNoUniqueID is returned when the id generator keeps producing taken ids.
var errNoUniqueID = errors.New("could not generate a unique entry id")

// normalizeText trims s and converts it to Unicode NFC so visually equal
// names compare equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// checkFields validates the user-editable fields of an entry.
func checkFields(name string, t model.EntryType, st model.Status) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", model.ErrInvalidEntry)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: unknown type %q", model.ErrInvalidEntry, t)
	}
	if !st.Valid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrInvalidEntry, st)
	}
	return nil
}

// AddEntry appends a new entry to the month at key, creating the month if needed.
// The entry gets a fresh id; an empty draft status means not_started.
func (s *Store) AddEntry(key model.MonthKey, draft model.EntryDraft) (model.Entry, error) {
	if err := key.Validate(); err != nil {
		return model.Entry{}, err
	}
	e := model.Entry{
		Name:   normalizeText(draft.Name),
		Type:   draft.Type,
		Status: draft.Status,
		Notes:  normalizeText(draft.Notes),
	}
	if e.Status == "" {
		e.Status = model.StatusNotStarted
	}
	if err := checkFields(e.Name, e.Type, e.Status); err != nil {
		return model.Entry{}, err
	}

	s.mu.Lock()
	id, err := s.uniqueID()
	if err != nil {
		s.mu.Unlock()
		return model.Entry{}, err
	}
	e.ID = id

	if i := indexOf(s.months, key); i >= 0 {
		s.months[i].Entries = append(s.months[i].Entries, e)
	} else {
		s.months = append(s.months, model.Month{Year: key.Year, Month: key.Month, Entries: []model.Entry{e}})
		sortMonths(s.months)
	}
	s.touch()
	s.commit()
	return e, nil
}

// uniqueID returns an id not used anywhere in the timeline. Callers hold s.mu.
func (s *Store) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, _, found := s.locate(id); !found {
			return id, nil
		}
	}
	return "", errNoUniqueID
}

// DeleteEntry removes the entry with id from the month at key, pruning the
// month if it becomes empty. It reports whether an entry was removed.
func (s *Store) DeleteEntry(key model.MonthKey, id string) bool {
	s.mu.Lock()
	mi, ei := s.position(key, id)
	if ei < 0 {
		s.mu.Unlock()
		return false
	}
	s.removeAt(mi, ei)
	s.touch()
	s.commit()
	return true
}

// UpdateEntry overwrites the name, type, status and notes of the entry in the
// month at key whose id matches patch.ID. It reports whether an entry was
// found; invalid patch fields are rejected before any lookup.
func (s *Store) UpdateEntry(key model.MonthKey, patch model.Entry) (bool, error) {
	name := normalizeText(patch.Name)
	if err := checkFields(name, patch.Type, patch.Status); err != nil {
		return false, err
	}

	s.mu.Lock()
	mi, ei := s.position(key, patch.ID)
	if ei < 0 {
		s.mu.Unlock()
		return false, nil
	}
	e := &s.months[mi].Entries[ei]
	e.Name = name
	e.Type = patch.Type
	e.Status = patch.Status
	e.Notes = normalizeText(patch.Notes)
	s.touch()
	s.commit()
	return true, nil
}

// MoveEntry relocates the entry with id from one month to another, pruning
// the source month if it becomes empty and creating the destination if
// needed. When the source month or entry is missing the timeline is left
// untouched and false is returned. An invalid destination is an error.
func (s *Store) MoveEntry(id string, from, to model.MonthKey) (bool, error) {
	if err := to.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	mi, ei := s.position(from, id)
	if ei < 0 {
		s.mu.Unlock()
		return false, nil
	}
	e := s.months[mi].Entries[ei]
	s.removeAt(mi, ei)

	if ti := indexOf(s.months, to); ti >= 0 {
		s.months[ti].Entries = append(s.months[ti].Entries, e)
	} else {
		s.months = append(s.months, model.Month{Year: to.Year, Month: to.Month, Entries: []model.Entry{e}})
		sortMonths(s.months)
	}
	s.touch()
	s.commit()
	return true, nil
}

// AdvanceStatus moves the entry one step along its lifecycle and returns the
// new status. It reports false when the entry is not found.
func (s *Store) AdvanceStatus(key model.MonthKey, id string) (model.Status, bool) {
	s.mu.Lock()
	mi, ei := s.position(key, id)
	if ei < 0 {
		s.mu.Unlock()
		return "", false
	}
	e := &s.months[mi].Entries[ei]
	e.Status = e.Status.Next()
	next := e.Status
	s.touch()
	s.commit()
	return next, true
}

// PruneEmptyMonths drops every month without entries and returns how many
// were dropped. A save is always scheduled.
func (s *Store) PruneEmptyMonths() int {
	s.mu.Lock()
	before := len(s.months)
	s.months = slices.DeleteFunc(s.months, func(m model.Month) bool { return len(m.Entries) == 0 })
	removed := before - len(s.months)
	if removed > 0 {
		s.touch()
	}
	s.commit()
	return removed
}

// position returns the indexes of the entry id within the month at key.
// ei is -1 when either is missing. Callers hold s.mu.
func (s *Store) position(key model.MonthKey, id string) (mi, ei int) {
	mi = indexOf(s.months, key)
	if mi < 0 {
		return -1, -1
	}
	ei = slices.IndexFunc(s.months[mi].Entries, func(e model.Entry) bool { return e.ID == id })
	return mi, ei
}

// locate finds id anywhere in the timeline. Callers hold s.mu.
func (s *Store) locate(id string) (mi, ei int, found bool) {
	for i := range s.months {
		for j := range s.months[i].Entries {
			if s.months[i].Entries[j].ID == id {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// removeAt deletes one entry and prunes its month by key if it is left empty.
// Callers hold s.mu.
func (s *Store) removeAt(mi, ei int) {
	m := &s.months[mi]
	m.Entries = slices.Delete(m.Entries, ei, ei+1)
	if len(m.Entries) == 0 {
		key := m.Key()
		s.months = slices.DeleteFunc(s.months, func(o model.Month) bool { return o.Key() == key })
	}
}
