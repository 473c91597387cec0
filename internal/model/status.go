package model

import "fmt"

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status that follows s. Completed is terminal.
func (s Status) Next() Status {
	if s == StatusNotStarted {
		return StatusInProgress
	}
	return StatusCompleted
}

// ParseStatus converts s into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q (want not_started, in_progress or completed)", ErrInvalidEntry, s)
	}
	return st, nil
}
