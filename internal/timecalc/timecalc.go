package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/activity-timeline/internal/model"
)

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) model.MonthKey {
	return model.MonthKey{Year: t.Year(), Month: int(t.Month())}
}

// ParseMonth parses "YYYY-MM" (a single-digit month is accepted) into a validated key.
func ParseMonth(s string) (model.MonthKey, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return model.MonthKey{}, fmt.Errorf("%w: %q is not in YYYY-MM form", model.ErrInvalidMonth, s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return model.MonthKey{}, fmt.Errorf("%w: bad year in %q", model.ErrInvalidMonth, s)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return model.MonthKey{}, fmt.Errorf("%w: bad month in %q", model.ErrInvalidMonth, s)
	}
	k := model.MonthKey{Year: y, Month: m}
	if err := k.Validate(); err != nil {
		return model.MonthKey{}, err
	}
	return k, nil
}

// ShiftMonth moves k by n months (negative n moves backwards).
func ShiftMonth(k model.MonthKey, n int) model.MonthKey {
	total := k.Year*12 + (k.Month - 1) + n
	return model.MonthKey{Year: total / 12, Month: total%12 + 1}
}

// MonthLabel returns a label like "May 2024".
func MonthLabel(k model.MonthKey) string {
	return fmt.Sprintf("%s %d", time.Month(k.Month), k.Year)
}

// MonthsBetween returns the number of whole months from a to b.
func MonthsBetween(a, b model.MonthKey) int {
	return (b.Year*12 + b.Month) - (a.Year*12 + a.Month)
}
