package events

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidTimeRange means the requested from/to pair is missing or
	// unparseable.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrSourceUnavailable means the database branch of a merge failed. The
	// database is authoritative, so this is fatal to the whole request.
	ErrSourceUnavailable = errors.New("event source unavailable")
)

// Window is the half-open interval [From, To) a merge query selects against.
type Window struct {
	From time.Time
	To   time.Time
}

// DayWindow is the convention for date-only input: a fixed 24-hour window
// anchored at UTC midnight, independent of any venue-local timezone.
func DayWindow(date time.Time) Window {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return Window{From: start, To: start.Add(24 * time.Hour)}
}

// ParseWindow builds a window from caller-supplied from/to strings. Both are
// required and must parse as absolute instants; a date-only value is read as
// UTC midnight.
func ParseWindow(from, to string) (Window, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return Window{}, fmt.Errorf("%w: from and to are required", ErrInvalidTimeRange)
	}

	start, _, err := ParseTimestamp(from)
	if err != nil {
		return Window{}, fmt.Errorf("%w: from %q", ErrInvalidTimeRange, from)
	}
	end, _, err := ParseTimestamp(to)
	if err != nil {
		return Window{}, fmt.Errorf("%w: to %q", ErrInvalidTimeRange, to)
	}
	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: to must be after from", ErrInvalidTimeRange)
	}
	return Window{From: start, To: end}, nil
}

// Overlaps applies the three-clause inclusion rule for a record spanning
// [s, e] against the window [From, To):
//
//  1. s falls inside [From, To), or
//  2. e falls inside (From, To], or
//  3. the record spans the whole window (s < From and e >= To).
//
// A single containment check misses records that start before the window and
// end after it, and records whose end touches exactly at To.
func (w Window) Overlaps(s, e time.Time) bool {
	if !s.Before(w.From) && s.Before(w.To) {
		return true
	}
	if e.After(w.From) && !e.After(w.To) {
		return true
	}
	if s.Before(w.From) && !e.Before(w.To) {
		return true
	}
	return false
}
