package schedule

import (
	"fmt"
	"time"
)

// Window is a recurring daily interval [From, To).
// From later than To spans midnight; From equal to To is never open.
type Window struct {
	From CivilTime `json:"from"`
	To   CivilTime `json:"to"`
}

// ParseWindow builds a Window from two "HH:MM" strings.
func ParseWindow(from, to string) (Window, error) {
	f, err := ParseCivilTime(from)
	if err != nil {
		return Window{}, fmt.Errorf("from: %w", err)
	}
	t, err := ParseCivilTime(to)
	if err != nil {
		return Window{}, fmt.Errorf("to: %w", err)
	}
	return Window{From: f, To: t}, nil
}

// MustParseWindow is ParseWindow for literals known to be valid.
func MustParseWindow(from, to string) Window {
	w, err := ParseWindow(from, to)
	if err != nil {
		panic(err)
	}
	return w
}

// SpansMidnight reports whether the window wraps past 24:00.
func (w Window) SpansMidnight() bool {
	return w.From.Minutes() > w.To.Minutes()
}

// IsDegenerate reports a zero-length window. It is never open.
func (w Window) IsDegenerate() bool {
	return w.From.Minutes() == w.To.Minutes()
}

// Contains reports whether t's wall-clock minute falls inside the window.
// The start minute is inclusive and the end minute exclusive.
func (w Window) Contains(t time.Time) bool {
	m := CivilTimeOf(t).Minutes()
	from, to := w.From.Minutes(), w.To.Minutes()
	switch {
	case from < to:
		return m >= from && m < to
	case from > to:
		return m >= from || m < to
	default:
		return false
	}
}

// NextChange returns the first instant strictly after now at which the window
// opens (if closed at now) or closes (if open at now). Degenerate windows never change.
func (w Window) NextChange(now time.Time) (time.Time, bool) {
	if w.IsDegenerate() {
		return time.Time{}, false
	}
	if w.Contains(now) {
		return nextOccurrence(w.To, now), true
	}
	return nextOccurrence(w.From, now), true
}

// NextOpening returns the first instant strictly after now at which the window opens.
func (w Window) NextOpening(now time.Time) (time.Time, bool) {
	if w.IsDegenerate() {
		return time.Time{}, false
	}
	return nextOccurrence(w.From, now), true
}

func (w Window) String() string {
	return w.From.String() + "-" + w.To.String()
}

// NextChange returns the nearest state change among windows, or false when
// no window can change.
func NextChange(windows []Window, now time.Time) (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	for _, w := range windows {
		at, ok := w.NextChange(now)
		if !ok {
			continue
		}
		if !found || at.Before(best) {
			best = at
			found = true
		}
	}
	return best, found
}
