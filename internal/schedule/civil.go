// Package schedule models recurring daily order windows on the local wall clock.
package schedule

import (
	"cmp"
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// CivilTime is an hour:minute point of a day with no date and no zone.
type CivilTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseCivilTime parses "HH:MM".
func ParseCivilTime(s string) (CivilTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return CivilTime{}, fmt.Errorf("invalid time format '%s', expected HH:MM", s)
	}
	return CivilTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// CivilTimeOf returns the wall-clock hour and minute of t in t's location.
func CivilTimeOf(t time.Time) CivilTime {
	return CivilTime{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns minutes since midnight.
func (c CivilTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Compare orders by hour, then minute.
func (c CivilTime) Compare(o CivilTime) int {
	return cmp.Compare(c.Minutes(), o.Minutes())
}

// Valid reports whether the fields are within 00:00..23:59.
func (c CivilTime) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

// OnDate places c on the calendar day of day, in day's location. A wall time
// skipped by a daylight saving jump maps to the first instant after the jump.
func (c CivilTime) OnDate(day time.Time) time.Time {
	t := time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
	if t.Hour() != c.Hour || t.Minute() != c.Minute {
		if start, _ := t.ZoneBounds(); !start.IsZero() && start.Before(t) {
			return start
		}
	}
	return t
}

func (c CivilTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days keeping the wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// nextOccurrence returns the first instant strictly after now whose wall clock reads c.
func nextOccurrence(c CivilTime, now time.Time) time.Time {
	at := c.OnDate(now)
	if !at.After(now) {
		at = c.OnDate(AddDays(StartOfDay(now), 1))
	}
	return at
}
