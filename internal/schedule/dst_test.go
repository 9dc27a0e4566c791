package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-29 02:00 CET jumps to 03:00 CEST (01:00 UTC).
func copenhagen(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)
	return loc
}

func TestCivilTime_OnDateSkippedHour(t *testing.T) {
	loc := copenhagen(t)
	day := time.Date(2026, 3, 29, 0, 0, 0, 0, loc)
	jump := time.Date(2026, 3, 29, 1, 0, 0, 0, time.UTC)

	got := CivilTime{Hour: 2, Minute: 45}.OnDate(day)
	assert.True(t, got.Equal(jump), "got %s", got)
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 0, got.Minute())

	got = CivilTime{Hour: 10, Minute: 0}.OnDate(day)
	assert.True(t, got.Equal(time.Date(2026, 3, 29, 8, 0, 0, 0, time.UTC)))
}

func TestWindow_NextChangeAcrossSkippedHour(t *testing.T) {
	loc := copenhagen(t)
	now := time.Date(2026, 3, 29, 0, 30, 0, 0, loc)
	jump := time.Date(2026, 3, 29, 1, 0, 0, 0, time.UTC)

	w := MustParseWindow("02:45", "05:00")
	got, ok := w.NextChange(now)
	require.True(t, ok)
	assert.True(t, got.Equal(jump), "got %s", got)
	assert.True(t, w.Contains(got))

	got, ok = w.NextOpening(now)
	require.True(t, ok)
	assert.True(t, got.Equal(jump))
}
