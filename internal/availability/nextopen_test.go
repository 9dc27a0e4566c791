package availability

import (
	"testing"
	"time"
	_ "time/tzdata"

	"kiosk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOpen_FailFast(t *testing.T) {
	now := on(wednesday, 7, 0)
	products := []model.Product{product(1, true, "08:00", "14:00")}
	cfg := &model.GlobalConfig{}
	kiosk := &model.Kiosk{ID: 1}

	tests := []struct {
		name     string
		cfg      *model.GlobalConfig
		kiosk    *model.Kiosk
		products []model.Product
	}{
		{"missing config", nil, kiosk, products},
		{"missing kiosk", cfg, nil, products},
		{"no products", cfg, kiosk, nil},
		{"manually deactivated", cfg, &model.Kiosk{ID: 1, ManuallyDeactivated: true}, products},
		{
			"manual with timed deactivation",
			cfg,
			&model.Kiosk{ID: 1, ManuallyDeactivated: true, DeactivatedUntil: ptrTime(now.Add(time.Hour))},
			products,
		},
		{"every weekday disabled", &model.GlobalConfig{DisabledWeekdays: []time.Weekday{0, 1, 2, 3, 4, 5, 6}}, kiosk, products},
		{"every product inactive", cfg, kiosk, []model.Product{product(1, false, "08:00", "14:00"), product(2, false, "15:00", "16:00")}},
		{"only zero length windows", cfg, kiosk, []model.Product{product(1, true, "08:00", "08:00")}},
		{"only missing windows", cfg, kiosk, []model.Product{{ID: 1, IsActive: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NextOpen(tt.cfg, tt.kiosk, tt.products, at(now))
			assert.False(t, ok)
		})
	}
}

func TestNextOpen(t *testing.T) {
	thursday := wednesday.AddDate(0, 0, 1)
	friday := wednesday.AddDate(0, 0, 2)
	sunday := wednesday.AddDate(0, 0, 4)

	morning := []model.Product{product(1, true, "08:00", "14:00")}
	split := []model.Product{
		product(1, true, "08:00", "14:00"),
		product(2, true, "16:00", "18:00"),
	}
	night := []model.Product{product(1, true, "22:00", "06:00")}

	tests := []struct {
		name     string
		now      time.Time
		cfg      *model.GlobalConfig
		kiosk    *model.Kiosk
		products []model.Product
		want     time.Time
	}{
		{
			name:     "before the window opens",
			now:      on(wednesday, 7, 0),
			products: morning,
			want:     on(wednesday, 8, 0),
		},
		{
			name:     "already open returns now",
			now:      on(wednesday, 10, 0),
			products: morning,
			want:     on(wednesday, 10, 0),
		},
		{
			name:     "after the last window opens tomorrow",
			now:      on(wednesday, 15, 0),
			products: morning,
			want:     on(thursday, 8, 0),
		},
		{
			name:     "gap between windows",
			now:      on(wednesday, 15, 0),
			products: split,
			want:     on(wednesday, 16, 0),
		},
		{
			name:     "deactivation ends inside a window",
			now:      on(wednesday, 10, 0),
			kiosk:    &model.Kiosk{ID: 1, DeactivatedUntil: ptrTime(on(wednesday, 11, 0))},
			products: morning,
			want:     on(wednesday, 11, 0),
		},
		{
			name:     "deactivation ends in a gap",
			now:      on(wednesday, 10, 0),
			kiosk:    &model.Kiosk{ID: 1, DeactivatedUntil: ptrTime(on(wednesday, 15, 0))},
			products: split,
			want:     on(wednesday, 16, 0),
		},
		{
			name:     "deactivation ends after the last window",
			now:      on(wednesday, 10, 0),
			kiosk:    &model.Kiosk{ID: 1, DeactivatedUntil: ptrTime(on(wednesday, 15, 0))},
			products: morning,
			want:     on(thursday, 8, 0),
		},
		{
			name:     "elapsed deactivation is ignored",
			now:      on(wednesday, 15, 0),
			kiosk:    &model.Kiosk{ID: 1, DeactivatedUntil: ptrTime(on(wednesday, 9, 0))},
			products: split,
			want:     on(wednesday, 16, 0),
		},
		{
			name:     "disabled tomorrow is skipped",
			now:      on(wednesday, 15, 0),
			cfg:      &model.GlobalConfig{DisabledWeekdays: []time.Weekday{time.Thursday}},
			products: morning,
			want:     on(friday, 8, 0),
		},
		{
			name:     "disabled today inside a window",
			now:      on(wednesday, 10, 0),
			cfg:      &model.GlobalConfig{DisabledWeekdays: []time.Weekday{time.Wednesday}},
			products: morning,
			want:     on(thursday, 8, 0),
		},
		{
			name:     "only sunday enabled",
			now:      on(wednesday, 10, 0),
			cfg:      &model.GlobalConfig{DisabledWeekdays: []time.Weekday{1, 2, 3, 4, 5, 6}},
			products: morning,
			want:     on(sunday, 8, 0),
		},
		{
			name:     "overnight window later today",
			now:      on(wednesday, 12, 0),
			products: night,
			want:     on(wednesday, 22, 0),
		},
		{
			name:     "overnight window open at start of next enabled day",
			now:      on(wednesday, 12, 0),
			cfg:      &model.GlobalConfig{DisabledWeekdays: []time.Weekday{time.Wednesday}},
			products: night,
			want:     on(thursday, 0, 0),
		},
		{
			name: "earliest minute within the same hour",
			now:  on(wednesday, 7, 0),
			products: []model.Product{
				product(1, true, "09:45", "10:00"),
				product(2, true, "09:15", "11:00"),
				product(3, true, "09:30", "09:40"),
			},
			want: on(wednesday, 9, 15),
		},
		{
			name: "inactive products are ignored",
			now:  on(wednesday, 6, 0),
			products: []model.Product{
				product(1, false, "07:00", "08:00"),
				product(2, true, "09:00", "10:00"),
			},
			want: on(wednesday, 9, 0),
		},
		{
			name: "zero length windows are ignored",
			now:  on(wednesday, 6, 0),
			products: []model.Product{
				product(1, true, "07:00", "07:00"),
				product(2, true, "09:00", "10:00"),
			},
			want: on(wednesday, 9, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg == nil {
				cfg = &model.GlobalConfig{}
			}
			kiosk := tt.kiosk
			if kiosk == nil {
				kiosk = &model.Kiosk{ID: 1}
			}
			got, ok := NextOpen(cfg, kiosk, tt.products, at(tt.now))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextOpen_ReanchorsAcrossCalendarBoundaries(t *testing.T) {
	morning := []model.Product{product(1, true, "08:00", "14:00")}

	tests := []struct {
		name  string
		now   time.Time
		until time.Time
		cfg   *model.GlobalConfig
		want  time.Time
	}{
		{
			name:  "next day",
			now:   time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC),
			until: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
			want:  time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "next month",
			now:   time.Date(2026, 1, 31, 20, 0, 0, 0, time.UTC),
			until: time.Date(2026, 2, 2, 9, 30, 0, 0, time.UTC),
			want:  time.Date(2026, 2, 2, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "next year",
			now:   time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC),
			until: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "next year before the window",
			now:   time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC),
			until: time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "weeks ahead",
			now:   time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC),
			until: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "weeks ahead on a disabled sunday",
			now:   time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC),
			until: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC),
			cfg:   &model.GlobalConfig{DisabledWeekdays: []time.Weekday{time.Sunday}},
			want:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "leap day",
			now:   time.Date(2028, 2, 28, 15, 0, 0, 0, time.UTC),
			until: time.Date(2028, 2, 29, 13, 0, 0, 0, time.UTC),
			want:  time.Date(2028, 2, 29, 13, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg == nil {
				cfg = &model.GlobalConfig{}
			}
			kiosk := &model.Kiosk{ID: 1, DeactivatedUntil: ptrTime(tt.until)}
			got, ok := NextOpen(cfg, kiosk, morning, at(tt.now))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextOpen_DeactivationInOtherZone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2026, 1, 14, 10, 0, 0, 0, loc)
	until := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC) // 12:00 local

	kiosk := &model.Kiosk{ID: 1, DeactivatedUntil: &until}
	got, ok := NextOpen(&model.GlobalConfig{}, kiosk, []model.Product{product(1, true, "08:00", "14:00")}, at(now))
	require.True(t, ok)
	assert.True(t, got.Equal(until))
	assert.Equal(t, 12, got.Hour())
}

func TestNextOpen_SkippedHour(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)
	// Clocks jump from 02:00 to 03:00 local on 2026-03-29.
	now := time.Date(2026, 3, 29, 0, 30, 0, 0, loc)
	cfg := &model.GlobalConfig{}
	kiosk := &model.Kiosk{ID: 1}

	got, ok := NextOpen(cfg, kiosk, []model.Product{product(1, true, "02:45", "05:00")}, at(now))
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 29, 1, 0, 0, 0, time.UTC)), "opens when the jump lands at 03:00, got %s", got)
	assert.False(t, IsKioskClosed(kiosk, cfg, AvailableProducts([]model.Product{product(1, true, "02:45", "05:00")}, at(got)), at(got)))

	got, ok = NextOpen(cfg, kiosk, []model.Product{product(2, true, "02:15", "02:45")}, at(now))
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 30, 2, 15, 0, 0, loc)), "window inside the skipped hour waits a day, got %s", got)
}

func TestNextOpen_ProjectionIsOpenAndMinimal(t *testing.T) {
	cfg := &model.GlobalConfig{DisabledWeekdays: []time.Weekday{time.Friday}}
	kiosk := &model.Kiosk{ID: 1}
	products := []model.Product{
		product(1, true, "08:00", "14:00"),
		product(2, true, "16:00", "18:00"),
		product(3, false, "19:00", "20:00"),
	}

	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			now := on(wednesday.AddDate(0, 0, day), hour, 30)
			got, ok := NextOpen(cfg, kiosk, products, at(now))
			require.True(t, ok, "now %s", now)

			closedNow := IsKioskClosed(kiosk, cfg, AvailableProducts(products, at(now)), at(now))
			if !closedNow {
				assert.Equal(t, now, got)
				continue
			}
			assert.True(t, got.After(now), "now %s got %s", now, got)
			assert.False(t, IsKioskClosed(kiosk, cfg, AvailableProducts(products, at(got)), at(got)), "closed at projected %s", got)
			if before := got.Add(-time.Minute); before.After(now) {
				assert.True(t, IsKioskClosed(kiosk, cfg, AvailableProducts(products, at(before)), at(before)), "open before projected %s", got)
			}
		}
	}
}

func TestNextProductOpening(t *testing.T) {
	products := []model.Product{
		product(1, true, "08:00", "14:00"),
		product(2, false, "09:00", "10:00"),
		product(3, true, "16:00", "18:00"),
		product(4, true, "16:00", "17:00"),
		product(5, true, "12:00", "12:00"),
	}

	tests := []struct {
		name   string
		now    time.Time
		wantID int64
		wantAt time.Time
	}{
		{"before everything", on(wednesday, 6, 0), 1, on(wednesday, 8, 0)},
		{"inside first window picks next start", on(wednesday, 10, 0), 3, on(wednesday, 16, 0)},
		{"at a start is not strictly after", on(wednesday, 16, 0), 1, on(wednesday, 8, 0).AddDate(0, 0, 1)},
		{"late evening wraps to tomorrow", on(wednesday, 20, 0), 1, on(wednesday, 8, 0).AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextProductOpening(products, at(tt.now))
			require.True(t, ok)
			assert.Equal(t, tt.wantID, got.Product.ID)
			assert.Equal(t, tt.wantAt, got.At)
			assert.Equal(t, got.Product.OrderWindow.From, got.From)
		})
	}
}

func TestNextProductOpening_None(t *testing.T) {
	_, ok := NextProductOpening(nil, at(on(wednesday, 6, 0)))
	assert.False(t, ok)

	_, ok = NextProductOpening([]model.Product{product(1, false, "08:00", "10:00")}, at(on(wednesday, 6, 0)))
	assert.False(t, ok)
}

func TestNextProductOpening_TieKeepsInputOrder(t *testing.T) {
	products := []model.Product{
		product(7, true, "09:00", "10:00"),
		product(3, true, "09:00", "12:00"),
	}
	got, ok := NextProductOpening(products, at(on(wednesday, 6, 0)))
	require.True(t, ok)
	assert.Equal(t, int64(7), got.Product.ID)
}
