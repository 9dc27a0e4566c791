package availability

import (
	"time"

	"kiosk/internal/clock"
	"kiosk/internal/model"
	"kiosk/internal/schedule"
)

// wednesday is 2026-01-14.
var wednesday = time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)

func on(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func window(from, to string) *schedule.Window {
	w := schedule.MustParseWindow(from, to)
	return &w
}

func product(id int64, active bool, from, to string) model.Product {
	return model.Product{ID: id, Name: "product", IsActive: active, OrderWindow: window(from, to)}
}

func at(t time.Time) clock.Clock {
	return clock.Fixed(t)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func ids(products []model.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func activityNames(activities []model.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.Name
	}
	return out
}
