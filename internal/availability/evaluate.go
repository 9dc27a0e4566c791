package availability

import (
	"time"

	"kiosk/internal/clock"
	"kiosk/internal/model"
	"kiosk/internal/schedule"
)

// Status is the full availability picture of one kiosk at one instant.
type Status struct {
	KioskID             int64            `json:"kiosk_id"`
	Closed              bool             `json:"closed"`
	Reasons             []string         `json:"reasons,omitempty"`
	AvailableProducts   []model.Product  `json:"available_products"`
	AvailableActivities []model.Activity `json:"available_activities"`
	// NextOpen equals EvaluatedAt when the kiosk is open. The service moves it
	// to the read time when serving a cached open status.
	NextOpen *time.Time `json:"next_open,omitempty"`
	// NextChange is the earliest instant at which any input of the decision may flip.
	NextChange  *time.Time `json:"next_change,omitempty"`
	EvaluatedAt time.Time  `json:"evaluated_at"`
}

// Evaluate computes the status of the snapshot's kiosk, reading clk once.
func Evaluate(snap model.Snapshot, clk clock.Clock, compare Compare) Status {
	now := clk.Now()

	available := availableAt(snap.Products, now)
	closure := closureAt(snap.Kiosk, snap.Config, available, now)

	status := Status{
		Closed:              closure.Closed(),
		Reasons:             closure.Reasons(),
		AvailableProducts:   available,
		AvailableActivities: AvailableActivities(snap.Activities, snap.Kiosk, available, compare),
		EvaluatedAt:         now,
	}
	if snap.Kiosk != nil {
		status.KioskID = snap.Kiosk.ID
	}
	if at, ok := nextOpenAt(snap.Config, snap.Kiosk, snap.Products, now); ok {
		status.NextOpen = &at
	}
	if at, ok := nextChange(snap, now); ok {
		status.NextChange = &at
	}
	return status
}

func nextChange(snap model.Snapshot, now time.Time) (time.Time, bool) {
	windows := make([]schedule.Window, 0, len(snap.Products))
	for _, p := range snap.Products {
		if p.IsActive && p.OrderWindow != nil {
			windows = append(windows, *p.OrderWindow)
		}
	}
	best, found := schedule.NextChange(windows, now)

	consider := func(at time.Time) {
		if !found || at.Before(best) {
			best = at
			found = true
		}
	}
	if snap.Kiosk != nil && snap.Kiosk.DeactivatedUntil != nil && snap.Kiosk.DeactivatedUntil.After(now) {
		consider(*snap.Kiosk.DeactivatedUntil)
	}
	if snap.Config != nil && len(snap.Config.DisabledWeekdays) > 0 {
		consider(schedule.AddDays(schedule.StartOfDay(now), 1))
	}
	return best, found
}
