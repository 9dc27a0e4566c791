package model

import (
	"slices"
	"time"
)

// GlobalConfig holds settings applied to every kiosk.
type GlobalConfig struct {
	DisabledWeekdays []time.Weekday `json:"disabled_weekdays"`
}

// IsDayDisabled reports whether orders are disabled on the weekday.
func (c GlobalConfig) IsDayDisabled(day time.Weekday) bool {
	return slices.Contains(c.DisabledWeekdays, day)
}

// AllDaysDisabled reports whether every weekday is disabled.
func (c GlobalConfig) AllDaysDisabled() bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !c.IsDayDisabled(d) {
			return false
		}
	}
	return true
}

// Snapshot is everything the engine needs to evaluate one kiosk.
type Snapshot struct {
	Config     *GlobalConfig `json:"config"`
	Kiosk      *Kiosk        `json:"kiosk"`
	Products   []Product     `json:"products"`
	Activities []Activity    `json:"activities"`
}
