package model

import (
	"slices"
	"time"
)

// Kiosk is a point-of-sale terminal.
type Kiosk struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Language            string     `json:"language,omitempty"`
	ManuallyDeactivated bool       `json:"manually_deactivated"`
	DeactivatedUntil    *time.Time `json:"deactivated_until,omitempty"`
	EnabledActivityIDs  []int64    `json:"enabled_activity_ids,omitempty"`
}

// EnablesActivity reports whether the kiosk offers the activity.
func (k Kiosk) EnablesActivity(activityID int64) bool {
	return slices.Contains(k.EnabledActivityIDs, activityID)
}

// DeactivatedAt reports whether the kiosk is deactivated at t.
// The manual flag wins even when DeactivatedUntil has already passed.
func (k Kiosk) DeactivatedAt(t time.Time) bool {
	if k.ManuallyDeactivated {
		return true
	}
	return k.DeactivatedUntil != nil && k.DeactivatedUntil.After(t)
}
