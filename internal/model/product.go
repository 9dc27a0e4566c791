// Package model holds the entity snapshots read by the availability engine.
package model

import (
	"time"

	"kiosk/internal/schedule"
)

// Product is a sellable item with a recurring daily order window.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	IsActive    bool             `json:"is_active"`
	OrderWindow *schedule.Window `json:"order_window,omitempty"`
}

// Window returns the product's order window, nil when missing.
func (p Product) Window() *schedule.Window {
	return p.OrderWindow
}

// InWindow reports whether t falls inside the order window.
// A product without a window is never in it.
func (p Product) InWindow(t time.Time) bool {
	return p.OrderWindow != nil && p.OrderWindow.Contains(t)
}

// CanOpen reports whether the product is active and has a window that is open at some point of the day.
func (p Product) CanOpen() bool {
	return p.IsActive && p.OrderWindow != nil && !p.OrderWindow.IsDegenerate()
}
