// Package availability decides whether products, activities and kiosks are open
// at a given instant and projects when that changes.
//
// Every function is pure apart from a single read of the supplied clock,
// and degrades to closed, empty or false on absent input.
package availability

import (
	"time"

	"kiosk/internal/clock"
	"kiosk/internal/model"
	"kiosk/internal/schedule"
)

// AvailableProducts keeps the products that are active and inside their order
// window now, preserving input order.
func AvailableProducts(products []model.Product, clk clock.Clock) []model.Product {
	return availableAt(products, clk.Now())
}

func availableAt(products []model.Product, now time.Time) []model.Product {
	available := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive && p.InWindow(now) {
			available = append(available, p)
		}
	}
	return available
}

// SortByWindowFrom orders products by window start; products without a window come first.
func SortByWindowFrom(products []model.Product) []model.Product {
	return schedule.SortByFrom(products, model.Product.Window)
}

// SortByWindowTo orders products by window end; products without a window come first.
func SortByWindowTo(products []model.Product) []model.Product {
	return schedule.SortByTo(products, model.Product.Window)
}

// openable returns active products whose window opens at some point of the day,
// ordered by window start.
func openable(products []model.Product) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.CanOpen() {
			out = append(out, p)
		}
	}
	return SortByWindowFrom(out)
}
