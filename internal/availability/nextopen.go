package availability

import (
	"time"

	"kiosk/internal/clock"
	"kiosk/internal/model"
	"kiosk/internal/schedule"
)

// maxSearchDays bounds the forward search; weekday disabling repeats every 7 days.
const maxSearchDays = 8

// NextOpen returns the next instant at which the kiosk takes orders, or now if
// it is open already. It returns false when no such instant can exist.
func NextOpen(cfg *model.GlobalConfig, kiosk *model.Kiosk, products []model.Product, clk clock.Clock) (time.Time, bool) {
	return nextOpenAt(cfg, kiosk, products, clk.Now())
}

func nextOpenAt(cfg *model.GlobalConfig, kiosk *model.Kiosk, products []model.Product, now time.Time) (time.Time, bool) {
	switch {
	case cfg == nil || kiosk == nil:
		return time.Time{}, false
	case len(products) == 0:
		return time.Time{}, false
	case kiosk.ManuallyDeactivated:
		return time.Time{}, false
	case cfg.AllDaysDisabled():
		return time.Time{}, false
	}

	candidates := openable(products)
	if len(candidates) == 0 {
		return time.Time{}, false
	}

	if !closureAt(kiosk, cfg, availableAt(products, now), now).Closed() {
		return now, true
	}

	floor := now
	if kiosk.DeactivatedUntil != nil && kiosk.DeactivatedUntil.After(now) {
		floor = kiosk.DeactivatedUntil.In(now.Location())
	}

	first := schedule.StartOfDay(floor)
	for i := 0; i < maxSearchDays; i++ {
		day := schedule.AddDays(first, i)
		if cfg.IsDayDisabled(day.Weekday()) {
			continue
		}
		earliest := day
		if floor.After(earliest) {
			earliest = floor
		}
		if at, ok := firstOpening(candidates, day, earliest); ok {
			return at, true
		}
	}
	return time.Time{}, false
}

// firstOpening returns the earliest instant on day, not before earliest, at which
// one of the products is inside its window. Products must be sorted by window start.
func firstOpening(products []model.Product, day, earliest time.Time) (time.Time, bool) {
	for _, p := range products {
		if p.InWindow(earliest) {
			return earliest, true
		}
	}

	var (
		best  time.Time
		found bool
	)
	for _, p := range products {
		opens := p.OrderWindow.From.OnDate(day)
		// A window lying inside a skipped hour never opens that day.
		if opens.Before(earliest) || !p.InWindow(opens) {
			continue
		}
		if !found || opens.Before(best) {
			best = opens
			found = true
		}
	}
	return best, found
}

// Opening is the next window start of a product.
type Opening struct {
	Product model.Product      `json:"product"`
	From    schedule.CivilTime `json:"from"`
	At      time.Time          `json:"date"`
}

// NextProductOpening returns the soonest window start strictly after now among
// active products, ignoring kiosk and config state. Ties go to the product
// listed first after ordering by window start.
func NextProductOpening(products []model.Product, clk clock.Clock) (Opening, bool) {
	now := clk.Now()

	var (
		best  Opening
		found bool
	)
	for _, p := range openable(products) {
		at, ok := p.OrderWindow.NextOpening(now)
		if !ok {
			continue
		}
		if !found || at.Before(best.At) {
			best = Opening{Product: p, From: p.OrderWindow.From, At: at}
			found = true
		}
	}
	return best, found
}
