package availability

import (
	"time"

	"kiosk/internal/clock"
	"kiosk/internal/model"
)

// Closure reasons.
const (
	ReasonMissingInput = "missing_input"
	ReasonDeactivated  = "deactivated"
	ReasonNoProducts   = "no_products"
	ReasonDayDisabled  = "day_disabled"
)

// Closure lists the independent causes that keep a kiosk from taking orders.
type Closure struct {
	MissingInput bool
	Deactivated  bool
	NoProducts   bool
	DayDisabled  bool
}

// Closed reports whether any cause holds.
func (c Closure) Closed() bool {
	return c.MissingInput || c.Deactivated || c.NoProducts || c.DayDisabled
}

// Reasons names the causes that hold, in a fixed order.
func (c Closure) Reasons() []string {
	reasons := make([]string, 0, 4)
	if c.MissingInput {
		reasons = append(reasons, ReasonMissingInput)
	}
	if c.Deactivated {
		reasons = append(reasons, ReasonDeactivated)
	}
	if c.NoProducts {
		reasons = append(reasons, ReasonNoProducts)
	}
	if c.DayDisabled {
		reasons = append(reasons, ReasonDayDisabled)
	}
	return reasons
}

// ExplainClosure evaluates each closure cause for the kiosk now.
func ExplainClosure(kiosk *model.Kiosk, cfg *model.GlobalConfig, available []model.Product, clk clock.Clock) Closure {
	return closureAt(kiosk, cfg, available, clk.Now())
}

func closureAt(kiosk *model.Kiosk, cfg *model.GlobalConfig, available []model.Product, now time.Time) Closure {
	if kiosk == nil || cfg == nil {
		return Closure{MissingInput: true}
	}
	return Closure{
		Deactivated: kiosk.DeactivatedAt(now),
		NoProducts:  len(available) == 0,
		DayDisabled: cfg.IsDayDisabled(now.Weekday()),
	}
}

// IsKioskClosed reports whether the kiosk must refuse orders now.
// A missing kiosk or config counts as closed.
func IsKioskClosed(kiosk *model.Kiosk, cfg *model.GlobalConfig, available []model.Product, clk clock.Clock) bool {
	return ExplainClosure(kiosk, cfg, available, clk).Closed()
}
