// Package report exports kiosk schedules as Excel workbooks.
package report

import (
	"fmt"
	"io"
	"time"

	"kiosk/internal/availability"
	"kiosk/internal/clock"
	"kiosk/internal/model"
	"kiosk/internal/schedule"
)

const (
	SheetProducts = "Products"
	SheetDays     = "Days"

	MaxDays = 31
)

// WriteSchedule writes the kiosk's products and, for each of days calendar days
// starting at from, the first instant the kiosk takes orders.
func WriteSchedule(out io.Writer, snap model.Snapshot, from time.Time, days int) error {
	if days < 1 {
		days = 1
	}
	if days > MaxDays {
		days = MaxDays
	}

	w := newSheetWriter()
	defer w.close()

	if err := writeProducts(w, snap.Products); err != nil {
		return err
	}
	if err := writeDays(w, snap, schedule.StartOfDay(from), days); err != nil {
		return err
	}

	return w.save(out)
}

func writeProducts(w *sheetWriter, products []model.Product) error {
	if err := w.addSheet(SheetProducts); err != nil {
		return err
	}
	if err := w.writeHeader("ID", "Name", "Active", "From", "To", "Spans midnight"); err != nil {
		return err
	}

	for _, p := range availability.SortByWindowFrom(products) {
		from, to, spans := "-", "-", "-"
		if p.OrderWindow != nil {
			from = p.OrderWindow.From.String()
			to = p.OrderWindow.To.String()
			spans = yesNo(p.OrderWindow.SpansMidnight())
		}
		if err := w.writeRow(p.ID, p.Name, yesNo(p.IsActive), from, to, spans); err != nil {
			return fmt.Errorf("write product %d: %w", p.ID, err)
		}
	}
	return nil
}

func writeDays(w *sheetWriter, snap model.Snapshot, first time.Time, days int) error {
	if err := w.addSheet(SheetDays); err != nil {
		return err
	}
	if err := w.writeHeader("Date", "Weekday", "Day disabled", "First opening"); err != nil {
		return err
	}

	for i := 0; i < days; i++ {
		day := schedule.AddDays(first, i)
		disabled := snap.Config != nil && snap.Config.IsDayDisabled(day.Weekday())

		opening := "closed"
		if !disabled {
			at, ok := availability.NextOpen(snap.Config, snap.Kiosk, snap.Products, clock.Fixed(day))
			if ok && schedule.StartOfDay(at).Equal(day) {
				opening = schedule.CivilTimeOf(at).String()
			}
		}

		if err := w.writeRow(day.Format("2006-01-02"), day.Weekday().String(), yesNo(disabled), opening); err != nil {
			return fmt.Errorf("write day %s: %w", day.Format("2006-01-02"), err)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
