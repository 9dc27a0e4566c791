package service

import (
	"context"
	"errors"
	"time"

	"kiosk/internal/database"
	"kiosk/internal/metrics"
)

// Transition is a kiosk switching between open and closed.
type Transition struct {
	KioskID int64     `json:"kiosk_id"`
	Open    bool      `json:"open"`
	Reasons []string  `json:"reasons,omitempty"`
	At      time.Time `json:"at"`
}

// Monitor re-evaluates every kiosk on each tick until ctx is done.
func (s *Service) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.logger.Info().Dur("interval", interval).Msg("Kiosk monitor started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Kiosk monitor stopped")
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Service) sweepAndLog(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error().Err(err).Msg("Kiosk sweep failed")
	}
}

// Sweep evaluates every kiosk bypassing the cache, refreshes the cache and the
// open gauge, and returns kiosks whose open state changed since the last sweep.
// The first sweep reports every kiosk.
func (s *Service) Sweep(ctx context.Context) ([]Transition, error) {
	kiosks, err := s.store.ListKiosks(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(kiosks))
	transitions := make([]Transition, 0)
	for _, k := range kiosks {
		status, err := s.evaluate(ctx, k.ID)
		if errors.Is(err, database.ErrKioskNotFound) {
			continue
		}
		if err != nil {
			return transitions, err
		}
		seen[k.ID] = struct{}{}
		s.remember(ctx, status)

		open := !status.Closed
		metrics.SetKioskOpen(k.ID, open)

		s.openMu.Lock()
		prev, known := s.open[k.ID]
		s.open[k.ID] = open
		s.openMu.Unlock()
		if known && prev == open {
			continue
		}

		t := Transition{KioskID: k.ID, Open: open, Reasons: status.Reasons, At: status.EvaluatedAt}
		transitions = append(transitions, t)

		event := s.logger.Info().Int64("kiosk_id", k.ID).Bool("open", open).Strs("reasons", status.Reasons)
		if status.NextOpen != nil && !open {
			event = event.Time("next_open", *status.NextOpen)
		}
		event.Msg("Kiosk availability changed")
	}

	s.openMu.Lock()
	for id := range s.open {
		if _, ok := seen[id]; !ok {
			delete(s.open, id)
			metrics.ForgetKiosk(id)
		}
	}
	s.openMu.Unlock()

	return transitions, nil
}
