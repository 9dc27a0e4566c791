// Package service serves kiosk availability backed by storage, a status cache
// and the availability engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kiosk/internal/availability"
	"kiosk/internal/clock"
	"kiosk/internal/config"
	"kiosk/internal/database"
	"kiosk/internal/metrics"
	"kiosk/internal/model"

	"github.com/rs/zerolog"
)

var ErrNoUpcomingProduct = errors.New("no upcoming product opening")

// Store is the persistence the service needs. *database.DB implements it.
type Store interface {
	Snapshot(ctx context.Context, kioskID int64) (model.Snapshot, error)
	ListKiosks(ctx context.Context) ([]model.Kiosk, error)
	SetDeactivatedUntil(ctx context.Context, kioskID int64, until *time.Time) error
	SyncCatalog(ctx context.Context, cat *config.CatalogConfig) error
}

// StatusCache stores evaluated statuses. *cache.StatusCache implements it.
type StatusCache interface {
	Get(ctx context.Context, kioskID int64, out any) (bool, error)
	Set(ctx context.Context, kioskID int64, val any, ttl time.Duration) error
	Delete(ctx context.Context, kioskID int64) error
	DeleteAll(ctx context.Context) error
}

type Options struct {
	// StatusTTL caps how long a status is cached; the next state change caps it further.
	StatusTTL time.Duration
	// Language orders activity names for kiosks without their own language.
	Language string
}

type Service struct {
	store     Store
	cache     StatusCache
	clock     clock.Clock
	statusTTL time.Duration
	language  string
	logger    zerolog.Logger

	collatorsMu sync.Mutex
	collators   map[string]availability.Compare

	openMu sync.Mutex
	open   map[int64]bool
}

func New(store Store, statusCache StatusCache, clk clock.Clock, opts Options, logger *zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		store:     store,
		cache:     statusCache,
		clock:     clk,
		statusTTL: opts.StatusTTL,
		language:  opts.Language,
		logger:    logger.With().Str("component", "service").Logger(),
		collators: make(map[string]availability.Compare),
		open:      make(map[int64]bool),
	}
}

// KioskStatus returns the kiosk's current status, from cache when still valid.
// A cached open status reports the current instant as NextOpen; EvaluatedAt
// keeps the time the status was computed.
func (s *Service) KioskStatus(ctx context.Context, kioskID int64) (availability.Status, error) {
	if s.cache != nil {
		var cached availability.Status
		hit, err := s.cache.Get(ctx, kioskID, &cached)
		switch {
		case err != nil:
			metrics.IncCacheError()
			s.logger.Warn().Err(err).Int64("kiosk_id", kioskID).Msg("Status cache read failed")
		case hit:
			metrics.IncCacheHit()
			if !cached.Closed {
				now := s.clock.Now()
				cached.NextOpen = &now
			}
			return cached, nil
		default:
			metrics.IncCacheMiss()
		}
	}

	status, err := s.evaluate(ctx, kioskID)
	if err != nil {
		return availability.Status{}, err
	}
	s.remember(ctx, status)
	return status, nil
}

// ListStatuses evaluates every active kiosk.
func (s *Service) ListStatuses(ctx context.Context) ([]availability.Status, error) {
	kiosks, err := s.store.ListKiosks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list kiosks: %w", err)
	}

	statuses := make([]availability.Status, 0, len(kiosks))
	for _, k := range kiosks {
		status, err := s.KioskStatus(ctx, k.ID)
		if errors.Is(err, database.ErrKioskNotFound) {
			continue // removed by a concurrent catalog sync
		}
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Snapshot exposes the stored inputs of one kiosk.
func (s *Service) Snapshot(ctx context.Context, kioskID int64) (model.Snapshot, error) {
	return s.store.Snapshot(ctx, kioskID)
}

// CloseUntilNextProduct deactivates the kiosk until the next product window
// opens and returns that opening.
func (s *Service) CloseUntilNextProduct(ctx context.Context, kioskID int64) (availability.Opening, error) {
	snap, err := s.store.Snapshot(ctx, kioskID)
	if err != nil {
		return availability.Opening{}, err
	}

	opening, ok := availability.NextProductOpening(snap.Products, s.clock)
	if !ok {
		return availability.Opening{}, ErrNoUpcomingProduct
	}

	if err := s.store.SetDeactivatedUntil(ctx, kioskID, &opening.At); err != nil {
		return availability.Opening{}, err
	}
	s.forget(ctx, kioskID)

	s.logger.Info().
		Int64("kiosk_id", kioskID).
		Int64("product_id", opening.Product.ID).
		Time("until", opening.At).
		Msg("Kiosk closed until next product")
	return opening, nil
}

// Reopen clears the kiosk's timed deactivation. The manual flag is left alone.
func (s *Service) Reopen(ctx context.Context, kioskID int64) error {
	if err := s.store.SetDeactivatedUntil(ctx, kioskID, nil); err != nil {
		return err
	}
	s.forget(ctx, kioskID)
	s.logger.Info().Int64("kiosk_id", kioskID).Msg("Kiosk timed deactivation cleared")
	return nil
}

// ApplyCatalog stores a freshly loaded catalog and drops every cached status.
func (s *Service) ApplyCatalog(ctx context.Context, cat *config.CatalogConfig) error {
	if err := s.store.SyncCatalog(ctx, cat); err != nil {
		metrics.IncCatalogReload(false)
		return err
	}
	metrics.IncCatalogReload(true)
	if err := s.InvalidateAll(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to drop cached statuses after catalog sync")
	}
	s.logger.Info().Str("catalog", cat.String()).Msg("Catalog applied")
	return nil
}

// InvalidateAll drops every cached status.
func (s *Service) InvalidateAll(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteAll(ctx)
}

func (s *Service) evaluate(ctx context.Context, kioskID int64) (availability.Status, error) {
	start := time.Now()

	snap, err := s.store.Snapshot(ctx, kioskID)
	if err != nil {
		return availability.Status{}, err
	}

	status := availability.Evaluate(snap, s.clock, s.collator(snap.Kiosk))
	metrics.ObserveEvaluation(status.Closed, status.Reasons, time.Since(start))
	return status, nil
}

func (s *Service) collator(k *model.Kiosk) availability.Compare {
	lang := s.language
	if k != nil && k.Language != "" {
		lang = k.Language
	}

	s.collatorsMu.Lock()
	defer s.collatorsMu.Unlock()
	if c, ok := s.collators[lang]; ok {
		return c
	}
	c := availability.NameCollator(lang)
	s.collators[lang] = c
	return c
}

// ttl keeps a cached status from outliving the next state change.
func (s *Service) ttl(status availability.Status) time.Duration {
	ttl := s.statusTTL
	if status.NextChange != nil {
		if until := status.NextChange.Sub(status.EvaluatedAt); until < ttl {
			ttl = until
		}
	}
	return ttl
}

func (s *Service) remember(ctx context.Context, status availability.Status) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, status.KioskID, status, s.ttl(status)); err != nil {
		s.logger.Warn().Err(err).Int64("kiosk_id", status.KioskID).Msg("Status cache write failed")
	}
}

func (s *Service) forget(ctx context.Context, kioskID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, kioskID); err != nil {
		s.logger.Warn().Err(err).Int64("kiosk_id", kioskID).Msg("Status cache delete failed")
	}
}
