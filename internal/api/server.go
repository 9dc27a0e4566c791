package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"kiosk/internal/availability"
	"kiosk/internal/clock"
	"kiosk/internal/model"

	"github.com/rs/zerolog"
)

// KioskService is the service behind the API. *service.Service implements it.
type KioskService interface {
	KioskStatus(ctx context.Context, kioskID int64) (availability.Status, error)
	ListStatuses(ctx context.Context) ([]availability.Status, error)
	CloseUntilNextProduct(ctx context.Context, kioskID int64) (availability.Opening, error)
	Reopen(ctx context.Context, kioskID int64) error
	Snapshot(ctx context.Context, kioskID int64) (model.Snapshot, error)
}

type Config struct {
	Port           int
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []netip.Prefix
}

// HTTPServer exposes kiosk availability over JSON.
type HTTPServer struct {
	service KioskService
	clock   clock.Clock
	logger  zerolog.Logger
	server  *http.Server
}

func NewHTTPServer(cfg Config, svc KioskService, clk clock.Clock, logger *zerolog.Logger) *HTTPServer {
	if clk == nil {
		clk = clock.System()
	}
	s := &HTTPServer{
		service: svc,
		clock:   clk,
		logger:  logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/kiosks", s.handleKiosks)
	mux.HandleFunc("/api/kiosks/{id}/status", s.handleKioskStatus)
	mux.HandleFunc("/api/kiosks/{id}/close-until-next-product", s.handleCloseUntilNextProduct)
	mux.HandleFunc("/api/kiosks/{id}/reopen", s.handleReopen)
	mux.HandleFunc("/api/kiosks/{id}/schedule.xlsx", s.handleSchedule)

	handler := Chain(mux,
		WithRequestID,
		WithAccessLog(s.logger),
		NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies, clk).Middleware(),
		WithAPIKey(cfg.APIKey),
	)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler with middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API server started")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
