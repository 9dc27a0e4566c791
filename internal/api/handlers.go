package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kiosk/internal/availability"
	"kiosk/internal/database"
	"kiosk/internal/metrics"
	"kiosk/internal/report"
	"kiosk/internal/service"
)

const defaultScheduleDays = 7

// KiosksResponse is the response for GET /api/kiosks.
type KiosksResponse struct {
	Kiosks []availability.Status `json:"kiosks"`
}

// CloseResponse is the response for POST /api/kiosks/{id}/close-until-next-product.
type CloseResponse struct {
	KioskID     int64     `json:"kiosk_id"`
	ClosedUntil time.Time `json:"closed_until"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
}

// handleKiosks returns the status of every active kiosk.
// GET /api/kiosks
func (s *HTTPServer) handleKiosks(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("kiosks")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	statuses, err := s.service.ListStatuses(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, KiosksResponse{Kiosks: statuses})
}

// handleKioskStatus returns one kiosk's status.
// GET /api/kiosks/{id}/status
func (s *HTTPServer) handleKioskStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("kiosk_status")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	id, ok := kioskID(w, r)
	if !ok {
		return
	}

	status, err := s.service.KioskStatus(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleCloseUntilNextProduct deactivates the kiosk until the next product opens.
// POST /api/kiosks/{id}/close-until-next-product
func (s *HTTPServer) handleCloseUntilNextProduct(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("close_until_next_product")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	id, ok := kioskID(w, r)
	if !ok {
		return
	}

	opening, err := s.service.CloseUntilNextProduct(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CloseResponse{
		KioskID:     id,
		ClosedUntil: opening.At,
		ProductID:   opening.Product.ID,
		ProductName: opening.Product.Name,
	})
}

// handleReopen clears the kiosk's timed deactivation.
// POST /api/kiosks/{id}/reopen
func (s *HTTPServer) handleReopen(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reopen")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	id, ok := kioskID(w, r)
	if !ok {
		return
	}

	if err := s.service.Reopen(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kiosk_id": id, "reopened": true})
}

// handleSchedule exports the kiosk's upcoming schedule as a workbook.
// GET /api/kiosks/{id}/schedule.xlsx?days=7
func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	id, ok := kioskID(w, r)
	if !ok {
		return
	}

	days := defaultScheduleDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > report.MaxDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", report.MaxDays))
			return
		}
		days = n
	}

	snap, err := s.service.Snapshot(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="kiosk-%d-schedule.xlsx"`, id))
	if err := report.WriteSchedule(w, snap, s.clock.Now(), days); err != nil {
		s.logger.Error().Err(err).Int64("kiosk_id", id).Msg("Schedule export failed")
	}
}

func kioskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid kiosk id")
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrKioskNotFound):
		writeError(w, http.StatusNotFound, "kiosk not found")
	case errors.Is(err, service.ErrNoUpcomingProduct):
		writeError(w, http.StatusConflict, "no upcoming product opening")
	default:
		s.internalError(w, r, err)
	}
}

func (s *HTTPServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
