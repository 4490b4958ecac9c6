// Package api exposes the dashboard's HTTP endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/ads"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/config"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/reports"
)

const dateLayout = "2006-01-02"

// defaultWindowDays is the reporting window when no dates are given.
const defaultWindowDays = 7

// Handler serves the dashboard REST API.
type Handler struct {
	service *reports.Service
	logger  *observability.Logger
	metrics http.Handler
	now     func() time.Time
}

// HandlerConfig holds API handler dependencies.
type HandlerConfig struct {
	Service        *reports.Service
	Logger         *observability.Logger
	MetricsHandler http.Handler
}

// NewHandler creates the API handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("report service is required")
	}

	return &Handler{
		service: cfg.Service,
		logger:  cfg.Logger,
		metrics: cfg.MetricsHandler,
		now:     time.Now,
	}, nil
}

// Routes builds the HTTP mux for the dashboard API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ready", h.handleReady)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}

	mux.HandleFunc("GET /api/accounts", h.handleAccounts)
	mux.HandleFunc("GET /api/accounts/{customerID}/campaigns", h.handleCampaigns)
	mux.HandleFunc("GET /api/accounts/{customerID}/keywords", h.handleKeywords)
	mux.HandleFunc("GET /api/overview", h.handleOverview)

	mux.HandleFunc("GET /admin/cache/stats", h.handleCacheStats)
	mux.HandleFunc("POST /admin/cache/clear", h.handleCacheClear)
	mux.HandleFunc("POST /admin/cache/invalidate", h.handleCacheInvalidate)

	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	env, err := h.service.Accounts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *Handler) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	dr, err := h.parseDateRange(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	customerID := r.PathValue("customerID")
	if err := config.ValidateCustomerID(customerID); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.service.CampaignPerformance(r.Context(), customerID, dr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *Handler) handleKeywords(w http.ResponseWriter, r *http.Request) {
	dr, err := h.parseDateRange(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	customerID := r.PathValue("customerID")
	if err := config.ValidateCustomerID(customerID); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.service.KeywordPerformance(r.Context(), customerID, dr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	dr, err := h.parseDateRange(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.service.Overview(r.Context(), dr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, hitRate := h.service.CacheStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"hits":    stats.Hits,
		"misses":  stats.Misses,
		"entries": stats.Entries,
		"size":    stats.Size,
		"hitRate": hitRate,
	})
}

func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		writeJSONError(w, http.StatusBadRequest, "customerId query parameter is required")
		return
	}

	removed := h.service.InvalidateCustomer(customerID)
	writeJSON(w, http.StatusOK, map[string]any{
		"customerId":     customerID,
		"entriesRemoved": removed,
	})
}

// parseDateRange reads startDate/endDate query params, defaulting to the
// last 7 days ending today.
func (h *Handler) parseDateRange(r *http.Request) (ads.DateRange, error) {
	q := r.URL.Query()
	start := q.Get("startDate")
	end := q.Get("endDate")

	if start == "" && end == "" {
		today := h.now()
		return ads.DateRange{
			Start: today.AddDate(0, 0, -(defaultWindowDays - 1)).Format(dateLayout),
			End:   today.Format(dateLayout),
		}, nil
	}
	if start == "" || end == "" {
		return ads.DateRange{}, fmt.Errorf("startDate and endDate must be provided together")
	}

	startDay, err := time.Parse(dateLayout, start)
	if err != nil {
		return ads.DateRange{}, fmt.Errorf("invalid startDate %q, want YYYY-MM-DD", start)
	}
	endDay, err := time.Parse(dateLayout, end)
	if err != nil {
		return ads.DateRange{}, fmt.Errorf("invalid endDate %q, want YYYY-MM-DD", end)
	}
	if endDay.Before(startDay) {
		return ads.DateRange{}, fmt.Errorf("endDate %s precedes startDate %s", end, start)
	}

	return ads.DateRange{Start: start, End: end}, nil
}

// writeError maps service errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, ads.ErrQuotaExhausted) {
		status = http.StatusTooManyRequests
	}

	var apiErr *ads.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		status = http.StatusBadRequest
	}

	if h.logger != nil {
		h.logger.LogError(r.Context(), "request failed", err,
			"path", r.URL.Path, "status", status)
	}

	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
