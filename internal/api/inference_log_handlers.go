package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/STRATINT/fightintel/internal/models"
)

// InferenceLogStore reads recorded oracle calls.
type InferenceLogStore interface {
	List(ctx context.Context, query models.InferenceLogQuery) ([]models.InferenceLog, error)
	GetStats(ctx context.Context, startDate, endDate *time.Time) (*models.InferenceLogStats, error)
}

// InferenceLogHandler handles HTTP requests for inference logs
type InferenceLogHandler struct {
	store  InferenceLogStore
	logger *slog.Logger
}

// NewInferenceLogHandler creates a new handler; a nil store answers 503.
func NewInferenceLogHandler(store InferenceLogStore, logger *slog.Logger) *InferenceLogHandler {
	return &InferenceLogHandler{
		store:  store,
		logger: logger,
	}
}

// ListInferenceLogs handles GET /api/inference-logs
func (h *InferenceLogHandler) ListInferenceLogs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Inference log storage not configured", http.StatusServiceUnavailable)
		return
	}

	query := models.InferenceLogQuery{
		Provider:  r.URL.Query().Get("provider"),
		Model:     r.URL.Query().Get("model"),
		Operation: r.URL.Query().Get("operation"),
		Status:    r.URL.Query().Get("status"),
	}
	query.Limit, query.Offset = pageParams(r, 100)
	query.StartDate, query.EndDate = dateRange(r)

	logs, err := h.store.List(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list inference logs", "error", err)
		http.Error(w, "Failed to list inference logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  query.Limit,
		"offset": query.Offset,
	}, h.logger)
}

// GetInferenceStats handles GET /api/inference-logs/stats
func (h *InferenceLogHandler) GetInferenceStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Inference log storage not configured", http.StatusServiceUnavailable)
		return
	}

	startDate, endDate := dateRange(r)
	stats, err := h.store.GetStats(r.Context(), startDate, endDate)
	if err != nil {
		h.logger.Error("failed to get inference stats", "error", err)
		http.Error(w, "Failed to get inference stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats, h.logger)
}

// dateRange reads RFC3339 start_date and end_date; unparsable values are ignored.
func dateRange(r *http.Request) (start, end *time.Time) {
	if v := r.URL.Query().Get("start_date"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			start = &parsed
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			end = &parsed
		}
	}
	return start, end
}
