package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/STRATINT/fightintel/internal/database"
	"github.com/STRATINT/fightintel/internal/models"
	"github.com/STRATINT/fightintel/internal/report"
)

// RunStore reads persisted analysis runs.
type RunStore interface {
	Get(ctx context.Context, id string) (*models.AnalysisRun, error)
	List(ctx context.Context, query models.AnalysisRunQuery) ([]*models.AnalysisRun, error)
}

// RunHandler serves stored runs and their reports.
type RunHandler struct {
	store  RunStore
	logger *slog.Logger
}

// NewRunHandler creates a handler; a nil store answers 503.
func NewRunHandler(store RunStore, logger *slog.Logger) *RunHandler {
	return &RunHandler{store: store, logger: logger}
}

// ListRuns handles GET /api/runs
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	query := models.AnalysisRunQuery{
		Fighter: r.URL.Query().Get("fighter"),
		Limit:   50,
	}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		parsed, ok := models.ParseAnalysisMode(mode)
		if !ok {
			http.Error(w, "mode must be one of analyze, predict, both", http.StatusBadRequest)
			return
		}
		query.Mode = parsed
	}
	query.Limit, query.Offset = pageParams(r, query.Limit)

	runs, err := h.store.List(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   runs,
		"limit":  query.Limit,
		"offset": query.Offset,
	}, h.logger)
}

// GetRun handles GET /api/runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run, h.logger)
}

// GetReport handles GET /api/runs/{id}/report. ?format=md returns Markdown.
func (h *RunHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(run)))
		return
	}

	doc, err := report.Document(run)
	if err != nil {
		h.logger.Error("failed to render report", "run_id", run.ID, "error", err)
		http.Error(w, "Failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(doc))
}

func (h *RunHandler) available(w http.ResponseWriter) bool {
	if h.store == nil {
		http.Error(w, "Run storage not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (h *RunHandler) lookup(w http.ResponseWriter, r *http.Request) (*models.AnalysisRun, bool) {
	if !h.available(w) {
		return nil, false
	}

	id := chi.URLParam(r, "id")
	run, err := h.store.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		http.Error(w, "Failed to get run", http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

func pageParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
