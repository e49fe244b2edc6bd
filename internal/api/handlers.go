package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/STRATINT/fightintel/internal/forecaster"
	"github.com/STRATINT/fightintel/internal/ingestion"
	"github.com/STRATINT/fightintel/internal/models"
)

const maxBodyBytes = 16 << 20

// Handler serves the fight analysis endpoints.
type Handler struct {
	analyst     *forecaster.Analyst
	concurrency int
	logger      *slog.Logger
}

// NormalizeRequest carries scraped fight entries.
type NormalizeRequest struct {
	Entries []models.RawFightEntry `json:"entries"`
}

// NormalizeResponse lists the well-formed fights with their input positions.
type NormalizeResponse struct {
	Fights  []ingestion.NormalizedFight `json:"fights"`
	Total   int                         `json:"total"`
	Skipped int                         `json:"skipped"`
}

// BatchRequest runs the analyst over many entries.
type BatchRequest struct {
	Entries     []models.RawFightEntry `json:"entries"`
	Mode        string                 `json:"mode"`
	Concurrency int                    `json:"concurrency"`
}

// BatchResponse holds ordered results and counts.
type BatchResponse struct {
	Results []forecaster.BatchResult `json:"results"`
	Report  forecaster.BatchReport   `json:"report"`
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// NormalizeFights handles POST /api/fights/normalize
func (h *Handler) NormalizeFights(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fights, stats := ingestion.ProcessBatch(req.Entries, h.logger)
	writeJSON(w, http.StatusOK, NormalizeResponse{
		Fights:  fights,
		Total:   stats.Total,
		Skipped: stats.Skipped,
	}, h.logger)
}

// AnalyzeFight handles POST /api/fights/analyze
func (h *Handler) AnalyzeFight(w http.ResponseWriter, r *http.Request) {
	h.runSingle(w, r, models.ModeAnalyze)
}

// PredictFight handles POST /api/fights/predict
func (h *Handler) PredictFight(w http.ResponseWriter, r *http.Request) {
	h.runSingle(w, r, models.ModePredict)
}

func (h *Handler) runSingle(w http.ResponseWriter, r *http.Request, mode models.AnalysisMode) {
	var entry models.RawFightEntry
	if !decodeBody(w, r, &entry) {
		return
	}

	record, err := ingestion.NormalizeEntry(entry)
	if err != nil {
		http.Error(w, "Matchup must name two distinct fighters", http.StatusBadRequest)
		return
	}

	run, err := h.analyst.Run(r.Context(), record, mode)
	if err != nil {
		if errors.Is(err, forecaster.ErrRunAborted) {
			h.logger.Warn("analysis aborted", "matchup", record.Title(), "mode", mode, "error", err)
			http.Error(w, "Analysis aborted: language model unavailable", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("analysis failed", "matchup", record.Title(), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, run, h.logger)
}

// RunBatch handles POST /api/batch
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	mode, concurrency, err := validateBatchRequest(req, h.concurrency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, report := h.analyst.RunBatch(r.Context(), req.Entries, mode, concurrency)
	writeJSON(w, http.StatusOK, BatchResponse{Results: results, Report: report}, h.logger)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
