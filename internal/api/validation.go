package api

import (
	"fmt"

	"github.com/STRATINT/fightintel/internal/models"
)

const (
	maxBatchEntries     = 200
	maxBatchConcurrency = 16
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validateBatchRequest resolves the mode and concurrency for a batch.
// An empty mode runs both agents.
func validateBatchRequest(req BatchRequest, defaultConcurrency int) (models.AnalysisMode, int, error) {
	if len(req.Entries) > maxBatchEntries {
		return "", 0, ValidationError{Field: "entries", Message: fmt.Sprintf("at most %d entries per batch", maxBatchEntries)}
	}

	mode := models.ModeBoth
	if req.Mode != "" {
		parsed, ok := models.ParseAnalysisMode(req.Mode)
		if !ok {
			return "", 0, ValidationError{Field: "mode", Message: "must be one of analyze, predict, both"}
		}
		mode = parsed
	}

	concurrency := req.Concurrency
	if concurrency < 0 {
		return "", 0, ValidationError{Field: "concurrency", Message: "must not be negative"}
	}
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > maxBatchConcurrency {
		concurrency = maxBatchConcurrency
	}

	return mode, concurrency, nil
}
