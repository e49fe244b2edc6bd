package inference

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/STRATINT/fightintel/internal/models"
)

// Store persists inference log rows.
type Store interface {
	Create(ctx context.Context, log models.InferenceLog) error
}

// Logger records oracle calls without blocking the caller.
type Logger struct {
	store  Store
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewLogger creates a new inference logger
func NewLogger(store Store, logger *slog.Logger) *Logger {
	return &Logger{
		store:  store,
		logger: logger,
	}
}

// LogCallParams describes one model call.
type LogCallParams struct {
	Provider     string
	Model        string
	Operation    string
	TokensUsed   int
	InputTokens  *int
	OutputTokens *int
	CostUSD      *float64
	LatencyMs    *int
	Status       string // "success" or "error"
	ErrorMessage *string
	Metadata     map[string]interface{}
}

// LogCall writes an inference row in the background.
func (l *Logger) LogCall(ctx context.Context, params LogCallParams) {
	if l == nil || l.store == nil {
		return
	}

	var metadataJSON string
	if params.Metadata != nil {
		if jsonBytes, err := json.Marshal(params.Metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	row := models.InferenceLog{
		Provider:     params.Provider,
		Model:        params.Model,
		Operation:    params.Operation,
		TokensUsed:   params.TokensUsed,
		InputTokens:  params.InputTokens,
		OutputTokens: params.OutputTokens,
		CostUSD:      params.CostUSD,
		LatencyMs:    params.LatencyMs,
		Status:       params.Status,
		ErrorMessage: params.ErrorMessage,
		Metadata:     metadataJSON,
	}

	// detached from ctx so a cancelled request still gets its log row
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.store.Create(context.Background(), row); err != nil {
			l.logger.Error("failed to log inference call", "error", err)
		}
	}()
}

// LogCompletion is a helper for a finished provider call.
func (l *Logger) LogCompletion(ctx context.Context, provider, model, operation string, inputTokens, outputTokens int, latency time.Duration, err error, metadata map[string]interface{}) {
	if l == nil {
		return
	}

	params := LogCallParams{
		Provider:     provider,
		Model:        model,
		Operation:    operation,
		TokensUsed:   inputTokens + outputTokens,
		InputTokens:  &inputTokens,
		OutputTokens: &outputTokens,
		Metadata:     metadata,
	}

	latencyMs := int(latency.Milliseconds())
	params.LatencyMs = &latencyMs

	if err != nil {
		params.Status = "error"
		errMsg := err.Error()
		params.ErrorMessage = &errMsg
	} else {
		params.Status = "success"
	}

	cost := EstimateCost(provider, model, inputTokens, outputTokens)
	params.CostUSD = &cost

	l.LogCall(ctx, params)
}

// Wait blocks until queued rows are written.
func (l *Logger) Wait() {
	if l == nil {
		return
	}
	l.wg.Wait()
}

// EstimateCost gives a rough USD figure per call. Local models are free.
func EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	var inputCostPer1M, outputCostPer1M float64

	switch provider {
	case "ollama":
		return 0
	case "anthropic":
		inputCostPer1M, outputCostPer1M = anthropicPricing(model)
	default:
		inputCostPer1M, outputCostPer1M = openAIPricing(model)
	}

	inputCost := (float64(inputTokens) / 1_000_000) * inputCostPer1M
	outputCost := (float64(outputTokens) / 1_000_000) * outputCostPer1M

	return inputCost + outputCost
}

func openAIPricing(model string) (float64, float64) {
	switch model {
	case "gpt-4o":
		return 2.50, 10.00
	case "gpt-4o-mini":
		return 0.15, 0.60
	case "gpt-4-turbo", "gpt-4-turbo-preview":
		return 10.00, 30.00
	case "gpt-3.5-turbo":
		return 0.50, 1.50
	default:
		return 5.00, 15.00
	}
}

func anthropicPricing(model string) (float64, float64) {
	switch model {
	case "claude-3-opus-20240229":
		return 15.00, 75.00
	case "claude-3-haiku-20240307", "claude-3-5-haiku-latest":
		return 0.25, 1.25
	default:
		return 3.00, 15.00
	}
}
