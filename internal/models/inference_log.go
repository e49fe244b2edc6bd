package models

import "time"

// InferenceLog is one recorded oracle call. Retries produce one row each.
type InferenceLog struct {
	ID           int64     `json:"id" db:"id"`
	Provider     string    `json:"provider" db:"provider"`   // ollama, openai, anthropic
	Model        string    `json:"model" db:"model"`
	Operation    string    `json:"operation" db:"operation"` // agent step or tool name
	TokensUsed   int       `json:"tokens_used" db:"tokens_used"`
	InputTokens  *int      `json:"input_tokens" db:"input_tokens"`
	OutputTokens *int      `json:"output_tokens" db:"output_tokens"`
	CostUSD      *float64  `json:"cost_usd" db:"cost_usd"`
	LatencyMs    *int      `json:"latency_ms" db:"latency_ms"`
	Status       string    `json:"status" db:"status"` // success, error
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	Metadata     string    `json:"metadata" db:"metadata"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// InferenceLogStats aggregates inference rows.
type InferenceLogStats struct {
	TotalCalls      int     `json:"total_calls" db:"total_calls"`
	TotalTokens     int64   `json:"total_tokens" db:"total_tokens"`
	TotalCostUSD    float64 `json:"total_cost_usd" db:"total_cost_usd"`
	SuccessfulCalls int     `json:"successful_calls" db:"successful_calls"`
	FailedCalls     int     `json:"failed_calls" db:"failed_calls"`
	AvgLatencyMs    float64 `json:"avg_latency_ms" db:"avg_latency_ms"`
}

// InferenceLogQuery filters inference rows.
type InferenceLogQuery struct {
	Provider  string
	Model     string
	Operation string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}
