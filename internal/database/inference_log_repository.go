package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/STRATINT/fightintel/internal/models"
)

// InferenceLogRepository handles inference log database operations
type InferenceLogRepository struct {
	db *sqlx.DB
}

// NewInferenceLogRepository creates a new repository
func NewInferenceLogRepository(db *sqlx.DB) *InferenceLogRepository {
	return &InferenceLogRepository{db: db}
}

// Create logs a new inference call
func (r *InferenceLogRepository) Create(ctx context.Context, log models.InferenceLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO inference_logs (
			provider, model, operation, tokens_used, input_tokens, output_tokens,
			cost_usd, latency_ms, status, error_message, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		log.Provider,
		log.Model,
		log.Operation,
		log.TokensUsed,
		log.InputTokens,
		log.OutputTokens,
		log.CostUSD,
		log.LatencyMs,
		log.Status,
		log.ErrorMessage,
		log.Metadata,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inference log: %w", err)
	}

	return nil
}

// List retrieves inference logs with optional filtering, newest first
func (r *InferenceLogRepository) List(ctx context.Context, query models.InferenceLogQuery) ([]models.InferenceLog, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, provider, model, operation, tokens_used, input_tokens, output_tokens,
		       cost_usd, latency_ms, status, error_message, COALESCE(metadata, '') AS metadata, created_at
		FROM inference_logs
		WHERE 1=1
	`)
	args := []interface{}{}

	filters := []struct {
		column string
		value  string
	}{
		{"provider", query.Provider},
		{"model", query.Model},
		{"operation", query.Operation},
		{"status", query.Status},
	}
	for _, f := range filters {
		if f.value != "" {
			sb.WriteString(" AND " + f.column + " = ?")
			args = append(args, f.value)
		}
	}

	args = appendDateRange(&sb, args, query.StartDate, query.EndDate)

	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	args = appendPage(&sb, args, query.Limit, query.Offset)

	logs := []models.InferenceLog{}
	if err := r.db.SelectContext(ctx, &logs, r.db.Rebind(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("failed to query inference logs: %w", err)
	}

	return logs, nil
}

// GetStats retrieves aggregated statistics
func (r *InferenceLogRepository) GetStats(ctx context.Context, startDate, endDate *time.Time) (*models.InferenceLogStats, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT
			COUNT(*) AS total_calls,
			COALESCE(SUM(tokens_used), 0) AS total_tokens,
			COALESCE(SUM(cost_usd), 0) AS total_cost_usd,
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) AS successful_calls,
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0) AS failed_calls,
			COALESCE(AVG(latency_ms), 0) AS avg_latency_ms
		FROM inference_logs
		WHERE 1=1
	`)
	args := appendDateRange(&sb, nil, startDate, endDate)

	var stats models.InferenceLogStats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("failed to get inference stats: %w", err)
	}

	return &stats, nil
}

func appendDateRange(sb *strings.Builder, args []interface{}, start, end *time.Time) []interface{} {
	if start != nil {
		sb.WriteString(" AND created_at >= ?")
		args = append(args, start.UTC())
	}
	if end != nil {
		sb.WriteString(" AND created_at <= ?")
		args = append(args, end.UTC())
	}
	return args
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// appendPage always emits LIMIT since SQLite rejects a bare OFFSET.
func appendPage(sb *strings.Builder, args []interface{}, limit, offset int) []interface{} {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, limit)

	if offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, offset)
	}
	return args
}
