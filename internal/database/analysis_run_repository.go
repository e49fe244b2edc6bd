package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/STRATINT/fightintel/internal/models"
)

// AnalysisRunRepository stores analysis runs. The prediction is kept as a
// JSON column.
type AnalysisRunRepository struct {
	db *sqlx.DB
}

// NewAnalysisRunRepository creates a new repository
func NewAnalysisRunRepository(db *sqlx.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{db: db}
}

type analysisRunRow struct {
	models.AnalysisRun
	PredictionJSON sql.NullString `db:"prediction"`
}

func (row analysisRunRow) toModel() (*models.AnalysisRun, error) {
	run := row.AnalysisRun
	if row.PredictionJSON.Valid && row.PredictionJSON.String != "" {
		var p models.Prediction
		if err := json.Unmarshal([]byte(row.PredictionJSON.String), &p); err != nil {
			return nil, fmt.Errorf("decode prediction for run %s: %w", run.ID, err)
		}
		run.Prediction = &p
	}
	return &run, nil
}

const analysisRunColumns = `id, fighter1, fighter2, weight_class, mode, analysis, analysis_stop,
	full_analysis, prediction_stop, prediction, created_at`

// Create inserts a run.
func (r *AnalysisRunRepository) Create(ctx context.Context, run *models.AnalysisRun) error {
	var prediction sql.NullString
	if run.Prediction != nil {
		raw, err := json.Marshal(run.Prediction)
		if err != nil {
			return fmt.Errorf("encode prediction: %w", err)
		}
		prediction = sql.NullString{String: string(raw), Valid: true}
	}

	query := r.db.Rebind(`INSERT INTO analysis_runs (` + analysisRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Fighter1,
		run.Fighter2,
		run.WeightClass,
		string(run.Mode),
		run.Analysis,
		run.AnalysisStop,
		run.FullAnalysis,
		run.PredictionStop,
		prediction,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return nil
}

// Get returns one run or ErrNotFound.
func (r *AnalysisRunRepository) Get(ctx context.Context, id string) (*models.AnalysisRun, error) {
	var row analysisRunRow
	query := r.db.Rebind(`SELECT ` + analysisRunColumns + ` FROM analysis_runs WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return row.toModel()
}

// List returns runs newest first. Fighter matches either corner.
func (r *AnalysisRunRepository) List(ctx context.Context, query models.AnalysisRunQuery) ([]*models.AnalysisRun, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + analysisRunColumns + ` FROM analysis_runs WHERE 1=1`)
	args := []interface{}{}

	if query.Fighter != "" {
		sb.WriteString(" AND (fighter1 = ? OR fighter2 = ?)")
		args = append(args, query.Fighter, query.Fighter)
	}
	if query.Mode != "" {
		sb.WriteString(" AND mode = ?")
		args = append(args, string(query.Mode))
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	args = appendPage(&sb, args, query.Limit, query.Offset)

	var rows []analysisRunRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}

	runs := make([]*models.AnalysisRun, 0, len(rows))
	for _, row := range rows {
		run, err := row.toModel()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
