package forecaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/STRATINT/fightintel/internal/agent"
	"github.com/STRATINT/fightintel/internal/models"
	"github.com/STRATINT/fightintel/internal/oracle"
	"github.com/STRATINT/fightintel/internal/tools"
)

// PredictionPreamble frames the prediction agent.
const PredictionPreamble = `You are an expert MMA fight predictor tasked with determining the likely winner of an upcoming bout.
Use the available tools to analyze different aspects of the matchup, then provide a prediction with a confidence level.

When making your prediction, consider:
1. Statistical advantages
2. Stylistic matchups
3. Recent form and momentum
4. Historical performance against similar opponents
5. Physical attributes and advantages

For your final answer, include:
- Your predicted winner
- Confidence level (Low/Medium/High)
- Key factors that led to your prediction
- Potential paths to victory for both fighters
- Any critical variables that could dramatically change the outcome`

// ErrRunAborted is returned when a run was cancelled or could not reach the oracle.
var ErrRunAborted = errors.New("analysis run aborted")

// RunRepository stores completed runs.
type RunRepository interface {
	Create(ctx context.Context, run *models.AnalysisRun) error
}

// Observer receives agent and batch outcomes, typically a metrics collector.
type Observer interface {
	agent.Observer
	ObserveBatchEntry(outcome string)
}

// AnalysisResult is the analysis agent's output.
type AnalysisResult struct {
	Analysis   string           `json:"analysis"`
	StopReason agent.StopReason `json:"stop_reason"`
	Iterations int              `json:"iterations"`
	Transcript []agent.Step     `json:"transcript"`
}

// PredictionResult is the prediction agent's output.
type PredictionResult struct {
	Prediction   models.Prediction `json:"prediction"`
	FullAnalysis string            `json:"full_analysis"`
	StopReason   agent.StopReason  `json:"stop_reason"`
	Iterations   int               `json:"iterations"`
	Transcript   []agent.Step      `json:"transcript"`
}

// Analyst runs the analysis and prediction agents over normalized fights.
type Analyst struct {
	oracle   oracle.Oracle
	cfg      agent.Config
	repo     RunRepository
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Analyst.
type Option func(*Analyst)

// WithRepository persists every run.
func WithRepository(repo RunRepository) Option {
	return func(a *Analyst) { a.repo = repo }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(a *Analyst) { a.observer = o }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyst) { a.logger = l }
}

// NewAnalyst creates an analyst answering through orc.
func NewAnalyst(orc oracle.Oracle, cfg agent.Config, opts ...Option) *Analyst {
	a := &Analyst{
		oracle: orc,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyst) agentOptions() []agent.Option {
	opts := []agent.Option{agent.WithLogger(a.logger)}
	if a.observer != nil {
		opts = append(opts, agent.WithObserver(a.observer))
	}
	return opts
}

// Analyze runs the analysis agent and returns its final text unchanged.
func (a *Analyst) Analyze(ctx context.Context, record models.MatchupRecord) (AnalysisResult, error) {
	cfg := a.cfg
	cfg.Preamble = ""
	ag := agent.New(a.oracle, tools.AnalysisRegistry(a.oracle), cfg, a.agentOptions()...)

	input := fmt.Sprintf("Analyze the upcoming fight between %s and %s", record.Fighter1.Name, record.Fighter2.Name)
	res := ag.Run(ctx, tools.Bind(record), input)

	return AnalysisResult{
		Analysis:   res.FinalText,
		StopReason: res.StopReason,
		Iterations: res.Iterations,
		Transcript: res.Transcript,
	}, abortErr(res.StopReason)
}

// Predict runs the prediction agent and extracts a structured prediction.
func (a *Analyst) Predict(ctx context.Context, record models.MatchupRecord) (PredictionResult, error) {
	cfg := a.cfg
	cfg.Preamble = PredictionPreamble
	ag := agent.New(a.oracle, tools.PredictionRegistry(a.oracle), cfg, a.agentOptions()...)

	input := fmt.Sprintf("Predict the winner of the upcoming fight between %s and %s with confidence level and reasoning.",
		record.Fighter1.Name, record.Fighter2.Name)
	res := ag.Run(ctx, tools.Bind(record), input)

	return PredictionResult{
		Prediction:   Extract(res.FinalText, record.Fighter1.Name, record.Fighter2.Name),
		FullAnalysis: res.FinalText,
		StopReason:   res.StopReason,
		Iterations:   res.Iterations,
		Transcript:   res.Transcript,
	}, abortErr(res.StopReason)
}

// Run executes the agents selected by mode and stores the run when a
// repository is configured. On ErrRunAborted the partial run is still returned.
func (a *Analyst) Run(ctx context.Context, record models.MatchupRecord, mode models.AnalysisMode) (*models.AnalysisRun, error) {
	run := &models.AnalysisRun{
		ID:          uuid.NewString(),
		Fighter1:    record.Fighter1.Name,
		Fighter2:    record.Fighter2.Name,
		WeightClass: record.WeightClass,
		Mode:        mode,
		CreatedAt:   a.now().UTC(),
	}

	var runErr error

	if mode.Includes(models.ModeAnalyze) {
		res, err := a.Analyze(ctx, record)
		run.Analysis = res.Analysis
		run.AnalysisStop = string(res.StopReason)
		if err != nil {
			runErr = err
		}
	}

	if mode.Includes(models.ModePredict) && ctx.Err() == nil {
		res, err := a.Predict(ctx, record)
		prediction := res.Prediction
		run.Prediction = &prediction
		run.FullAnalysis = res.FullAnalysis
		run.PredictionStop = string(res.StopReason)
		if err != nil {
			runErr = err
		}
	}

	if runErr == nil && ctx.Err() != nil {
		runErr = fmt.Errorf("%w: %w", ErrRunAborted, ctx.Err())
	}

	a.logger.Info("fight analyzed",
		"run_id", run.ID,
		"matchup", record.Title(),
		"mode", mode,
		"analysis_stop", run.AnalysisStop,
		"prediction_stop", run.PredictionStop,
	)

	if runErr != nil {
		return run, runErr
	}

	if a.repo != nil {
		if err := a.repo.Create(ctx, run); err != nil {
			a.logger.Error("failed to save analysis run", "run_id", run.ID, "error", err)
		}
	}

	return run, nil
}

func abortErr(reason agent.StopReason) error {
	switch reason {
	case agent.StopCancelled, agent.StopOracleUnavailable:
		return fmt.Errorf("%w: agent stopped with %s", ErrRunAborted, reason)
	default:
		return nil
	}
}
