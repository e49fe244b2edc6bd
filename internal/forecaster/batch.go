package forecaster

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/STRATINT/fightintel/internal/ingestion"
	"github.com/STRATINT/fightintel/internal/models"
)

// BatchReport counts the outcome of every entry in a batch.
type BatchReport struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// BatchResult is one well-formed entry's outcome. Index is the entry's
// position in the input.
type BatchResult struct {
	Index  int                  `json:"index"`
	Record models.MatchupRecord `json:"record"`
	Run    *models.AnalysisRun  `json:"run,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// RunBatch normalizes entries, drops malformed ones and analyzes the rest
// with at most concurrency fights in flight. Results keep input order.
func (a *Analyst) RunBatch(ctx context.Context, entries []models.RawFightEntry, mode models.AnalysisMode, concurrency int) ([]BatchResult, BatchReport) {
	fights, stats := ingestion.ProcessBatch(entries, a.logger)
	report := BatchReport{Total: stats.Total, Skipped: stats.Skipped}
	for i := 0; i < stats.Skipped; i++ {
		a.observeEntry("skipped")
	}

	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]BatchResult, len(fights))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, fight := range fights {
		results[i] = BatchResult{Index: fight.Index, Record: fight.Record}
		g.Go(func() error {
			run, err := a.Run(ctx, fight.Record, mode)
			results[i].Run = run
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Error != "" {
			report.Failed++
			a.observeEntry("failed")
			continue
		}
		report.Processed++
		a.observeEntry("processed")
	}

	a.logger.Info("batch finished",
		"total", report.Total,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	return results, report
}

func (a *Analyst) observeEntry(outcome string) {
	if a.observer != nil {
		a.observer.ObserveBatchEntry(outcome)
	}
}
