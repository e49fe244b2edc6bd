// Command batch analyzes the fights in an event file from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/STRATINT/fightintel/internal/app"
	"github.com/STRATINT/fightintel/internal/config"
	"github.com/STRATINT/fightintel/internal/forecaster"
	"github.com/STRATINT/fightintel/internal/ingestion"
	"github.com/STRATINT/fightintel/internal/logging"
	"github.com/STRATINT/fightintel/internal/models"
	"github.com/STRATINT/fightintel/internal/report"
)

type options struct {
	input       string
	mode        models.AnalysisMode
	fight       string
	concurrency int
	reportDir   string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:], cfg.Batch.Concurrency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.NewWithWriter(cfg.Logging, os.Stderr)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	runErr := run(ctx, application.Analyst, opts, os.Stdout, logger)

	if err := application.Close(context.Background()); err != nil {
		logger.Error("failed to release resources", "error", err)
	}
	if runErr != nil {
		logger.Error("batch failed", "error", runErr)
		os.Exit(1)
	}
}

func parseFlags(args []string, defaultConcurrency int) (options, error) {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	input := fs.String("input", "fight_data.json", "event file (.json, .yaml or .yml)")
	mode := fs.String("mode", string(models.ModeBoth), "analyze, predict or both")
	fight := fs.String("fight", "", "fight number (1-based) or fighter name; empty runs the whole card")
	concurrency := fs.Int("concurrency", defaultConcurrency, "fights analyzed at once")
	reportDir := fs.String("report-dir", "", "write an HTML report per fight into this directory")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	parsed, ok := models.ParseAnalysisMode(*mode)
	if !ok {
		return options{}, fmt.Errorf("invalid -mode %q: must be analyze, predict or both", *mode)
	}
	if *concurrency < 1 {
		return options{}, fmt.Errorf("invalid -concurrency %d: must be at least 1", *concurrency)
	}

	return options{
		input:       *input,
		mode:        parsed,
		fight:       strings.TrimSpace(*fight),
		concurrency: *concurrency,
		reportDir:   *reportDir,
	}, nil
}

func run(ctx context.Context, analyst *forecaster.Analyst, opts options, out io.Writer, logger *slog.Logger) error {
	entries, err := ingestion.LoadEntries(opts.input)
	if err != nil {
		return err
	}

	if opts.fight != "" {
		return runOne(ctx, analyst, entries, opts, out, logger)
	}

	results, rep := analyst.RunBatch(ctx, entries, opts.mode, opts.concurrency)
	fmt.Fprintf(out, "Found %d fights to analyze.\n", len(results))
	for _, r := range results {
		if r.Run != nil {
			printRun(out, r.Run)
			writeReport(opts.reportDir, r.Run, logger)
		}
		if r.Error != "" {
			fmt.Fprintf(out, "\nError analyzing fight: %s\n", r.Error)
		}
	}

	fmt.Fprintf(out, "\nProcessed: %d  Skipped: %d  Failed: %d\n", rep.Processed, rep.Skipped, rep.Failed)
	return nil
}

func runOne(ctx context.Context, analyst *forecaster.Analyst, entries []models.RawFightEntry, opts options, out io.Writer, logger *slog.Logger) error {
	fights, _ := ingestion.ProcessBatch(entries, logger)
	fmt.Fprintf(out, "Found %d fights to analyze.\n", len(fights))
	for i, f := range fights {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, f.Record.Title())
	}

	fight, err := ingestion.SelectFight(fights, opts.fight)
	if err != nil {
		fmt.Fprintln(out, "Invalid fight selection.")
		return err
	}

	result, err := analyst.Run(ctx, fight.Record, opts.mode)
	if result != nil {
		printRun(out, result)
		writeReport(opts.reportDir, result, logger)
	}
	if errors.Is(err, forecaster.ErrRunAborted) {
		fmt.Fprintf(out, "\nError analyzing fight: %v\n", err)
	}
	return err
}

func printRun(out io.Writer, run *models.AnalysisRun) {
	fmt.Fprintf(out, "\nAnalyzing: %s vs %s\n", run.Fighter1, run.Fighter2)
	fmt.Fprintf(out, "Weight Class: %s\n", run.WeightClass)

	if run.Mode.Includes(models.ModeAnalyze) {
		fmt.Fprintln(out, "\nGenerating fight analysis...")
		fmt.Fprintln(out, "\nAnalysis Results:")
		fmt.Fprintln(out, "================")
		fmt.Fprintln(out, run.Analysis)
	}

	if run.Mode.Includes(models.ModePredict) && run.Prediction != nil {
		winner := report.Undetermined
		if run.Prediction.PredictedWinner != nil {
			winner = *run.Prediction.PredictedWinner
		}
		fmt.Fprintln(out, "\nGenerating winner prediction...")
		fmt.Fprintln(out, "\nPrediction Results:")
		fmt.Fprintln(out, "=================")
		fmt.Fprintf(out, "\nPredicted Winner: %s\n", winner)
		fmt.Fprintf(out, "Confidence Level: %s\n", run.Prediction.Confidence)
		fmt.Fprintln(out, "\nFull Analysis:")
		fmt.Fprintln(out, run.FullAnalysis)
	}
}

func writeReport(dir string, run *models.AnalysisRun, logger *slog.Logger) {
	if dir == "" {
		return
	}

	doc, err := report.Document(run)
	if err != nil {
		logger.Error("failed to render report", "run_id", run.ID, "error", err)
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create report directory", "dir", dir, "error", err)
		return
	}

	path := filepath.Join(dir, reportName(run))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		logger.Error("failed to write report", "path", path, "error", err)
		return
	}
	logger.Info("report written", "path", path)
}

func reportName(run *models.AnalysisRun) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, run.Fighter1+"-vs-"+run.Fighter2)
	return fmt.Sprintf("%s-%s.html", slug, run.ID)
}
