// Command mcp serves an event file's fights to MCP clients over stdio.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/STRATINT/fightintel/internal/app"
	"github.com/STRATINT/fightintel/internal/config"
	"github.com/STRATINT/fightintel/internal/ingestion"
	"github.com/STRATINT/fightintel/internal/logging"
	"github.com/STRATINT/fightintel/internal/mcpserver"
)

var version = "dev"

func main() {
	input := flag.String("input", "fight_data.json", "event file (.json, .yaml or .yml)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	logger, err := logging.NewWithWriter(cfg.Logging, os.Stderr)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	entries, err := ingestion.LoadEntries(*input)
	if err != nil {
		logger.Error("failed to load event file", "path", *input, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	srv := mcpserver.New(application.Analyst, entries, version, logger)

	logger.Info("MCP server listening on stdio", "input", *input)
	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("mcp server error", "error", err)
	}

	if err := application.Close(context.Background()); err != nil {
		logger.Error("failed to release resources", "error", err)
	}
	logger.Info("MCP server stopped")
}
