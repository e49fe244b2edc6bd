// Package app wires configuration into the oracle, analyst, storage and
// observability components shared by every command.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/STRATINT/fightintel/internal/agent"
	"github.com/STRATINT/fightintel/internal/api"
	"github.com/STRATINT/fightintel/internal/auth"
	"github.com/STRATINT/fightintel/internal/cloudsql"
	"github.com/STRATINT/fightintel/internal/config"
	"github.com/STRATINT/fightintel/internal/database"
	"github.com/STRATINT/fightintel/internal/forecaster"
	"github.com/STRATINT/fightintel/internal/inference"
	"github.com/STRATINT/fightintel/internal/metrics"
	"github.com/STRATINT/fightintel/internal/oracle"
	"github.com/STRATINT/fightintel/internal/telemetry"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Oracle  oracle.Oracle
	Analyst *forecaster.Analyst

	// nil unless a database is configured
	DB            *sqlx.DB
	Runs          *database.AnalysisRunRepository
	InferenceLogs *database.InferenceLogRepository

	inference         *inference.Logger
	redis             *redis.Client
	shutdownTelemetry telemetry.ShutdownFunc
}

// New builds an App. A configured database is connected and migrated; a
// configured Redis URL enables the oracle response cache.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	collector, err := metrics.NewCollector()
	if err != nil {
		return nil, fmt.Errorf("create metrics collector: %w", err)
	}
	a.Metrics = collector

	a.shutdownTelemetry, err = telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, err
	}

	dbURL, err := cloudsql.DatabaseURL(cfg.Storage)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	if dbURL != "" {
		logger.Info("database configuration", "config", cloudsql.ConnectionInfo(cfg.Storage))
		if err := a.openDatabase(ctx, dbURL); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}

	backend, err := oracle.NewBackend(cfg.Oracle)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("create oracle backend: %w", err)
	}
	logger.Info("oracle configured", "provider", backend.Provider(), "model", backend.Model())

	a.Oracle = oracle.NewClient(backend,
		oracle.WithTimeout(cfg.Oracle.Timeout),
		oracle.WithRetryPolicy(oracle.PolicyFromConfig(cfg.Oracle)),
		oracle.WithObserver(collector),
		oracle.WithInferenceLogger(a.inference),
		oracle.WithLogger(logger),
	)

	if cfg.Cache.RedisURL != "" {
		client, err := oracle.NewRedisClient(cfg.Cache.RedisURL)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.redis = client
		namespace := backend.Provider() + "/" + backend.Model()
		a.Oracle = oracle.NewCachedOracle(a.Oracle, oracle.NewRedisCache(client), cfg.Cache.TTL, namespace, logger)
		logger.Info("oracle cache enabled", "ttl", cfg.Cache.TTL.String())
	}

	opts := []forecaster.Option{
		forecaster.WithObserver(collector),
		forecaster.WithLogger(logger),
	}
	if a.Runs != nil {
		opts = append(opts, forecaster.WithRepository(a.Runs))
	}
	a.Analyst = forecaster.NewAnalyst(a.Oracle, AgentConfig(cfg.Agent), opts...)

	return a, nil
}

// AgentConfig converts the loop bounds from configuration.
func AgentConfig(cfg config.AgentConfig) agent.Config {
	return agent.Config{
		MaxIterations:    cfg.MaxIterations,
		MaxParseFailures: cfg.MaxParseFailures,
	}
}

func (a *App) openDatabase(ctx context.Context, url string) error {
	dbCfg := database.DefaultConfig()
	dbCfg.URL = url

	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	a.DB = db

	if err := database.RunMigrations(ctx, db, a.Logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	a.Runs = database.NewAnalysisRunRepository(db)
	a.InferenceLogs = database.NewInferenceLogRepository(db)
	a.inference = inference.NewLogger(a.InferenceLogs, a.Logger)
	a.Logger.Info("database connected", "driver", db.DriverName())
	return nil
}

// Router builds the HTTP API over the App.
func (a *App) Router() (http.Handler, error) {
	authenticator, err := auth.NewAuthenticator(a.Config.Auth)
	if err != nil {
		return nil, err
	}

	deps := api.Dependencies{
		Analyst:     a.Analyst,
		Auth:        authenticator,
		Metrics:     a.Metrics,
		Concurrency: a.Config.Batch.Concurrency,
		Logger:      a.Logger,
	}
	if a.Runs != nil {
		deps.Runs = a.Runs
		deps.InferenceLogs = a.InferenceLogs
	}

	return api.NewRouter(deps), nil
}

// Close flushes pending inference rows and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	a.inference.Wait()

	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.shutdownTelemetry != nil {
		errs = append(errs, a.shutdownTelemetry(ctx))
	}

	return errors.Join(errs...)
}
