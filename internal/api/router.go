package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/STRATINT/fightintel/internal/auth"
	"github.com/STRATINT/fightintel/internal/forecaster"
	"github.com/STRATINT/fightintel/internal/metrics"
)

// Dependencies wires the router. Runs and InferenceLogs may be nil when no
// database is configured; their routes then answer 503.
type Dependencies struct {
	Analyst       *forecaster.Analyst
	Auth          *auth.Authenticator
	Runs          RunStore
	InferenceLogs InferenceLogStore
	Metrics       *metrics.Collector
	Concurrency   int
	Logger        *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	h := &Handler{
		analyst:     deps.Analyst,
		concurrency: deps.Concurrency,
		logger:      deps.Logger,
	}
	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	runHandler := NewRunHandler(deps.Runs, deps.Logger)
	inferenceLogHandler := NewInferenceLogHandler(deps.InferenceLogs, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.InstrumentHandler)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/fights/normalize", h.NormalizeFights)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)
			// agent runs can take minutes on local models
			r.Use(middleware.Timeout(10 * time.Minute))

			r.Post("/fights/analyze", h.AnalyzeFight)
			r.Post("/fights/predict", h.PredictFight)
			r.Post("/batch", h.RunBatch)

			r.Get("/runs", runHandler.ListRuns)
			r.Get("/runs/{id}", runHandler.GetRun)
			r.Get("/runs/{id}/report", runHandler.GetReport)

			r.Get("/inference-logs", inferenceLogHandler.ListInferenceLogs)
			r.Get("/inference-logs/stats", inferenceLogHandler.GetInferenceStats)
		})
	})

	return r
}
