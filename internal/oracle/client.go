package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/STRATINT/fightintel/internal/inference"
)

const tracerName = "github.com/STRATINT/fightintel/internal/oracle"

// Observer receives per-attempt call outcomes, typically a metrics collector.
type Observer interface {
	ObserveOracleCall(provider, status string, latency time.Duration)
}

// Client wraps a Backend with a per-call timeout, retries, metrics,
// inference logging and tracing.
type Client struct {
	backend   Backend
	timeout   time.Duration
	policy    RetryPolicy
	observer  Observer
	inference *inference.Logger
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every single backend call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithInferenceLogger records every attempt to the inference log.
func WithInferenceLogger(l *inference.Logger) Option {
	return func(c *Client) { c.inference = l }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a Client around backend.
func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		timeout: 120 * time.Second,
		policy:  DefaultRetryPolicy(),
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends prompt to the backend. Failures that persist after retries
// are returned wrapped in ErrUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	operation := OperationFrom(ctx)
	provider, model := c.backend.Provider(), c.backend.Model()

	ctx, span := c.tracer.Start(ctx, "oracle.generate", trace.WithAttributes(
		attribute.String("oracle.provider", provider),
		attribute.String("oracle.model", model),
		attribute.String("oracle.operation", operation),
		attribute.Int("oracle.prompt_chars", len(prompt)),
	))
	defer span.End()

	var text string
	attempts := 0
	err := Retry(ctx, c.policy, func() error {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		completion, err := c.backend.Complete(callCtx, prompt)
		latency := time.Since(start)

		c.record(ctx, operation, completion, latency, err, attempts)
		if err != nil {
			return classify(ctx, callCtx, err)
		}

		text = completion.Text
		return nil
	})

	span.SetAttributes(attribute.Int("oracle.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "oracle call failed")
		c.logger.Warn("oracle call failed",
			"provider", provider,
			"model", model,
			"operation", operation,
			"attempts", attempts,
			"error", err,
		)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return text, nil
}

func (c *Client) record(ctx context.Context, operation string, completion Completion, latency time.Duration, err error, attempt int) {
	status := "success"
	if err != nil {
		status = "error"
	}

	if c.observer != nil {
		c.observer.ObserveOracleCall(c.backend.Provider(), status, latency)
	}

	c.inference.LogCompletion(ctx, c.backend.Provider(), c.backend.Model(), operation,
		completion.InputTokens, completion.OutputTokens, latency, err,
		map[string]interface{}{"attempt": attempt},
	)

	c.logger.Debug("oracle call",
		"provider", c.backend.Provider(),
		"operation", operation,
		"status", status,
		"latency_ms", latency.Milliseconds(),
		"output_chars", len(completion.Text),
	)
}
