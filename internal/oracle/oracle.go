package oracle

import (
	"context"
	"errors"
)

// Oracle maps a prompt to free text. Output carries no format or latency guarantee.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var (
	// ErrUnavailable wraps every failure to reach a model after retries.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrEmptyResponse is returned when a provider answers without any choices.
	ErrEmptyResponse = errors.New("empty oracle response")
)

// Completion is one provider response with token usage.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Backend is a provider-specific completion endpoint.
type Backend interface {
	Provider() string
	Model() string
	Complete(ctx context.Context, prompt string) (Completion, error)
}

type operationKey struct{}

// WithOperation tags oracle calls made with ctx, e.g. with a tool name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFrom returns the operation tag, or "generate".
func OperationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "generate"
}
