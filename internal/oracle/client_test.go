package oracle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   int
	results []error
	text    string
	block   bool
}

func (f *fakeBackend) Provider() string { return "fake" }
func (f *fakeBackend) Model() string    { return "fake-1" }

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (Completion, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return Completion{}, ctx.Err()
	}
	if idx < len(f.results) && f.results[idx] != nil {
		return Completion{}, f.results[idx]
	}
	return Completion{Text: f.text, InputTokens: len(prompt), OutputTokens: len(f.text)}, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []string
}

func (r *recordingObserver) ObserveOracleCall(provider, status string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, provider+":"+status)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientGenerateRetriesTransientFailures(t *testing.T) {
	backend := &fakeBackend{
		results: []error{NewRetryableError(errors.New("503")), NewRetryableError(errors.New("503"))},
		text:    "Final Answer: done",
	}
	observer := &recordingObserver{}
	client := NewClient(backend,
		WithRetryPolicy(fastPolicy(2)),
		WithObserver(observer),
		WithLogger(quietLogger()),
	)

	text, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Final Answer: done" {
		t.Errorf("unexpected text %q", text)
	}
	if backend.calls != 3 {
		t.Errorf("expected 3 backend calls, got %d", backend.calls)
	}

	want := []string{"fake:error", "fake:error", "fake:success"}
	if len(observer.statuses) != len(want) {
		t.Fatalf("expected %d observations, got %v", len(want), observer.statuses)
	}
	for i := range want {
		if observer.statuses[i] != want[i] {
			t.Errorf("observation %d = %q, want %q", i, observer.statuses[i], want[i])
		}
	}
}

func TestClientGenerateWrapsPermanentFailure(t *testing.T) {
	backend := &fakeBackend{results: []error{errors.New("invalid api key")}}
	client := NewClient(backend, WithRetryPolicy(fastPolicy(2)), WithLogger(quietLogger()))

	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("expected a single call for a permanent error, got %d", backend.calls)
	}
}

func TestClientGenerateTimesOutEachCall(t *testing.T) {
	backend := &fakeBackend{block: true}
	client := NewClient(backend,
		WithTimeout(20*time.Millisecond),
		WithRetryPolicy(fastPolicy(1)),
		WithLogger(quietLogger()),
	)

	start := time.Now()
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("expected timed out call to be retried once, got %d calls", backend.calls)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout was not enforced")
	}
}

func TestClientGenerateStopsOnCancellation(t *testing.T) {
	backend := &fakeBackend{block: true}
	client := NewClient(backend, WithRetryPolicy(fastPolicy(3)), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.Generate(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("cancelled call must not be retried, got %d calls", backend.calls)
	}
}

func TestOperationFrom(t *testing.T) {
	if got := OperationFrom(context.Background()); got != "generate" {
		t.Errorf("expected default operation, got %q", got)
	}
	ctx := WithOperation(context.Background(), "FormAnalysis")
	if got := OperationFrom(ctx); got != "FormAnalysis" {
		t.Errorf("expected FormAnalysis, got %q", got)
	}
}
