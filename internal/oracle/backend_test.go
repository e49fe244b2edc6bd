package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/STRATINT/fightintel/internal/config"
)

func TestOpenAIBackendComplete(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = body.Model
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" || body.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"mistral","choices":[{"index":0,"message":{"role":"assistant","content":"Final Answer: ok"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(OpenAIConfig{Provider: "ollama", BaseURL: server.URL + "/v1", Model: "mistral"})
	if backend.Provider() != "ollama" {
		t.Errorf("expected ollama provider, got %q", backend.Provider())
	}

	completion, err := backend.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if gotModel != "mistral" {
		t.Errorf("expected model mistral, got %q", gotModel)
	}
	if completion.Text != "Final Answer: ok" || completion.InputTokens != 5 || completion.OutputTokens != 3 {
		t.Errorf("unexpected completion: %+v", completion)
	}
}

func TestOpenAIBackendServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, Model: "gpt-4o-mini", APIKey: "sk-test"})
	_, err := backend.Complete(context.Background(), "hello")
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestOpenAIBackendClientErrorIsFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, Model: "gpt-4o-mini", APIKey: "sk-test"})
	_, err := backend.Complete(context.Background(), "hello")
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected final error, got %v", err)
	}
}

func TestOpenAIBackendNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, Model: "m"})
	if _, err := backend.Complete(context.Background(), "hello"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

type fakeMessager struct {
	params anthropic.MessageNewParams
	resp   *anthropic.Message
	err    error
}

func (f *fakeMessager) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return f.resp, f.err
}

func withFakeAnthropic(t *testing.T, fake *fakeMessager) {
	t.Helper()
	prev := newAnthropicClient
	newAnthropicClient = func(apiKey, baseURL string) AnthropicMessager { return fake }
	t.Cleanup(func() { newAnthropicClient = prev })
}

func TestAnthropicBackendComplete(t *testing.T) {
	fake := &fakeMessager{resp: &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Thought: compare reach"},
			{Type: "text", Text: "\nFinal Answer: Pereira"},
		},
		Usage: anthropic.Usage{InputTokens: 12, OutputTokens: 7},
	}}
	withFakeAnthropic(t, fake)

	backend, err := NewAnthropicBackend(AnthropicConfig{APIKey: "sk-ant", Model: "claude-3-5-haiku-latest"})
	if err != nil {
		t.Fatalf("NewAnthropicBackend returned error: %v", err)
	}

	completion, err := backend.Complete(context.Background(), "who wins")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completion.Text != "Thought: compare reach\nFinal Answer: Pereira" {
		t.Errorf("unexpected text %q", completion.Text)
	}
	if completion.InputTokens != 12 || completion.OutputTokens != 7 {
		t.Errorf("unexpected usage %+v", completion)
	}
	if fake.params.MaxTokens != 1024 {
		t.Errorf("expected default max tokens, got %d", fake.params.MaxTokens)
	}
	if string(fake.params.Model) != "claude-3-5-haiku-latest" {
		t.Errorf("unexpected model %q", fake.params.Model)
	}
}

func TestAnthropicBackendRequiresKey(t *testing.T) {
	if _, err := NewAnthropicBackend(AnthropicConfig{Model: "claude"}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestNewBackend(t *testing.T) {
	withFakeAnthropic(t, &fakeMessager{})

	tests := []struct {
		name     string
		cfg      config.OracleConfig
		provider string
		wantErr  bool
	}{
		{"ollama", config.OracleConfig{Provider: "ollama", Model: "mistral"}, "ollama", false},
		{"openai", config.OracleConfig{Provider: "openai", Model: "gpt-4o", OpenAIAPIKey: "sk"}, "openai", false},
		{"openai without key", config.OracleConfig{Provider: "openai", Model: "gpt-4o"}, "", true},
		{"anthropic", config.OracleConfig{Provider: "anthropic", Model: "claude", AnthropicAPIKey: "sk"}, "anthropic", false},
		{"unknown", config.OracleConfig{Provider: "gemini", Model: "x"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewBackend(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend returned error: %v", err)
			}
			if backend.Provider() != tt.provider {
				t.Errorf("expected provider %q, got %q", tt.provider, backend.Provider())
			}
		})
	}
}
