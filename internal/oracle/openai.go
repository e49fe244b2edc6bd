package oracle

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat endpoint. Ollama is
// reached through its /v1 compatibility API with the same client.
type OpenAIConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAIBackend calls the chat completions API.
type OpenAIBackend struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIBackend builds a backend for OpenAI or any compatible server.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	apiKey := cfg.APIKey
	if apiKey == "" {
		// ollama ignores the key but the client always sends one
		apiKey = "ollama"
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}

	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(clientCfg),
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (b *OpenAIBackend) Provider() string { return b.provider }

func (b *OpenAIBackend) Model() string { return b.model }

// Complete sends prompt as a single user message.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       b.model,
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return Completion{}, ErrEmptyResponse
	}

	return Completion{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && IsRetryableStatus(apiErr.HTTPStatusCode) {
		return NewRetryableError(err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && IsRetryableStatus(reqErr.HTTPStatusCode) {
		return NewRetryableError(err)
	}

	return fmt.Errorf("chat completion: %w", err)
}
