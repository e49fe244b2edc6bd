package oracle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/STRATINT/fightintel/internal/config"
)

// NewBackend selects a provider backend from configuration.
func NewBackend(cfg config.OracleConfig) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		return NewOpenAIBackend(OpenAIConfig{
			Provider:    "ollama",
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float32(cfg.Temperature),
		}), nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY not configured")
		}
		return NewOpenAIBackend(OpenAIConfig{
			Provider:    "openai",
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float32(cfg.Temperature),
		}), nil
	case "anthropic":
		return NewAnthropicBackend(AnthropicConfig{
			APIKey:      cfg.AnthropicAPIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

// PolicyFromConfig builds the retry policy for cfg.
func PolicyFromConfig(cfg config.OracleConfig) RetryPolicy {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = cfg.MaxRetries
	return policy
}
