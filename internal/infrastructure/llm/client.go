// Package llm talks to the language model used for revenue forecasting. Two
// providers are supported: any OpenAI compatible chat completions gateway and
// Google Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrDisabled is returned by NewClient when no provider is configured
var ErrDisabled = errors.New("llm provider is disabled")

// ErrEmptyCompletion is returned when the provider answered without content
var ErrEmptyCompletion = errors.New("llm returned no completion")

// Client completes a prompt. Implementations ask for a JSON answer.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// Model identifies the model in responses and logs
	Model() string
}

// NewClient builds the configured provider
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg, logger), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
