package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/config"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
)

// NewFromConfig builds the configured provider, wrapped with the per-call
// timeout, metrics and the concurrency cap.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, log *zerolog.Logger) (adapter.VisionAdapter, error) {
	var (
		base adapter.VisionAdapter
		err  error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		base, err = NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model, cfg.MaxOutputTokens)
	case config.ProviderOpenAI:
		base, err = NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIURL, cfg.Model, cfg.MaxOutputTokens)
	case config.ProviderNoop:
		base = NewNoopAIAdapter(log)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s adapter: %w", cfg.Provider, err)
	}

	observed := NewObservedAI(base, cfg.Model, cfg.Timeout, log)
	return NewLimitedAI(observed, cfg.ConcurrentLimit), nil
}
