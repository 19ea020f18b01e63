package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
)

var _ adapter.VisionAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.VisionAdapter for local/dev testing.
// It logs the request instead of calling a provider.
type NoopAIAdapter struct {
	log   *zerolog.Logger
	delay time.Duration
}

func NewNoopAIAdapter(log *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: log, delay: 100 * time.Millisecond}
}

func (a *NoopAIAdapter) Name() string { return "noop" }

func (a *NoopAIAdapter) Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return model.InferenceResult{}, ctx.Err()
	}
	a.log.Debug().Int("image_bytes", len(req.Image)).Str("mime", req.MIMEType).Msg("noop vision call")
	return model.InferenceResult{
		Text:  "Estimated 450 kcal. Carbohydrate 55 g, protein 20 g, fat 15 g. (noop provider)",
		Model: "noop",
	}, nil
}
