package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
	"telegram-nutrition-bot/internal/infra/logging"
	"telegram-nutrition-bot/internal/infra/metrics"
)

var _ adapter.VisionAdapter = (*observedAI)(nil)

// observedAI bounds each call with a timeout and records latency/usage.
type observedAI struct {
	inner   adapter.VisionAdapter
	model   string
	timeout time.Duration
	log     *zerolog.Logger
}

func NewObservedAI(inner adapter.VisionAdapter, model string, timeout time.Duration, log *zerolog.Logger) adapter.VisionAdapter {
	return &observedAI{inner: inner, model: model, timeout: timeout, log: log}
}

func (o *observedAI) Name() string { return o.inner.Name() }

func (o *observedAI) Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := o.inner.Analyze(ctx, req)
	elapsed := time.Since(start)

	metrics.ObserveVisionCall(o.inner.Name(), o.model,
		res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Usage.TotalTokens,
		int(elapsed.Milliseconds()), err == nil)

	l := logging.With(ctx, o.log)
	if err != nil {
		l.Warn().Err(err).Str("provider", o.inner.Name()).Dur("duration", elapsed).Msg("vision call failed")
		if !errors.Is(err, domain.ErrInference) {
			err = fmt.Errorf("%w: %s: %w", domain.ErrInference, o.inner.Name(), err)
		}
		return res, err
	}
	l.Info().
		Str("provider", o.inner.Name()).
		Str("model", res.Model).
		Int("tokens_total", res.Usage.TotalTokens).
		Dur("duration", elapsed).
		Msg("vision call")
	return res, nil
}
