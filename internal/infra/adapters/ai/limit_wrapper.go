package ai

import (
	"context"

	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.VisionAdapter = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.VisionAdapter
	sem   chan struct{}
}

// NewLimitedAI caps the number of in-flight provider calls. A non-positive
// maxConcurrent returns inner unchanged.
func NewLimitedAI(inner adapter.VisionAdapter, maxConcurrent int) adapter.VisionAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Name() string { return l.inner.Name() }

func (l *limitedAI) Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return model.InferenceResult{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Analyze(ctx, req)
}
