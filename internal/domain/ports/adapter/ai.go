package adapter

import (
	"context"

	"telegram-nutrition-bot/internal/domain/model"
)

// VisionAdapter is the port for multimodal generation.
type VisionAdapter interface {
	// Name identifies the provider in logs and metrics ("gemini", "openai", ...).
	Name() string

	// Analyze sends the prompt together with the inline image and returns the
	// generated text. Every failure, including an empty answer, is an error.
	Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error)
}
