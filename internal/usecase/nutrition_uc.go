// File: internal/usecase/nutrition_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/model"
	"telegram-nutrition-bot/internal/domain/ports/adapter"
	"telegram-nutrition-bot/internal/infra/logging"
)

// Compile-time check
var _ NutritionUseCase = (*nutritionUC)(nil)

type NutritionUseCase interface {
	// Estimate downloads the photo and asks the vision provider for a
	// calorie/macronutrient estimate. Errors wrap domain.ErrImageRetrieval or
	// domain.ErrInference.
	Estimate(ctx context.Context, photo model.PhotoRef) (string, error)
}

type nutritionUC struct {
	files    adapter.FileFetcher
	ai       adapter.VisionAdapter
	prompt   string
	maxBytes int64
	log      *zerolog.Logger
}

func NewNutritionUseCase(files adapter.FileFetcher, ai adapter.VisionAdapter, prompt string, maxBytes int64, log *zerolog.Logger) *nutritionUC {
	return &nutritionUC{files: files, ai: ai, prompt: prompt, maxBytes: maxBytes, log: log}
}

func (n *nutritionUC) Estimate(ctx context.Context, photo model.PhotoRef) (string, error) {
	defer logging.TraceDuration(n.log, "NutritionUC.Estimate")()

	if strings.TrimSpace(photo.FileID) == "" {
		return "", fmt.Errorf("%w: %w: empty file id", domain.ErrImageRetrieval, domain.ErrInvalidArgument)
	}
	// Telegram reports the size up front for photos; skip the download when
	// it is already known to be too big.
	if n.maxBytes > 0 && int64(photo.FileSize) > n.maxBytes {
		return "", fmt.Errorf("%w: %w: %d > %d bytes", domain.ErrImageRetrieval, domain.ErrImageTooLarge, photo.FileSize, n.maxBytes)
	}

	data, mime, err := n.files.Fetch(ctx, photo.FileID, n.maxBytes)
	if err != nil {
		if errors.Is(err, domain.ErrImageRetrieval) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrImageRetrieval, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file %s", domain.ErrImageRetrieval, photo.FileID)
	}

	res, err := n.ai.Analyze(ctx, model.InferenceRequest{
		Prompt:   n.prompt,
		Image:    data,
		MIMEType: mime,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInference) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrInference, domain.ErrEmptyResponse)
	}
	return res.Text, nil
}
