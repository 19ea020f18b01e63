package application

import (
	"context"

	"telegram-nutrition-bot/internal/domain/model"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----

type NutritionUseCaseIface interface {
	Estimate(ctx context.Context, photo model.PhotoRef) (string, error)
}
