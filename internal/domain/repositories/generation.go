package repositories

import (
	"context"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

type GenerationRepository interface {
	// Create appends one history row. The source snapshot is expected to be
	// capped by the caller before it reaches the store.
	Create(ctx context.Context, generation *models.Generation) error

	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error)
}
