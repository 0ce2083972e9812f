package repositories

import (
	"context"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Upsert creates the profile row on first sign-in and refreshes
	// email/name/avatar on later sign-ins. Tier is left untouched on update.
	Upsert(ctx context.Context, user *models.User) error

	UpdateTier(ctx context.Context, id string, tier models.UserTier) error
}
