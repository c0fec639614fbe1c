package repositories

import (
	"context"

	"coffeestock/internal/models"
)

// UserRepository defines access to the persisted UserSet.
type UserRepository interface {
	Load(ctx context.Context) (models.UserSet, error)
	Save(ctx context.Context, users models.UserSet) error
	Clear(ctx context.Context) error
}
