package repositories

import (
	"context"
	"fmt"

	"coffeestock/internal/models"
)

// UsersKey is the preference key holding the serialized UserSet.
const UsersKey = "coffeestock_users"

// PreferenceUserRepository stores the whole UserSet as one JSON blob under UsersKey.
type PreferenceUserRepository struct {
	prefs PreferenceRepository
}

// NewPreferenceUserRepository creates a new instance of PreferenceUserRepository.
func NewPreferenceUserRepository(prefs PreferenceRepository) *PreferenceUserRepository {
	return &PreferenceUserRepository{
		prefs: prefs,
	}
}

// Load reads and decodes the UserSet. A missing key yields an empty set.
func (r *PreferenceUserRepository) Load(ctx context.Context) (models.UserSet, error) {
	blob, found, err := r.prefs.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	if !found {
		return models.UserSet{}, nil
	}
	users, err := models.ParseUserSet(blob)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Save encodes and writes the full UserSet.
func (r *PreferenceUserRepository) Save(ctx context.Context, users models.UserSet) error {
	blob, err := models.MarshalUserSet(users)
	if err != nil {
		return err
	}
	if err := r.prefs.Set(ctx, UsersKey, blob); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// Clear removes the UserSet entry entirely.
func (r *PreferenceUserRepository) Clear(ctx context.Context) error {
	if err := r.prefs.Remove(ctx, UsersKey); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}
