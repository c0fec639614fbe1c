package repositories

import (
	"context"
	"errors"
	"fmt"

	"coffeestock/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPreferenceRepository is a GORM implementation of PreferenceRepository.
type GORMPreferenceRepository struct {
	db *gorm.DB
}

// NewGORMPreferenceRepository creates a GORMPreferenceRepository and ensures its table exists.
func NewGORMPreferenceRepository(db *gorm.DB) (*GORMPreferenceRepository, error) {
	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate preferences table: %w", err)
	}
	return &GORMPreferenceRepository{
		db: db,
	}, nil
}

// Get retrieves the value stored under key.
func (r *GORMPreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var pref models.Preference
	if err := r.db.WithContext(ctx).First(&pref, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return pref.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *GORMPreferenceRepository) Set(ctx context.Context, key, value string) error {
	pref := models.Preference{Key: key, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (r *GORMPreferenceRepository) Remove(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Preference{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove preference %s: %w", key, err)
	}
	return nil
}
