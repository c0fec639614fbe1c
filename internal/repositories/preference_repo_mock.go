package repositories

import (
	"context"
	"sync"
)

// MockPreferenceRepository is an in-memory implementation of PreferenceRepository.
// It backs the "memory" preferences backend and tests.
type MockPreferenceRepository struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMockPreferenceRepository creates a new instance of MockPreferenceRepository.
func NewMockPreferenceRepository() *MockPreferenceRepository {
	return &MockPreferenceRepository{
		values: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (r *MockPreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (r *MockPreferenceRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

// Remove deletes key.
func (r *MockPreferenceRepository) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}
