package repositories

import (
	"context"
	"errors"
	"fmt"

	"coffeestock/internal/models"
)

const (
	// CurrentUserKey holds the username of the logged-in user.
	CurrentUserKey = "currentUser"
	// LoginStatusKey holds "true" while a user is logged in.
	LoginStatusKey = "isLoggedIn"

	loginStatusTrue = "true"
)

// SessionRepository persists the device session.
type SessionRepository interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, username string) error
	Clear(ctx context.Context) error
}

// PreferenceSessionRepository stores the session as two independent preference entries.
// The entries are not written atomically, so Load may observe a partial session;
// callers must check Session.Valid.
type PreferenceSessionRepository struct {
	prefs PreferenceRepository
}

// NewPreferenceSessionRepository creates a new instance of PreferenceSessionRepository.
func NewPreferenceSessionRepository(prefs PreferenceRepository) *PreferenceSessionRepository {
	return &PreferenceSessionRepository{
		prefs: prefs,
	}
}

// Load reads both session entries.
func (r *PreferenceSessionRepository) Load(ctx context.Context) (models.Session, error) {
	username, _, err := r.prefs.Get(ctx, CurrentUserKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read current user: %w", err)
	}
	status, _, err := r.prefs.Get(ctx, LoginStatusKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read login status: %w", err)
	}
	return models.Session{
		CurrentUsername: username,
		LoggedIn:        status == loginStatusTrue,
	}, nil
}

// Save writes the current user and then the login flag.
func (r *PreferenceSessionRepository) Save(ctx context.Context, username string) error {
	if err := r.prefs.Set(ctx, CurrentUserKey, username); err != nil {
		return fmt.Errorf("failed to write current user: %w", err)
	}
	if err := r.prefs.Set(ctx, LoginStatusKey, loginStatusTrue); err != nil {
		return fmt.Errorf("failed to write login status: %w", err)
	}
	return nil
}

// Clear removes both entries, attempting the second even if the first fails.
func (r *PreferenceSessionRepository) Clear(ctx context.Context) error {
	var errs []error
	if err := r.prefs.Remove(ctx, CurrentUserKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove current user: %w", err))
	}
	if err := r.prefs.Remove(ctx, LoginStatusKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove login status: %w", err))
	}
	return errors.Join(errs...)
}
