package repositories

import "context"

// PreferenceRepository is the key-value substrate backing accounts and the session.
// Get reports found=false for a missing key rather than an error.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
