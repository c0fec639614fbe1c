package repositories_test

import (
	"context"
	"path/filepath"
	"testing"

	"coffeestock/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := repositories.OpenSQLite(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repositories.CloseDB(db) })
	return db
}

func TestGORMPreferenceRepository_SetGetRemove(t *testing.T) {
	repo, err := repositories.NewGORMPreferenceRepository(openTestDB(t, "preferences.db"))
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, "isLoggedIn", "true"))
	value, found, err := repo.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", value)

	// Set replaces the previous value.
	require.NoError(t, repo.Set(ctx, "isLoggedIn", "false"))
	value, _, err = repo.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.Equal(t, "false", value)

	require.NoError(t, repo.Remove(ctx, "isLoggedIn"))
	_, found, err = repo.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, repo.Remove(ctx, "isLoggedIn"), "removing a missing key is not an error")
}

func TestGORMPreferenceRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.db")
	ctx := context.Background()

	db, err := repositories.OpenSQLite(path)
	require.NoError(t, err)
	repo, err := repositories.NewGORMPreferenceRepository(db)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, repositories.CurrentUserKey, "bob"))
	require.NoError(t, repositories.CloseDB(db))

	db, err = repositories.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repositories.CloseDB(db) })
	repo, err = repositories.NewGORMPreferenceRepository(db)
	require.NoError(t, err)

	value, found, err := repo.Get(ctx, repositories.CurrentUserKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bob", value)
}

func TestMockPreferenceRepository_HonoursContext(t *testing.T) {
	repo := repositories.NewMockPreferenceRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Remove(ctx, "k"), context.Canceled)
}
