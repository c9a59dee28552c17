package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/boards-cli/internal/domain"
)

func newTestStateStore(t *testing.T) *StateStore {
	t.Helper()

	cfg := viper.New()
	cfg.Set(authStatePathKey, filepath.Join(t.TempDir(), "auth.toml"))

	store, err := NewStateStore(cfg)
	require.NoError(t, err)

	return store
}

func TestStateStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStateStore(t)
	ctx := context.Background()

	want := domain.AuthState{
		Status:          domain.AuthStatusValid,
		AccountLabel:    "tester@example.com",
		LastValidatedAt: time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStateStoreLoadMissingFileReturnsUnauthenticated(t *testing.T) {
	t.Parallel()

	store := newTestStateStore(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AuthStatusUnauthenticated, got.Status)
	assert.Empty(t, got.AccountLabel)
	assert.True(t, got.LastValidatedAt.IsZero())
}

func TestStateStoreLoadRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	store := newTestStateStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.path), 0o700))
	require.NoError(t, os.WriteFile(store.path, []byte("version = 1\nstatus = \"weird\"\n"), 0o600))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auth status")
}

func TestStateStoreSaveEnforcesFilePermissions(t *testing.T) {
	t.Parallel()

	store := newTestStateStore(t)
	require.NoError(t, store.Save(context.Background(), domain.AuthState{Status: domain.AuthStatusValid}))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStateStoreFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	store := newTestStateStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.path), 0o700))
	require.NoError(t, os.WriteFile(store.path, []byte("version = 99\n"), 0o600))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported auth state schema version")
}

func TestStateStoreDefaultPathLandsInConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStateStore(viper.New())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/bd", "auth.toml"), store.path)
}
