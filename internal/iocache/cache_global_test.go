package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetManager gives each test a fresh global manager.
func resetManager(t *testing.T) {
	t.Helper()
	Manager = &CacheStoreManager{}
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(CloseCaching)
}

func TestInitCaching(t *testing.T) {
	t.Run("sqlite stores", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		require.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath))
		assert.NotNil(t, Manager.GetPlatformStore())
		assert.NotNil(t, Manager.GetAnalysisStore())

		_, err := os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(analysisPath)
		assert.NoError(t, err)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		for range 3 {
			assert.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, "", ""))
		}
		assert.Nil(t, Manager.GetAnalysisStore())
		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, ""))
		status, err := Manager.GetPlatformStore().GetStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetManager(t)
		err := InitCaching(schema.DatabaseBackend("bogus"), "", "", "")
		assert.ErrorContains(t, err, "failed to initialize platform caching")
		assert.Nil(t, Manager.GetPlatformStore())
	})
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		require.NoError(t, os.WriteFile(dbPath, []byte("x"), 0o600))
		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.ErrorContains(t, ClearCache(schema.DatabaseBackend("bogus"), "", ""), "unsupported cache backend")
	})
}

func TestClearAnalysis(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorContains(t, ClearAnalysis(schema.DatabaseBackend("bogus"), "", ""), "unsupported analysis backend")
}
