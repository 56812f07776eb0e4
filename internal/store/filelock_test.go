package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortLockConfig(timeout time.Duration) *FileLockConfig {
	retry := 10 * time.Millisecond
	maxRetry := int(timeout / retry)
	if maxRetry < 1 {
		maxRetry = 1
	}
	return &FileLockConfig{
		LockTimeout:  timeout,
		LockRetry:    retry,
		LockMaxRetry: maxRetry,
	}
}

func TestNewFileLock(t *testing.T) {
	lock, err := NewFileLock(filepath.Join(t.TempDir(), "mimir.lock"), nil)
	require.NoError(t, err)
	require.NotNil(t, lock)

	assert.True(t, lock.IsLocked())
	assert.GreaterOrEqual(t, lock.HeldDuration(), time.Duration(0))

	lock.Unlock()
	assert.False(t, lock.IsLocked())

	// second unlock only warns
	lock.Unlock()
}

func TestFileLockConcurrentAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mimir.lock")

	lock1, err := NewFileLock(path, shortLockConfig(200*time.Millisecond))
	require.NoError(t, err)

	_, err = NewFileLock(path, shortLockConfig(100*time.Millisecond))
	require.Error(t, err)

	lock1.Unlock()

	lock2, err := NewFileLock(path, shortLockConfig(200*time.Millisecond))
	require.NoError(t, err)
	lock2.Unlock()
}

func TestCleanupStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mimir.lock")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, CleanupStaleLock(path, time.Hour, false))
	_, err := os.Stat(path)
	assert.NoError(t, err, "lock kept without force")

	require.NoError(t, CleanupStaleLock(path, time.Hour, true))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, CleanupStaleLock(path, time.Hour, true), "missing lock is fine")
}

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	layout, err := ResolveLayout(root)
	require.NoError(t, err)

	assert.Equal(t, root, layout.Root)
	assert.Equal(t, filepath.Join(root, "db"), layout.DB)
	assert.Equal(t, filepath.Join(root, "mimir.lock"), layout.Lock)
	assert.Equal(t, filepath.Join(root, "ingested.json"), layout.Ledger)

	t.Setenv("HOME", root)
	layout, err = ResolveLayout("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".mimir", "vectors"), layout.Root)
}
