package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "")
	os.Unsetenv("APP_MODE")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ModeServer, cfg.AppMode)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "videos", cfg.PostsCollection)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("DOCUMENT_ENGINE", "")
	os.Unsetenv("DOCUMENT_ENGINE")
	t.Setenv("MEDIA_BUCKET", "")
	os.Unsetenv("MEDIA_BUCKET")

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("DOCUMENT_ENGINE=memory\nMEDIA_BUCKET=clips\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DOCUMENT_ENGINE")
		os.Unsetenv("MEDIA_BUCKET")
	})

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, EngineMemory, cfg.DocumentEngine)
	assert.Equal(t, "clips", cfg.MediaBucket)
}

func TestLoadRejectsBadCombinations(t *testing.T) {
	t.Setenv("DOCUMENT_ENGINE", "postgres")
	t.Setenv("POSTGRES_URL", "")
	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)

	t.Setenv("DOCUMENT_ENGINE", "memory")
	t.Setenv("APP_MODE", "WORKER")
	t.Setenv("BROKER_URL", "")
	_, err = Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)

	t.Setenv("APP_MODE", "CLIENT")
	t.Setenv("CLIENT_EMAIL", "jane@example.com")
	t.Setenv("CLIENT_PASSWORD", "")
	_, err = Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)

	t.Setenv("APP_MODE", "BATCH")
	_, err = Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
}
