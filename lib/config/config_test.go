package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/icco/movies/lib/omdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"OMDB_API_KEY", "OMDB_URL", "OMDB_TIMEOUT", "DB_PATH", "LOCK_DIR", "STATIC_DIR", "PORT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, cfg.OMDbAPIKey)
	assert.Equal(t, omdb.DefaultBaseURL, cfg.OMDbURL)
	assert.Equal(t, 5*time.Second, cfg.OMDbTimeout)
	assert.Equal(t, "data/movies.db", cfg.DBPath)
	assert.Equal(t, "_static", cfg.StaticDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OMDB_API_KEY=from-file\nOMDB_TIMEOUT=2s\nLOG_LEVEL=debug\n"), 0600))
	// godotenv never overrides a variable that is set, even to "". The
	// t.Setenv calls in clearEnv restore the originals afterwards.
	for _, key := range []string{"OMDB_API_KEY", "OMDB_TIMEOUT", "LOG_LEVEL"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.OMDbAPIKey)
	assert.Equal(t, 2*time.Second, cfg.OMDbTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OMDB_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("OMDB_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load("")
	assert.Error(t, err)
}
