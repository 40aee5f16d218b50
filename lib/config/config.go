package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/icco/movies/lib/lock"
	"github.com/icco/movies/lib/omdb"
	"github.com/joho/godotenv"
)

type Config struct {
	// OMDb
	OMDbAPIKey  string
	OMDbURL     string
	OMDbTimeout time.Duration

	// Storage
	DBPath  string
	LockDir string

	// Output
	StaticDir string
	Port      string
	LogLevel  slog.Level
}

// Load reads envFile (if it exists) into the environment and builds a Config
// from it. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("OMDB_TIMEOUT", omdb.DefaultTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid OMDB_TIMEOUT: %w", err)
	}

	level, err := ParseLevel(getEnvOrDefault("LOG_LEVEL", "warn"))
	if err != nil {
		return nil, err
	}

	return &Config{
		OMDbAPIKey:  os.Getenv("OMDB_API_KEY"),
		OMDbURL:     getEnvOrDefault("OMDB_URL", omdb.DefaultBaseURL),
		OMDbTimeout: timeout,

		DBPath:  getEnvOrDefault("DB_PATH", "data/movies.db"),
		LockDir: getEnvOrDefault("LOCK_DIR", lock.DefaultDir),

		StaticDir: getEnvOrDefault("STATIC_DIR", "_static"),
		Port:      getEnvOrDefault("PORT", "8080"),
		LogLevel:  level,
	}, nil
}

// ParseLevel maps debug, info, warn or error onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
