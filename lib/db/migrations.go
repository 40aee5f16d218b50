package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/icco/movies/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open opens the SQLite database at path, creating its directory if needed.
// Foreign keys are enabled on every pooled connection through the DSN.
func Open(path string, logger *slog.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return gormDB, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// RunMigrations provisions the users and movies tables. It only ever creates
// what is missing, so running it on every start keeps existing rows.
func RunMigrations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if err := enableSQLiteOptimizations(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to enable SQLite optimizations: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Movie{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createAdditionalIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to create additional indexes: %w", err)
	}

	return nil
}

// enableSQLiteOptimizations enables SQLite-specific optimizations
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	optimizations := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range optimizations {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.WarnContext(ctx, "Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		} else {
			logger.DebugContext(ctx, "Executed pragma", slog.String("pragma", pragma))
		}
	}

	return nil
}

// createAdditionalIndexes creates indexes the struct tags do not describe.
func createAdditionalIndexes(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	additionalIndexes := []string{
		// List reads one user's movies in id order.
		"CREATE INDEX IF NOT EXISTS idx_movies_user_id ON movies(user_id, id)",
	}

	for _, indexSQL := range additionalIndexes {
		if err := db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		logger.DebugContext(ctx, "Created index", slog.String("sql", indexSQL))
	}

	return nil
}
