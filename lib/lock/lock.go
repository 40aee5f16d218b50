package lock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is where lock files live unless a directory is configured.
var DefaultDir = filepath.Join(os.TempDir(), "movies-locks")

// FileLock serializes writers across processes by creating one file per key.
type FileLock struct {
	dir    string
	logger *slog.Logger
}

// NewFileLock creates a lock rooted at dir, or DefaultDir when dir is empty.
func NewFileLock(dir string, logger *slog.Logger) *FileLock {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileLock{
		dir:    dir,
		logger: logger,
	}
}

// UserKey is the lock key guarding writes to one user's collection.
func UserKey(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

// TryLock attempts to acquire a lock with the given key and timeout. It
// returns false without error when the timeout passes first.
func (fl *FileLock) TryLock(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	lockFile := fl.path(key)

	if err := os.MkdirAll(fl.dir, 0750); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		// #nosec G304 - lockFile is built from a controlled key in path
		file, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err != nil {
			if !os.IsExist(err) {
				return false, fmt.Errorf("failed to create lock file: %w", err)
			}

			// A holder that died leaves its file behind.
			if fl.isStale(lockFile, timeout*2) {
				fl.logger.WarnContext(ctx, "Removing stale lock file", slog.String("file", lockFile))
				if err := os.Remove(lockFile); err != nil && !os.IsNotExist(err) {
					fl.logger.ErrorContext(ctx, "Failed to remove stale lock file", slog.String("file", lockFile), slog.Any("error", err))
				}
				continue
			}

			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(25 * time.Millisecond):
				continue
			}
		}

		if _, err := fmt.Fprintf(file, "%d\n%d\n", time.Now().Unix(), os.Getpid()); err != nil {
			if closeErr := file.Close(); closeErr != nil {
				fl.logger.ErrorContext(ctx, "Failed to close lock file after write error", slog.String("file", lockFile), slog.Any("error", closeErr))
			}
			_ = os.Remove(lockFile)
			return false, fmt.Errorf("failed to write to lock file: %w", err)
		}
		if err := file.Close(); err != nil {
			_ = os.Remove(lockFile)
			return false, fmt.Errorf("failed to close lock file: %w", err)
		}

		fl.logger.DebugContext(ctx, "Acquired lock", slog.String("key", key))
		return true, nil
	}

	return false, nil
}

// Unlock releases the lock for the given key
func (fl *FileLock) Unlock(ctx context.Context, key string) error {
	if err := os.Remove(fl.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	fl.logger.DebugContext(ctx, "Released lock", slog.String("key", key))
	return nil
}

func (fl *FileLock) path(key string) string {
	return filepath.Join(fl.dir, filepath.Base(filepath.Clean(key))+".lock")
}

func (fl *FileLock) isStale(lockFile string, staleAfter time.Duration) bool {
	info, err := os.Stat(lockFile)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > staleAfter
}
