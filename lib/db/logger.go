package db

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowQueryThreshold is how long a statement may take before it is logged as a warning.
const SlowQueryThreshold = 200 * time.Millisecond

// GormLogger routes gorm's statement log into slog.
type GormLogger struct {
	logger *slog.Logger
	slow   time.Duration
}

func NewGormLogger(logger *slog.Logger) *GormLogger {
	return &GormLogger{logger: logger, slow: SlowQueryThreshold}
}

// LogMode is a no-op; the slog handler level decides what gets written.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logger.InfoContext(ctx, msg, slog.Any("data", data))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logger.WarnContext(ctx, msg, slog.Any("data", data))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logger.ErrorContext(ctx, msg, slog.Any("data", data))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	// Lookups that find nothing are answered by the caller.
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "Statement failed", append(attrs, slog.Any("error", err))...)
	case elapsed > l.slow:
		l.logger.WarnContext(ctx, "Slow statement", attrs...)
	default:
		l.logger.DebugContext(ctx, "Statement", attrs...)
	}
}
