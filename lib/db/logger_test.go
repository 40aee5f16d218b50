package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func traceRecord(t *testing.T, begin time.Time, err error) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.Trace(context.Background(), begin, func() (string, int64) { return "SELECT 1", 1 }, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	return rec
}

func TestGormLoggerTrace(t *testing.T) {
	rec := traceRecord(t, time.Now(), nil)
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "SELECT 1", rec["sql"])

	rec = traceRecord(t, time.Now(), errors.New("disk I/O error"))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "disk I/O error", rec["error"])

	rec = traceRecord(t, time.Now(), gorm.ErrRecordNotFound)
	assert.Equal(t, "DEBUG", rec["level"])

	rec = traceRecord(t, time.Now().Add(-time.Second), nil)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "Slow statement", rec["msg"])
}
