package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zapcore.ErrorLevel, levelFromString("ERROR"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString(" warning "))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("info"))
	assert.Equal(t, zapcore.DebugLevel, levelFromString(""))
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	logger := New("warn")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewToWritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewTo(&buf, "info")
	logger.Debug("hidden")
	logger.Info("vote batch fetched", "ids", 3)

	out := buf.String()
	assert.Contains(t, out, "vote batch fetched")
	assert.Contains(t, out, "ids")
	assert.NotContains(t, out, "hidden")
}
