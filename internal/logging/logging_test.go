package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestRedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug")
	require.NoError(t, err)

	logger.Debug("export", "passphrase", "hunter2", "session_key", "abcd", "name", "alice")

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "abcd")
	assert.Contains(t, out, "passphrase="+redactedValue)
	assert.Contains(t, out, "name=alice")
}

func TestRedactsGroupsAndWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	require.NoError(t, err)

	logger.With("client_secret", "s3cret").Info("op",
		slog.Group("key", slog.String("key_material", "MIIB"), slog.Int("size", 2048)))

	out := buf.String()
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "MIIB")
	assert.Contains(t, out, "key.size=2048")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestHandlerContract(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewTextHandler(&buf, nil))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	rec.AddAttrs(slog.String("Passphrase", "x"))
	require.NoError(t, h.Handle(context.Background(), rec))
	assert.Contains(t, buf.String(), "Passphrase="+redactedValue)

	assert.Nil(t, WrapHandler(nil))
	Discard().Info("dropped")
}

func TestContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	logger := Discard()
	assert.Same(t, logger, FromContext(WithContext(context.Background(), logger)))
}
