package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, slog.LevelDebug, "json"))
	LogError(errors.New("disk full"), "Write failed", Fields{"file": "gastos.csv"})
	LogDebug("Switched user", Fields{"user": "user2"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"Write failed"`)
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"file":"gastos.csv"`)
	assert.Contains(t, out, `"user":"user2"`)

	buf.Reset()
	require.NoError(t, SetupLogger(&buf, slog.LevelWarn, "console"))
	LogInfo("hidden", nil)
	assert.Empty(t, buf.String())

	assert.ErrorIs(t, SetupLogger(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}
