package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseLevel("verbose")
	assert.False(t, ok)
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	assert.Equal(t, slog.LevelDebug, DefaultConfig().Level)

	t.Setenv(EnvLogLevel, "nonsense")
	assert.Equal(t, slog.LevelInfo, DefaultConfig().Level)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	log.Debug("hidden")
	log.Info("track loaded", slog.String("name", "a.mp3"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"track loaded"`)
	assert.Contains(t, out, `"name":"a.mp3"`)
}
