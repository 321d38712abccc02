package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core), LevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept", String("actor", "a1"), Float64("speed", 12.5))
	l.Error("kept too", Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "a1", entries[0].ContextMap()["actor"])
	assert.Equal(t, 12.5, entries[0].ContextMap()["speed"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("now visible")
	assert.Equal(t, 3, logs.Len())
}

func TestLoggerWithKeepsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core), LevelDebug).With(String("component", "world"))

	l.Info("tick", Int("actors", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "world", ctx["component"])
	assert.EqualValues(t, 3, ctx["actors"])
}

func TestNewWithConfigWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.File = filepath.Join(dir, "webswing.log")

	l, err := NewWithConfig(cfg)
	require.NoError(t, err)
	l.Info("hello file", String("k", "v"))
	_ = l.Sync()

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Encoding = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.File = "x.log"
	cfg.MaxSizeMB = 0
	assert.Error(t, cfg.Validate())
}
