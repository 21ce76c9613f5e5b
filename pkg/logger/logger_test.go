package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildWritesConsoleAndFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	var console bytes.Buffer

	log, err := build(Config{Level: "debug", File: file}, zapcore.AddSync(&console))
	require.NoError(t, err)

	log.Debug("word added", zap.Int64("word_id", 42))
	require.NoError(t, log.Sync())

	assert.Contains(t, console.String(), "word added")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, float64(42), entry["word_id"])
}

func TestBuildRespectsLevel(t *testing.T) {
	var console bytes.Buffer
	log, err := build(Config{Level: "warn"}, zapcore.AddSync(&console))
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestBuildRejectsUnknownLevel(t *testing.T) {
	_, err := build(Config{Level: "loud"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}
