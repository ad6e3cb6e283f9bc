package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.LevelInfo, &buf)

	assert.NotNil(t, logger)
	assert.NotNil(t, logger.logger)
}

func TestSlogLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *SlogLogger)
		want string
	}{
		{"debug", func(l *SlogLogger) { l.Debug("test debug", "key", "value") }, "test debug"},
		{"info", func(l *SlogLogger) { l.Info("test info", "key", "value") }, "test info"},
		{"warn", func(l *SlogLogger) { l.Warn("test warn", "key", "value") }, "test warn"},
		{"error", func(l *SlogLogger) { l.Error("test error", "key", "value") }, "test error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewSlogLogger(slog.LevelDebug, &buf))

			output := buf.String()
			assert.Contains(t, output, tt.want)
			assert.Contains(t, output, "key=value")
		})
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.LevelWarn, &buf)

	logger.Debug("debug message") // should be filtered out
	logger.Info("info message")   // should be filtered out
	logger.Warn("warn message")   // should appear
	logger.Error("error message") // should appear

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(slog.LevelInfo, "json", &buf)
	require.NoError(t, err)

	logger.With("run", "abc").Info("step finished", "exitcode", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "step finished", record["msg"])
	assert.Equal(t, "abc", record["run"])
	assert.Equal(t, float64(2), record["exitcode"])
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(slog.LevelInfo, "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
