package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

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
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNewWithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("info", "json", &buf)

	log.Debug("hidden")
	log.Info("entry saved", "category", "Starters")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "entry saved", line["msg"])
	assert.Equal(t, "Starters", line["category"])
}

func TestNewWithFormat_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("debug", "text", &buf)
	log.Debug("loading entries")
	assert.Contains(t, buf.String(), "msg=\"loading entries\"")
}
