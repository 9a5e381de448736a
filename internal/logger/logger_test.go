package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(level, format)
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Init("info", "text")
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "warn", "text")

	Info("hidden %d", 1)
	Warn("shown %s", "AAPL")
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown AAPL")
	assert.Contains(t, out, "[ERROR] also shown")
	assert.Contains(t, out, "logger_test.go:", "text format carries the caller")
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "debug", "json")

	Debug("fit %s", "MSFT")
	Warn("No data for symbol %s, skipping", "ZZZZ")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var e struct {
		Time  string `json:"time"`
		Level string `json:"level"`
		Msg   string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &e))
	assert.Equal(t, "WARN", e.Level)
	assert.Equal(t, "No data for symbol ZZZZ, skipping", e.Msg)
	assert.NotEmpty(t, e.Time)

	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, "DEBUG", e.Level)
}
