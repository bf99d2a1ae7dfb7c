package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
		want  slog.Level
	}{
		{name: "debug", level: LevelDebug, want: slog.LevelDebug},
		{name: "info", level: LevelInfo, want: slog.LevelInfo},
		{name: "warn", level: LevelWarn, want: slog.LevelWarn},
		{name: "error", level: LevelError, want: slog.LevelError},
		{name: "invalid defaults to info", level: LogLevel("bogus"), want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

func TestSetupLoggerLevelFiltering(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelWarn, false)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestSetupLoggerJSONFormat(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo, true)

	Info("structured message", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "structured message", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestWith(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo, false)

	With("component", "sync").Info("hello")
	assert.Contains(t, buf.String(), "component=sync")
}

func TestMaskSensitive(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: "<not set>"},
		{name: "short", value: "abcd", want: "<set>"},
		{name: "long", value: "ghp_supersecret", want: "ghp_...***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskSensitive(tt.value)
			assert.Equal(t, tt.want, got)
			if len(tt.value) > 4 {
				assert.False(t, strings.Contains(got, tt.value[4:]), "masked value must not leak the secret")
			}
		})
	}
}
