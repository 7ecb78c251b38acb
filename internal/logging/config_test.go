package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{raw: "", want: zerolog.InfoLevel, ok: false},
		{raw: "debug", want: zerolog.DebugLevel, ok: true},
		{raw: " WARNING ", want: zerolog.WarnLevel, ok: true},
		{raw: "fatal", want: zerolog.FatalLevel, ok: true},
		{raw: "off", want: zerolog.Disabled, ok: true},
		{raw: "loud", want: zerolog.InfoLevel, ok: false},
	}

	for _, tc := range tests {
		got, ok := ParseLevel(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "true")

	cfg := Config{Level: zerolog.InfoLevel, Format: FormatConsole, Timestamp: true}
	ApplyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	t.Setenv(EnvLogLevel, "loud")
	t.Setenv(EnvLogFormat, "xml")
	t.Setenv(EnvLogTimestamp, "maybe")

	cfg := Config{Level: zerolog.DebugLevel, Format: FormatConsole, Timestamp: true}
	ApplyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
	assert.True(t, cfg.Timestamp)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: zerolog.InfoLevel, Format: FormatJSON, Out: &buf})

	l.Debug().Msg("dropped")
	l.Info().Str("thread", "worker").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "worker", entry["thread"])
	assert.NotContains(t, entry, "time", "timestamp disabled")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: zerolog.InfoLevel, Format: FormatConsole, NoColor: true, Out: &buf})

	l.Warn().Str("thread", "worker").Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "thread=worker")
}
