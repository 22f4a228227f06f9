package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expected)

		assert.Equal(t, expected, FromContext(ctx))
	})

	t.Run("Should return default logger when none is stored", func(t *testing.T) {
		l := FromContext(t.Context())
		require.NotNil(t, l)
		assert.Equal(t, GetDefault(), l)
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not a logger")
		assert.Equal(t, GetDefault(), FromContext(ctx))
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":  DebugLevel,
		" WARN ": WarnLevel,
		"error":  ErrorLevel,
		"info":   InfoLevel,
		"trace":  InfoLevel,
		"":       InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("Should filter below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf})

		l.Info("hidden")
		l.Warn("shown", "port", "avr")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
		assert.Contains(t, out, "port=avr")
	})

	t.Run("Should emit JSON when requested", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true}).With("component", "engine")

		l.Debug("probing tool", "name", "make")

		line := strings.TrimSpace(buf.String())
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &fields))
		assert.Equal(t, "probing tool", fields["msg"])
		assert.Equal(t, "make", fields["name"])
		assert.Equal(t, "engine", fields["component"])
	})
}

func TestSetupLogger(t *testing.T) {
	before := GetDefault()
	t.Cleanup(func() {
		mu.Lock()
		defaultLogger = before
		mu.Unlock()
	})

	SetupLogger("debug", true, false)
	assert.NotEqual(t, before, GetDefault())
}
