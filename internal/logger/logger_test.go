package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected int
	}{
		{DebugLevel, -4},
		{InfoLevel, 0},
		{WarnLevel, 4},
		{ErrorLevel, 8},
		{LogLevel("bogus"), 0},
	}
	for _, tc := range testCases {
		t.Run(tc.level.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write JSON records with key values", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true})
		l.With("document_id", "doc-1").Info("merged", "accepted", 3)

		line := strings.TrimSpace(buf.String())
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "merged", rec["msg"])
		assert.Equal(t, "doc-1", rec["document_id"])
		assert.EqualValues(t, 3, rec["accepted"])
	})

	t.Run("Should filter below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		l.Debug("hidden")
		l.Info("hidden")
		assert.Empty(t, buf.String())
		l.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("Should accept nil config", func(t *testing.T) {
		assert.NotNil(t, NewLogger(nil))
	})
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("x")
	l.With("k", "v").Error("y")
	assert.Equal(t, l, OrNop(nil))
	configured := NewLogger(TestConfig())
	assert.Equal(t, configured, OrNop(configured))
}
