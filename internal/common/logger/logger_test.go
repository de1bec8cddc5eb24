package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZapAdapter(zap.New(core)), logs
}

func TestLogger_RedactsCredentials(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Info("provider configured", map[string]interface{}{
		"apiKey":      "AIza-secret",
		"db_password": "hunter2",
		"model":       "gemini-2.5-flash",
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["apiKey"])
	assert.Equal(t, "[REDACTED]", fields["db_password"])
	assert.Equal(t, "gemini-2.5-flash", fields["model"])
}

func TestLogger_WithFieldsCarriesContext(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	child := log.With(map[string]interface{}{"taskType": "resolve-market"})
	child.WithError(errors.New("boom")).Error("job failed", map[string]interface{}{"jobKey": int64(7)})
	child.Debug("dropped below level", nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "resolve-market", fields["taskType"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, int64(7), fields["jobKey"])
}

func TestIsSensitive(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"apiKey", true},
		{"API_KEY", true},
		{"clientSecret", true},
		{"refresh_token", true},
		{"market", false},
		{"requestId", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, isSensitive(tt.key))
		})
	}
}

func TestNewWithOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l := NewWithOutput("debug", "json", path)
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	l.Info("written")
	_ = l.Sync()

	assert.FileExists(t, path)
}

func TestNew_Levels(t *testing.T) {
	assert.False(t, New("warn", "console").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, New("info", "json").Core().Enabled(zapcore.InfoLevel))
	assert.NotNil(t, NewNoOpLogger())
}
