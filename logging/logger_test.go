package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"Critical", LevelCritical, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNew_JSONWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	ctx, id := WithCorrelationID(context.Background())
	assert.Equal(t, id, CorrelationID(ctx))
	logger.With("component", "test").InfoContext(ctx, "hello", "chart_id", "abc")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, id, rec["correlation_id"])
	assert.Equal(t, "abc", rec["chart_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "loud", Writer: &buf})
	require.Error(t, err)
	require.NotNil(t, logger)

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "correlation_id")
}

func TestNew_CriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "critical", Format: "text", Writer: &buf})
	require.NoError(t, err)

	logger.Error("dropped")
	logger.Log(context.Background(), LevelCritical, "boom")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "level=CRITICAL")
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestSince(t *testing.T) {
	ms := Since(time.Now().Add(-1500 * time.Millisecond))
	assert.GreaterOrEqual(t, ms, 1500.0)
}
