package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestJSONLoggerAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")
	ctx := WithRunID(context.Background(), "run-123")
	log.InfoContext(ctx, "stage complete", "stage", "load")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "stage complete", rec["msg"])
	assert.Equal(t, "load", rec["stage"])
	assert.Equal(t, "run-123", rec["run_id"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")
	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.With("k", "v").Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestRunIDMissing(t *testing.T) {
	assert.Equal(t, "", RunID(context.Background()))
}
