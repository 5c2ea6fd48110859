package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{Level: slog.LevelWarn, NoColor: true})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestHandlerWritesAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{NoColor: true})

	log.With("tool", "retrieve_docs").WithGroup("search").Info("retrieval search executed", "top_k", 3)

	out := buf.String()
	assert.Contains(t, out, "retrieval search executed")
	assert.Contains(t, out, "tool=retrieve_docs")
	assert.Contains(t, out, "search.top_k=3")
}

func TestHandlerColorsLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{Level: slog.LevelDebug})

	log.Error("boom")
	assert.Contains(t, buf.String(), ansiRed)

	buf.Reset()
	log.Warn("careful")
	assert.Contains(t, buf.String(), ansiYellow)

	buf.Reset()
	log.Info("retrieval search executed")
	assert.Contains(t, buf.String(), ansiGreen)
}

func TestHandlerNoColor(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{NoColor: true})

	log.Error("boom")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestHandlerEnabled(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, Options{Level: slog.LevelInfo})
	ctx := context.Background()
	require.False(t, h.Enabled(ctx, slog.LevelDebug))
	require.True(t, h.Enabled(ctx, slog.LevelInfo))
}
