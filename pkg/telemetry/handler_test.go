package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-ai/lodestone/pkg/types"
)

func newTestHandler(t *testing.T) (*ParquetHandler, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)
	return h, dir, &buf
}

func readRecords(t *testing.T, dir string) []InvocationRecord {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var records []InvocationRecord
	for _, entry := range entries {
		rows, err := parquet.ReadFile[InvocationRecord](filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		records = append(records, rows...)
	}
	return records
}

func TestHandlerBuffersToolRecords(t *testing.T) {
	h, dir, buf := newTestHandler(t)
	logger := slog.New(h)

	ctx := context.WithValue(context.Background(), types.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

	logger.DebugContext(ctx, "retrieval search executed",
		slog.String("tool", "retrieve_docs_articles"),
		slog.String("store", "docs"),
		slog.String("index", "articles"),
		slog.Int("top_k", 3),
		slog.Any("filter", map[string]any{"category": "bio"}),
		slog.Int("results", 2),
		slog.String("extra", "kept"),
	)

	require.NoError(t, h.Flush())
	records := readRecords(t, dir)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "retrieve_docs_articles", r.Tool)
	assert.Equal(t, "docs", r.Store)
	assert.Equal(t, "articles", r.Index)
	assert.Equal(t, 3, r.TopK)
	assert.Equal(t, 2, r.Results)
	assert.Equal(t, "req-1", r.RequestID)
	assert.Equal(t, "server", r.RequestSource)
	assert.Contains(t, r.Filter, "bio")
	assert.Contains(t, r.Attributes, "kept")
	assert.NotEmpty(t, r.ID)

	// Chained handler still saw the record.
	assert.Contains(t, buf.String(), "retrieval search executed")
}

func TestHandlerSkipsNonToolRecords(t *testing.T) {
	h, dir, buf := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("server started", slog.Int("port", 8080))

	require.NoError(t, h.Flush())
	assert.Empty(t, readRecords(t, dir))
	assert.Contains(t, buf.String(), "server started")
}

func TestHandlerFlushesAtBatchSize(t *testing.T) {
	h, dir, _ := newTestHandler(t)
	h.batchSize = 2
	logger := slog.New(h)

	logger.Debug("retrieval search executed", slog.String("tool", "t"), slog.Int("top_k", 1))
	assert.Empty(t, readRecords(t, dir), "below batch size, nothing written yet")

	logger.Debug("retrieval search executed", slog.String("tool", "t"), slog.Int("top_k", 1))
	assert.Len(t, readRecords(t, dir), 2)
}

func TestHandlerCloseFlushes(t *testing.T) {
	h, dir, _ := newTestHandler(t)
	logger := slog.New(h)

	logger.Debug("retrieval search executed", slog.String("tool", "t"))
	require.NoError(t, h.Close())
	assert.Len(t, readRecords(t, dir), 1)
}
