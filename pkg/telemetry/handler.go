// Package telemetry records retrieval invocations to Parquet files for
// offline analysis. The handler chains in front of any slog.Handler, so
// normal logging is unaffected; matching records are additionally buffered
// and flushed to a columnar file per batch.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/lodestone-ai/lodestone/pkg/types"
)

// InvocationRecord is one retrieval event in Parquet storage. Well-known
// pipeline attributes get typed columns; everything else lands in the
// Attributes JSON column.
type InvocationRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Level         string    `parquet:"level"`
	Message       string    `parquet:"message"`
	RequestID     string    `parquet:"request_id"`
	RequestSource string    `parquet:"request_source"`
	Tool          string    `parquet:"tool"`
	Store         string    `parquet:"store"`
	Index         string    `parquet:"index"`
	TopK          int       `parquet:"top_k"`
	Filter        string    `parquet:"filter"`
	Results       int       `parquet:"results"`
	Attributes    string    `parquet:"attributes"` // JSON string
}

// ParquetHandler is a slog.Handler that tees retrieval records into
// Parquet files under an output directory.
type ParquetHandler struct {
	next      slog.Handler
	outputDir string
	mu        sync.Mutex
	buffer    []InvocationRecord
	batchSize int
}

// NewParquetHandler creates a handler writing batches under outputDir.
func NewParquetHandler(next slog.Handler, outputDir string) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &ParquetHandler{
		next:      next,
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]InvocationRecord, 0, 100),
	}, nil
}

// Enabled implements slog.Handler. Retrieval records are emitted at debug
// level, so the handler reports debug as enabled even when the chained
// handler would drop it.
func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelDebug || h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.next.Enabled(ctx, r.Level) {
		if err := h.next.Handle(ctx, r); err != nil {
			return err
		}
	}

	record := InvocationRecord{
		ID:        uuid.New().String(),
		Timestamp: r.Time.UTC(),
		Level:     r.Level.String(),
		Message:   r.Message,
	}
	if v, ok := ctx.Value(types.ContextKeyRequestID).(string); ok {
		record.RequestID = v
	}
	if v, ok := ctx.Value(types.ContextKeyRequestSource).(string); ok {
		record.RequestSource = v
	}

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "tool":
			record.Tool = a.Value.String()
		case "store":
			record.Store = a.Value.String()
		case "index":
			record.Index = a.Value.String()
		case "top_k":
			record.TopK = int(a.Value.Int64())
		case "filter":
			record.Filter = fmt.Sprintf("%v", a.Value.Any())
		case "results":
			record.Results = int(a.Value.Int64())
		default:
			attrs[a.Key] = a.Value.Any()
		}
		return true
	})

	// Only pipeline records carry a tool attribute; everything else stays
	// with the chained handler alone.
	if record.Tool == "" {
		return nil
	}

	attrsJSON, _ := json.Marshal(attrs)
	record.Attributes = string(attrsJSON)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, record)
	if len(h.buffer) >= h.batchSize {
		return h.flush()
	}
	return nil
}

// Flush writes any buffered records to a Parquet file immediately.
func (h *ParquetHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flush()
}

// Close flushes remaining records.
func (h *ParquetHandler) Close() error {
	return h.Flush()
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (h *ParquetHandler) flush() error {
	if len(h.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("retrieval_invocations_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(h.outputDir, filename)

	if err := parquet.WriteFile(path, h.buffer); err != nil {
		return fmt.Errorf("write telemetry parquet file: %w", err)
	}

	h.buffer = h.buffer[:0]
	return nil
}

// WithAttrs implements slog.Handler. Clones batch independently.
func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ParquetHandler{
		next:      h.next.WithAttrs(attrs),
		outputDir: h.outputDir,
		batchSize: h.batchSize,
		buffer:    make([]InvocationRecord, 0, h.batchSize),
	}
}

// WithGroup implements slog.Handler
func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	return &ParquetHandler{
		next:      h.next.WithGroup(name),
		outputDir: h.outputDir,
		batchSize: h.batchSize,
		buffer:    make([]InvocationRecord, 0, h.batchSize),
	}
}
