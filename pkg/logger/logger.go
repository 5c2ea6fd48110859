// Package logger provides a colored slog handler for terminal output.
// Warnings render yellow, errors red, and retrieval activity green, so
// pipeline traffic stands out when tailing a dev server.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiGray   = "\033[90m"
)

// highlightedPrefixes are message prefixes rendered green at info level.
var highlightedPrefixes = []string{
	"retrieval",
	"tool invoked",
	"store registered",
}

// Options configures a Handler.
type Options struct {
	// Level is the minimum level to log. Defaults to slog.LevelInfo.
	Level slog.Leveler
	// NoColor disables ANSI escapes, for non-terminal writers.
	NoColor bool
}

// Handler is a human-readable slog.Handler with per-level coloring.
type Handler struct {
	opts   Options
	mu     *sync.Mutex
	writer io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewHandler creates a colored handler writing to w.
func NewHandler(w io.Writer, opts Options) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &Handler{
		opts:   opts,
		mu:     &sync.Mutex{},
		writer: w,
	}
}

// NewLogger creates a slog.Logger with a colored handler writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

// NewDefaultLogger creates a colored logger on stderr at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, Options{Level: level})
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	b.WriteString(h.color(ansiGray))
	b.WriteString(record.Time.Format(time.TimeOnly))
	b.WriteString(h.color(ansiReset))
	b.WriteByte(' ')

	levelColor := h.levelColor(record.Level, record.Message)
	b.WriteString(h.color(levelColor))
	b.WriteString(fmt.Sprintf("%-5s", record.Level.String()))
	b.WriteByte(' ')
	b.WriteString(record.Message)
	b.WriteString(h.color(ansiReset))

	for _, attr := range h.attrs {
		writeAttr(&b, h.prefix(), attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.prefix(), attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *Handler) color(code string) string {
	if h.opts.NoColor {
		return ""
	}
	return code
}

func (h *Handler) levelColor(level slog.Level, message string) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo && isHighlighted(message):
		return ansiGreen
	case level < slog.LevelInfo:
		return ansiGray
	default:
		return ""
	}
}

func isHighlighted(message string) bool {
	lower := strings.ToLower(message)
	for _, prefix := range highlightedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, nested := range attr.Value.Group() {
			writeAttr(b, prefix+attr.Key+".", nested)
		}
		return
	}
	fmt.Fprintf(b, " %s%s=%v", prefix, attr.Key, attr.Value)
}
