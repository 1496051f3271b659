package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a captured log record, keyed by attribute name with the
// level and message stored under "level" and "message".
type LogEntry map[string]interface{}

// CaptureHandler is a memory-backed slog.Handler for asserting on log
// output in tests.
type CaptureHandler struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewCaptureHandler creates a new memory-backed slog handler.
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{entries: make([]LogEntry, 0)}
}

// NewCaptureLogger returns a logger writing to a fresh capture handler,
// along with the handler for inspecting what was logged.
func NewCaptureLogger() (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler()
	return slog.New(h), h
}

// Enabled satisfies slog.Handler.
func (h *CaptureHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle satisfies slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := make(LogEntry)
	entry["level"] = r.Level.String()
	entry["message"] = r.Message

	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	h.entries = append(h.entries, entry)
	return nil
}

// WithAttrs satisfies slog.Handler.
func (h *CaptureHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup satisfies slog.Handler.
func (h *CaptureHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Entries returns a copy of all captured log entries.
func (h *CaptureHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]LogEntry, len(h.entries))
	copy(result, h.entries)
	return result
}

// HasMessage reports whether any captured entry carries the given message.
func (h *CaptureHandler) HasMessage(msg string) bool {
	for _, e := range h.Entries() {
		if e["message"] == msg {
			return true
		}
	}
	return false
}
