package testutils

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockHandler is a slog.Handler recording the handled records, so that tests can check what was logged.
type MockHandler struct {
	// IgnoreBelow is the level at or below which records are not handled.
	IgnoreBelow slog.Level

	attrs   []slog.Attr
	records *[]slog.Record
	mu      *sync.Mutex
}

// NewMockHandler returns a new MockHandler.
// levels <= ignoreBelow will not call handle.
func NewMockHandler(ignoreBelow slog.Level) MockHandler {
	return MockHandler{
		IgnoreBelow: ignoreBelow,
		records:     &[]slog.Record{},
		mu:          &sync.Mutex{},
	}
}

// AssertLevels asserts that the logging levels observed match the expected amount.
// A nil levels map asserts that nothing was logged.
func (h *MockHandler) AssertLevels(t *testing.T, levels map[slog.Level]uint) bool {
	t.Helper()

	if levels == nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		return assert.Empty(t, *h.records, "Expected no logs")
	}

	return assert.Equal(t, levels, h.GetLevels(), "Unexpected logged levels")
}

// GetLevels returns how many records were logged per level.
func (h *MockHandler) GetLevels() map[slog.Level]uint {
	h.mu.Lock()
	defer h.mu.Unlock()

	levels := make(map[slog.Level]uint)
	for _, r := range *h.records {
		levels[r.Level]++
	}
	return levels
}

// OutputLogs outputs the logs collected by the handler in a readable format.
func (h *MockHandler) OutputLogs(t *testing.T) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range *h.records {
		t.Logf("Logged %v %s:", r.Level, r.Message)
		r.Attrs(func(attr slog.Attr) bool {
			t.Log(attr.String())
			return true
		})
	}
}

// Enabled implements Handler.Enabled.
func (h *MockHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level > h.IgnoreBelow
}

// Handle implements Handler.Handle.
// Attributes attached with WithAttrs are added to the recorded record.
func (h *MockHandler) Handle(_ context.Context, record slog.Record) error {
	r := record.Clone()
	r.AddAttrs(h.attrs...)

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r)
	return nil
}

// WithAttrs implements Handler.WithAttrs.
// The returned handler records into the same storage.
func (h *MockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &n
}

// WithGroup implements Handler.WithGroup.
// Groups are not tracked.
func (h *MockHandler) WithGroup(string) slog.Handler {
	return h
}
