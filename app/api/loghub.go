package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const DefaultLogCapacity = 200

// LogEntry is one captured log line with a monotonic sequence number so
// clients can poll for lines they have not seen yet.
type LogEntry struct {
	Seq       uint64 `json:"seq"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// LogHub is a slog.Handler that forwards records to an inner handler and
// keeps the most recent lines in a bounded ring buffer for the UI.
type LogHub struct {
	inner slog.Handler
	buf   *logBuffer
	attrs []slog.Attr
}

func NewLogHub(inner slog.Handler, capacity int) *LogHub {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}

	return &LogHub{
		inner: inner,
		buf: &logBuffer{
			entries:  make([]LogEntry, 0, capacity),
			capacity: capacity,
		},
	}
}

func (h *LogHub) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *LogHub) Handle(ctx context.Context, record slog.Record) error {
	h.buf.append(LogEntry{
		Timestamp: record.Time.Format(time.RFC3339),
		Level:     record.Level.String(),
		Message:   renderMessage(record, h.attrs),
	})

	return h.inner.Handle(ctx, record)
}

func (h *LogHub) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)

	return &LogHub{inner: h.inner.WithAttrs(attrs), buf: h.buf, attrs: combined}
}

func (h *LogHub) WithGroup(name string) slog.Handler {
	return &LogHub{inner: h.inner.WithGroup(name), buf: h.buf, attrs: h.attrs}
}

// After returns buffered entries with a sequence number greater than seq,
// oldest first. Pass 0 for everything still in the buffer.
func (h *LogHub) After(seq uint64) []LogEntry {
	return h.buf.after(seq)
}

// LastSeq returns the sequence number of the newest captured entry.
func (h *LogHub) LastSeq() uint64 {
	return h.buf.lastSeq()
}

func renderMessage(record slog.Record, bound []slog.Attr) string {
	var b strings.Builder
	b.WriteString(record.Message)

	for _, attr := range bound {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
		return true
	})

	return b.String()
}

type logBuffer struct {
	mu       sync.Mutex
	entries  []LogEntry
	capacity int
	seq      uint64
}

func (b *logBuffer) append(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	entry.Seq = b.seq

	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries[len(b.entries)-1] = entry
		return
	}

	b.entries = append(b.entries, entry)
}

func (b *logBuffer) after(seq uint64) []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := []LogEntry{}
	for _, entry := range b.entries {
		if entry.Seq > seq {
			result = append(result, entry)
		}
	}

	return result
}

func (b *logBuffer) lastSeq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
