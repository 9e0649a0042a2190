package journal

import (
	"context"
	"sync"
)

// MemoryRecorder keeps the most recent entries in a bounded ring.
// Safe for concurrent use; the feed records from router goroutines
// while callers tail.
type MemoryRecorder struct {
	opts Options

	mu      sync.Mutex
	entries []Entry
}

var (
	_ Recorder = (*MemoryRecorder)(nil)
	_ Tailer   = (*MemoryRecorder)(nil)
	_ Counter  = (*MemoryRecorder)(nil)
)

func NewMemoryRecorder(ops ...OptFunc) (*MemoryRecorder, error) {
	opts, err := BuildOptions(ops...)
	if err != nil {
		return nil, err
	}

	return &MemoryRecorder{opts: opts}, nil
}

func (m *MemoryRecorder) Record(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if len(m.entries) > m.opts.Buffer {
		m.entries = m.entries[len(m.entries)-m.opts.Buffer:]
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (m *MemoryRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit > len(m.entries) {
		limit = len(m.entries)
	}

	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= len(m.entries)-limit; i-- {
		out = append(out, m.entries[i])
	}

	return out, nil
}

func (m *MemoryRecorder) CountByKind(ctx context.Context, kind Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, entry := range m.entries {
		if entry.Kind == kind {
			n++
		}
	}

	return n, nil
}

func (m *MemoryRecorder) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
