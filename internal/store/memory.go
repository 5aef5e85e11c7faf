// ABOUTME: In-memory ConversationLog with an optional size cap
// ABOUTME: Oldest entries are dropped once the cap is reached

package store

import (
	"context"
	"sync"
)

// MemoryLog keeps entries in process memory only.
type MemoryLog struct {
	mu         sync.RWMutex
	entries    []*LogEntry
	maxEntries int
	closed     bool
}

// NewMemoryLog creates a log holding at most maxEntries entries.
// A maxEntries of zero or less means unbounded.
func NewMemoryLog(maxEntries int) *MemoryLog {
	return &MemoryLog{maxEntries: maxEntries}
}

// Append adds entry to the end of the log, evicting the oldest entry when full.
func (m *MemoryLog) Append(_ context.Context, entry *LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		// Drop the oldest entries in place.
		drop := len(m.entries) - m.maxEntries + 1
		copy(m.entries, m.entries[drop:])
		for i := len(m.entries) - drop; i < len(m.entries); i++ {
			m.entries[i] = nil
		}
		m.entries = m.entries[:len(m.entries)-drop]
	}

	m.entries = append(m.entries, entry)
	return nil
}

// All returns a copy of the current entries in append order.
func (m *MemoryLog) All(_ context.Context) ([]*LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*LogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Len returns the number of entries currently held.
func (m *MemoryLog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close marks the log closed; later appends fail with ErrClosed.
func (m *MemoryLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
