// ABOUTME: ConversationLog interface and LogEntry type for chatrelay history
// ABOUTME: Backends are swappable: bounded in-memory (default) or SQLite

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned when appending to a log that has been closed
var ErrClosed = errors.New("conversation log closed")

// LogEntry records one completed question/answer exchange.
// Entries are immutable once appended.
type LogEntry struct {
	ID        string
	Timestamp time.Time
	ThreadID  string
	Question  string
	Answer    string
}

// ConversationLog is an ordered, append-only record of exchanges.
// Order is the order in which Append calls complete.
type ConversationLog interface {
	// Append adds an entry to the end of the log. Safe for concurrent use.
	Append(ctx context.Context, entry *LogEntry) error

	// All returns a snapshot of the log in append order.
	All(ctx context.Context) ([]*LogEntry, error)

	// Close releases any resources held by the log
	Close() error
}

// Open returns the ConversationLog for the named backend ("memory" or "sqlite").
func Open(backend, path string, maxEntries int) (ConversationLog, error) {
	switch backend {
	case "", "memory":
		return NewMemoryLog(maxEntries), nil
	case "sqlite":
		return NewSQLiteLog(path, maxEntries)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}
