// ABOUTME: SQLite implementation of ConversationLog using modernc.org/sqlite
// ABOUTME: Keeps append order with an autoincrement sequence and prunes to a size cap

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLog implements ConversationLog using SQLite
type SQLiteLog struct {
	db         *sql.DB
	logger     *slog.Logger
	maxEntries int
}

// NewSQLiteLog opens (or creates) a conversation log at the given path.
// The schema is created if it doesn't exist and parent directories are created if needed.
// A maxEntries of zero or less disables pruning.
func NewSQLiteLog(path string, maxEntries int) (*SQLiteLog, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	s := &SQLiteLog{
		db:         db,
		logger:     logger,
		maxEntries: maxEntries,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite conversation log initialized", "path", path, "max_entries", maxEntries)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteLog) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS log_entries (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			thread_id  TEXT NOT NULL,
			question   TEXT NOT NULL,
			answer     TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_log_entries_thread ON log_entries(thread_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts entry and prunes the oldest rows beyond the size cap.
func (s *SQLiteLog) Append(ctx context.Context, entry *LogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO log_entries (id, thread_id, question, answer, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.ThreadID,
		entry.Question,
		entry.Answer,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting log entry: %w", err)
	}

	if s.maxEntries > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM log_entries
			WHERE seq NOT IN (
				SELECT seq FROM log_entries ORDER BY seq DESC LIMIT ?
			)
		`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("pruning log entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing log entry: %w", err)
	}

	s.logger.Debug("log entry saved", "id", entry.ID, "thread_id", entry.ThreadID)
	return nil
}

// All returns every stored entry in append order.
func (s *SQLiteLog) All(ctx context.Context) ([]*LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, thread_id, question, answer, created_at
		FROM log_entries
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying log entries: %w", err)
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		var entry LogEntry
		var createdAtStr string

		if err := rows.Scan(
			&entry.ID,
			&entry.ThreadID,
			&entry.Question,
			&entry.Answer,
			&createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning log entry row: %w", err)
		}

		entry.Timestamp, err = time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating log entry rows: %w", err)
	}

	return entries, nil
}

// Close closes the database connection
func (s *SQLiteLog) Close() error {
	s.logger.Info("closing SQLite conversation log")
	return s.db.Close()
}
