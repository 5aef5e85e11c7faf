// ABOUTME: Tests for the SQLite conversation log
// ABOUTME: Covers file creation, reopening, and in-memory databases

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteLog_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "history.db")

	s, err := NewSQLiteLog(dbPath, 0)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created in nested directory")
}

func TestSQLiteLog_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := NewSQLiteLog(dbPath, 0)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, entry(1)))
	require.NoError(t, s.Append(ctx, entry(2)))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteLog(dbPath, 0)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry-1", entries[0].ID)
	assert.Equal(t, "thread-1", entries[0].ThreadID)
	assert.Equal(t, "entry-2", entries[1].ID)
}

func TestSQLiteLog_InMemory(t *testing.T) {
	s, err := NewSQLiteLog(":memory:", 0)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, entry(1)))

	entries, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLiteLog_DuplicateIDRejected(t *testing.T) {
	s, err := NewSQLiteLog(filepath.Join(t.TempDir(), "history.db"), 0)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, entry(1)))
	assert.Error(t, s.Append(ctx, entry(1)))

	entries, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
