// Package store holds the conversation log behind a small interface.
//
// # Backends
//
//   - MemoryLog: process-lifetime slice guarded by a mutex, optionally capped
//   - SQLiteLog: modernc.org/sqlite table ordered by an autoincrement sequence
//
// Both keep entries in the order Append calls complete and prune the oldest
// entries once max_entries is reached. Open picks a backend by name:
//
//	log, err := store.Open(cfg.History.Backend, cfg.History.Path, cfg.History.MaxEntries)
//
// # Snapshots
//
// All returns a copy, so callers may render it while new entries keep arriving.
package store
