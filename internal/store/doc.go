// Package store archives recorded sessions in SQLite.
//
// A session is a named, ordered command list. Each command is stored as one
// row holding its codec record, with kind, shape and time duplicated into
// columns so sessions can be inspected with plain SQL.
//
// # Ordering
//
//   - Commands are numbered by seq in the order they were saved
//   - Every read uses ORDER BY seq ASC
//   - Session listings use ORDER BY created_at ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Deleting a session deletes its commands
package store
