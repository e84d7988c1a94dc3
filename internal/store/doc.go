// Package store provides SQLite-backed storage for recorded automation runs.
//
// Each row of the traces table is one run. Rows are ordered by seq, an
// autoincrement column assigned at first insert; re-appending a run with the
// same run_id updates it in place and keeps its seq. After every append the
// store trims each item's history to the newest N runs (the retention).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Timestamps are stored as Unix milliseconds, so sub-millisecond precision is
// dropped. Step maps, config and context are stored as JSON text.
package store
