// Package store provides SQLite-backed persistence for migration jobs,
// validation reports and cached complexity scores.
//
// Migration results are append-only: a job is saved at start and again at
// completion, and a result row, once written, is never updated. Re-running
// an item produces a new result under a new job.
//
// Structured columns (work units, issues, reports, scores) are stored as
// canonical JSON so identical documents are byte-identical on disk.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
