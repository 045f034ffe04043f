// Package ledger persists the set of item ids already delivered to the
// channel. Presence of an id means "must never be delivered again"; the
// set grows monotonically.
//
// Backends:
//   - sqlite: single-file database (WAL)
//   - file: append-only JSONL journal with periodic snapshot compaction
package ledger
