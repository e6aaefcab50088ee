// Package repositories implements SQLite persistence for export history.
//
// Key Implementations:
//   - [ExportRepository] : one row per finished export, written by the CLI after [tasks.Exporter.Export]
//
// Sequence numbers provide stable, human-readable ordering (e.g., export #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
