// Package tasks runs playlist exports against a destination [services.MusicProvider] with real-time progress
// reporting.
//
// # Export Flow
//
// [Exporter.Export] moves through Idle → Authorizing → Resolving → CreatingPlaylist → Committing and ends in
// Done or Failed:
//
//  1. Authorizing : asks the [Authorizer], then fetches a fresh credential for this run
//  2. Resolving : searches each entry sequentially, paced by a [Pacer] (token bucket, 200ms by default)
//  3. CreatingPlaylist : skipped with ErrNoMatches when nothing resolved
//  4. Committing : adds every hit in one batch, in input order
//
// Misses and transient search failures are reported in the result's Unresolved list. An auth failure during
// search stops the run and moves the remaining entries to Unresolved.
//
// # Concurrency
//
// An [Exporter] runs one export at a time and rejects a concurrent call with ErrExportInProgress. Caller
// cancellation is ignored once an export starts; each provider call has its own timeout.
//
// # Progress Reporting
//
// Progress updates use non-blocking channel sends (select with default) so a slow consumer never stalls an
// export.
//
// # Errors
//
// Fatal outcomes are returned as [*ExportError], which records the failing state and offers a user-readable
// [ExportError.Message]. Nothing is retried.
package tasks
