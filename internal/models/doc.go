// Package models defines the entities that flow through a playlist export.
//
// Input and output of the pipeline:
//   - [TrackRequest] : an (artist, title) pair produced by the playlist generator
//   - [ResolvedTrack] : the provider catalog identifier found for a request
//   - [ExportResult] : the summary returned to the caller, with the unresolved entries in input order
//
// Provider access:
//   - [Credential] : service token and storefront fetched once per export
//   - [AuthorizationState] : user-level gate checked once at export start
//
// [ExportState] names the states of the export state machine; [ExportRecord] is the
// caller-side history row persisted after an export finishes.
//
// Every pipeline entity is created per export call and discarded once the result is returned.
package models
