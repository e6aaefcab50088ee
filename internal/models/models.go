// package models defines the data model for the playlist export pipeline
package models

import (
	"strings"
	"time"
)

// TrackRequest is an (artist, title) pair to be resolved against a provider catalog.
type TrackRequest struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Query builds the free-text catalog search term for the entry.
func (t TrackRequest) Query() string {
	return strings.TrimSpace(strings.TrimSpace(t.Artist) + " " + strings.TrimSpace(t.Title))
}

func (t TrackRequest) String() string {
	return t.Artist + " - " + t.Title
}

// TrackKind identifies the catalog resource type of a [ResolvedTrack].
type TrackKind int

const (
	KindSong TrackKind = iota
	KindVideo
)

// String returns the resource type name used in provider request bodies.
func (k TrackKind) String() string {
	switch k {
	case KindSong:
		return "songs"
	case KindVideo:
		return "videos"
	default:
		return ""
	}
}

// ResolvedTrack is a provider-native catalog identifier for a single [TrackRequest].
type ResolvedTrack struct {
	CatalogID string
	Kind      TrackKind
}

// Credential is a short-lived service credential plus the regional catalog (storefront) it is valid for.
type Credential struct {
	ServiceToken string `json:"token"`
	Storefront   string `json:"storefront"`
}

// AuthorizationState is the user-level permission to write to the destination provider.
type AuthorizationState int

const (
	AuthUnknown AuthorizationState = iota
	AuthDenied
	AuthAuthorized
)

func (s AuthorizationState) String() string {
	switch s {
	case AuthDenied:
		return "denied"
	case AuthAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// ExportState enumerates the states of a single export run.
type ExportState int

const (
	StateIdle ExportState = iota
	StateAuthorizing
	StateResolving
	StateCreatingPlaylist
	StateCommitting
	StateDone
	StateFailed
)

func (s ExportState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthorizing:
		return "authorizing"
	case StateResolving:
		return "resolving"
	case StateCreatingPlaylist:
		return "creating_playlist"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// ExportResult summarizes one export run.
//
// AddedCount <= RequestedCount and AddedCount + len(Unresolved) <= RequestedCount always hold.
// PlaylistID is empty when no playlist was created.
type ExportResult struct {
	PlaylistID     string
	AddedCount     int
	RequestedCount int
	Unresolved     []TrackRequest
	FatalError     error
	State          ExportState
}

// Succeeded reports whether the run reached [StateDone].
func (r *ExportResult) Succeeded() bool {
	return r.State == StateDone && r.FatalError == nil
}

// Orphaned reports whether a playlist container exists but the commit failed.
func (r *ExportResult) Orphaned() bool {
	return r.PlaylistID != "" && r.State == StateFailed
}

// GeneratedTrack is one entry of a simulated playlist returned by the backend.
type GeneratedTrack struct {
	Timestamp  string `json:"timestamp"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	SourceRank int    `json:"source_rank"`
}

// Request converts the generated entry into an export input unit.
func (g GeneratedTrack) Request() TrackRequest {
	return TrackRequest{Artist: g.Artist, Title: g.Title}
}

// ExportRecord is the persisted summary of a finished export, written by the CLI for the history command.
type ExportRecord struct {
	ID           string
	Sequence     int
	Provider     string
	Name         string
	PlaylistID   string
	State        string
	Requested    int
	Added        int
	Unresolved   []TrackRequest
	ErrorMessage string
	CreatedAt    time.Time
}

// NewExportRecord builds a record from a finished [ExportResult].
func NewExportRecord(provider, name string, result *ExportResult) *ExportRecord {
	rec := &ExportRecord{
		Provider:   provider,
		Name:       name,
		PlaylistID: result.PlaylistID,
		State:      result.State.String(),
		Requested:  result.RequestedCount,
		Added:      result.AddedCount,
		Unresolved: result.Unresolved,
		CreatedAt:  time.Now().UTC(),
	}
	if result.FatalError != nil {
		rec.ErrorMessage = result.FatalError.Error()
	}
	return rec
}
