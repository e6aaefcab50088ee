package tasks

import (
	"fmt"

	"github.com/desertthunder/tapedeck/internal/models"
)

// ProgressUpdate represents a progress event during an export.
//
// Used to send real-time updates to the CLI or UI layer for display. Sends never block, so an
// update is dropped when the channel is full; a buffer of len(entries)+4 holds a whole export.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Authorize Phase = iota
	SearchTracks
	CreatePlaylist
	CommitTracks
	Finished
)

func (p Phase) String() string {
	switch p {
	case Authorize:
		return "authorize"
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case CommitTracks:
		return "commit_tracks"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func authorizeUpdate(provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authorize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Authorizing %s...", provider),
	}
}

func searchTracksUpdate(step, total int, entry models.TrackRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, entry),
		Data:    entry,
	}
}

func createPlaylistUpdate(name string, hits int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q with %d tracks...", name, hits),
	}
}

func commitTracksUpdate(playlistID string, hits int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommitTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", hits, playlistID),
	}
}

func finishedUpdate(result *models.ExportResult) ProgressUpdate {
	msg := fmt.Sprintf("✓ Added %d of %d tracks", result.AddedCount, result.RequestedCount)
	if result.State == models.StateFailed {
		msg = fmt.Sprintf("✗ Export failed: %v", result.FatalError)
	}
	return ProgressUpdate{
		Phase:   Finished,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    result,
	}
}
