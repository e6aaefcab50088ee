package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
)

// ExportError is the fatal outcome of an export, tagged with the state it failed in.
type ExportError struct {
	State models.ExportState
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed while %s: %v", e.State, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Message returns text suitable for showing to the user.
func (e *ExportError) Message() string {
	switch {
	case errors.Is(e.Err, shared.ErrExportInProgress):
		return "An export is already running."
	case errors.Is(e.Err, shared.ErrAuthDenied):
		return "Music provider access was not granted."
	case errors.Is(e.Err, shared.ErrAuthBackend):
		return "Could not get a music service token. Please try again later."
	case errors.Is(e.Err, shared.ErrAuth):
		return "Your music provider session expired. Please sign in again."
	case errors.Is(e.Err, shared.ErrNoMatches):
		return "None of the tracks could be found in the catalog."
	case errors.Is(e.Err, shared.ErrCreate):
		return "Could not create the playlist."
	case errors.Is(e.Err, shared.ErrCommit):
		return "The playlist was created but tracks could not be added; it may be empty."
	default:
		return "The export failed. Please try again."
	}
}

// UserMessage converts any error returned by [Exporter.Export] into user-readable text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr.Message()
	}
	return (&ExportError{Err: err}).Message()
}
