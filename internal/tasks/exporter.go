package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/services"
	"github.com/desertthunder/tapedeck/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultSearchInterval = 200 * time.Millisecond
	DefaultDescription    = "Created with TapeDeck"
)

// Analytics event names
const (
	EventExportAttempt = "export_attempt"
	EventExportSuccess = "export_success"
	EventExportError   = "export_error"
)

// Authorizer asks the user for permission to write to the destination provider.
type Authorizer interface {
	Authorize(ctx context.Context) (models.AuthorizationState, error)
}

// AuthorizerFunc adapts a function to [Authorizer].
type AuthorizerFunc func(ctx context.Context) (models.AuthorizationState, error)

func (f AuthorizerFunc) Authorize(ctx context.Context) (models.AuthorizationState, error) {
	return f(ctx)
}

// Pacer spaces out catalog searches. [rate.Limiter] satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// EventSink receives analytics events. Delivery failures never affect the export.
type EventSink interface {
	Emit(ctx context.Context, event string, props map[string]any) error
}

// ExporterOpts configures an [Exporter].
type ExporterOpts struct {
	Provider    services.MusicProvider
	Credentials services.CredentialProvider
	Authorizer  Authorizer // nil treats the user as authorized
	Events      EventSink  // optional

	// NewPacer returns a fresh pacer for each export. Defaults to a token bucket of one token
	// refilled every SearchInterval.
	NewPacer       func() Pacer
	SearchInterval time.Duration

	Description string
	Logger      *log.Logger
}

// Exporter drives one export at a time: authorize, resolve every entry sequentially, create the
// playlist, then commit all hits in one batch.
type Exporter struct {
	provider    services.MusicProvider
	credentials services.CredentialProvider
	authorizer  Authorizer
	events      EventSink
	newPacer    func() Pacer
	description string
	logger      *log.Logger
	busy        atomic.Bool
}

// NewExporter creates an Exporter. Provider and Credentials are required.
func NewExporter(opts ExporterOpts) (*Exporter, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: music provider not configured", shared.ErrMissingConfig)
	}
	if opts.Credentials == nil {
		return nil, fmt.Errorf("%w: credential provider not configured", shared.ErrMissingConfig)
	}

	if opts.Authorizer == nil {
		opts.Authorizer = AuthorizerFunc(func(context.Context) (models.AuthorizationState, error) {
			return models.AuthAuthorized, nil
		})
	}
	if opts.NewPacer == nil {
		interval := opts.SearchInterval
		if interval <= 0 {
			interval = DefaultSearchInterval
		}
		opts.NewPacer = func() Pacer { return rate.NewLimiter(rate.Every(interval), 1) }
	}
	if opts.Description == "" {
		opts.Description = DefaultDescription
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	return &Exporter{
		provider:    opts.Provider,
		credentials: opts.Credentials,
		authorizer:  opts.Authorizer,
		events:      opts.Events,
		newPacer:    opts.NewPacer,
		description: opts.Description,
		logger:      shared.WithLogger(opts.Logger, "provider", opts.Provider.Name()),
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Export runs one export of entries into a new playlist called name.
//
// The returned result is never nil. A non-nil error is an [*ExportError] and is also stored in
// the result's FatalError. Per-entry misses are recorded in Unresolved and never fail the export.
// Cancelling ctx does not interrupt the run; each network call is bounded by its own timeout.
func (e *Exporter) Export(ctx context.Context, name string, entries []models.TrackRequest, progress chan<- ProgressUpdate) (*models.ExportResult, error) {
	result := &models.ExportResult{RequestedCount: len(entries), State: models.StateIdle}

	if !e.busy.CompareAndSwap(false, true) {
		err := &ExportError{State: models.StateIdle, Err: shared.ErrExportInProgress}
		result.State = models.StateFailed
		result.FatalError = err
		return result, err
	}
	defer e.busy.Store(false)

	ctx = context.WithoutCancel(ctx)

	if len(entries) == 0 {
		result.State = models.StateDone
		e.sendProgress(progress, finishedUpdate(result))
		return result, nil
	}

	e.logger.Info("export started", "name", name, "entries", len(entries))
	e.emit(ctx, EventExportAttempt, map[string]any{"count": len(entries)})

	result.State = models.StateAuthorizing
	e.sendProgress(progress, authorizeUpdate(e.provider.Name()))

	state, err := e.authorizer.Authorize(ctx)
	if err != nil {
		return e.fail(ctx, result, progress, fmt.Errorf("%w: %v", shared.ErrAuthDenied, err))
	}
	if state != models.AuthAuthorized {
		return e.fail(ctx, result, progress, fmt.Errorf("%w: authorization %s", shared.ErrAuthDenied, state))
	}

	cred, err := e.credentials.GetCredential(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrAuthBackend) {
			err = fmt.Errorf("%w: %v", shared.ErrAuthBackend, err)
		}
		return e.fail(ctx, result, progress, err)
	}

	result.State = models.StateResolving
	hits, err := e.resolve(ctx, entries, cred, result, progress)
	if err != nil {
		return e.fail(ctx, result, progress, err)
	}
	if len(hits) == 0 {
		return e.fail(ctx, result, progress, shared.ErrNoMatches)
	}

	result.State = models.StateCreatingPlaylist
	e.sendProgress(progress, createPlaylistUpdate(name, len(hits)))

	playlistID, err := e.provider.CreatePlaylist(ctx, name, e.description, cred)
	if err != nil {
		if !errors.Is(err, shared.ErrCreate) {
			err = fmt.Errorf("%w: %v", shared.ErrCreate, err)
		}
		return e.fail(ctx, result, progress, err)
	}
	result.PlaylistID = playlistID
	e.logger.Info("playlist created", "playlist_id", playlistID)

	result.State = models.StateCommitting
	e.sendProgress(progress, commitTracksUpdate(playlistID, len(hits)))

	added, err := e.provider.AddTracks(ctx, playlistID, hits, cred)
	if err != nil {
		if !errors.Is(err, shared.ErrCommit) {
			err = fmt.Errorf("%w: %v", shared.ErrCommit, err)
		}
		result.AddedCount = 0
		return e.fail(ctx, result, progress, err)
	}
	result.AddedCount = min(max(added, 0), len(hits))

	result.State = models.StateDone
	e.logger.Info("export finished", "playlist_id", playlistID, "added", result.AddedCount, "unresolved", len(result.Unresolved))
	e.emit(ctx, EventExportSuccess, map[string]any{
		"count":      result.RequestedCount,
		"added":      result.AddedCount,
		"unresolved": len(result.Unresolved),
	})
	e.sendProgress(progress, finishedUpdate(result))
	return result, nil
}

// resolve searches entries in input order and returns the hits in the same order. Misses and
// transient failures go to result.Unresolved. An auth failure stops the loop and moves the
// failing entry and everything after it to Unresolved.
func (e *Exporter) resolve(
	ctx context.Context,
	entries []models.TrackRequest,
	cred models.Credential,
	result *models.ExportResult,
	progress chan<- ProgressUpdate,
) ([]models.ResolvedTrack, error) {
	pacer := e.newPacer()
	hits := make([]models.ResolvedTrack, 0, len(entries))

	for i, entry := range entries {
		e.sendProgress(progress, searchTracksUpdate(i+1, len(entries), entry))

		if entry.Query() == "" {
			result.Unresolved = append(result.Unresolved, entry)
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			result.Unresolved = append(result.Unresolved, entries[i:]...)
			return nil, fmt.Errorf("pacing searches: %w", err)
		}

		track, err := e.provider.Resolve(ctx, entry, cred)
		switch {
		case errors.Is(err, shared.ErrAuth):
			result.Unresolved = append(result.Unresolved, entries[i:]...)
			return nil, err
		case err != nil:
			e.logger.Warn("search failed", "entry", entry.String(), "error", err)
			result.Unresolved = append(result.Unresolved, entry)
		case track == nil:
			e.logger.Debug("no match", "entry", entry.String())
			result.Unresolved = append(result.Unresolved, entry)
		default:
			hits = append(hits, *track)
		}
	}

	return hits, nil
}

// fail records err as the fatal outcome of the current state.
func (e *Exporter) fail(ctx context.Context, result *models.ExportResult, progress chan<- ProgressUpdate, err error) (*models.ExportResult, error) {
	exportErr := &ExportError{State: result.State, Err: err}
	result.State = models.StateFailed
	result.FatalError = exportErr

	e.logger.Error("export failed", "state", exportErr.State, "error", err, "orphaned", result.Orphaned())
	e.emit(ctx, EventExportError, map[string]any{
		"state":    exportErr.State.String(),
		"error":    err.Error(),
		"orphaned": result.Orphaned(),
	})
	e.sendProgress(progress, finishedUpdate(result))
	return result, exportErr
}

func (e *Exporter) emit(ctx context.Context, event string, props map[string]any) {
	if e.events == nil {
		return
	}
	props["provider"] = e.provider.Name()
	if err := e.events.Emit(ctx, event, props); err != nil {
		e.logger.Debug("event not delivered", "event", event, "error", err)
	}
}
