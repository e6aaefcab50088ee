package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tapedeck/internal/formatter"
	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/repositories"
	"github.com/desertthunder/tapedeck/internal/services"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/desertthunder/tapedeck/internal/tasks"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// Export resolves a track list against the configured provider and saves it as a new playlist.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	r.useProvider(cmd.String("provider"))

	entries, err := r.exportEntries(ctx, cmd)
	if err != nil {
		return err
	}

	exporter, err := r.newExporter(cmd.Bool("yes"))
	if err != nil {
		return err
	}
	providerName := r.config.Provider.Name

	r.logger.Info("starting export", "name", name, "provider", providerName, "entries", len(entries))
	r.writePlain("Exporting %d tracks to %s...\n\n", len(entries), providerName)

	// One slot per entry plus authorize, create, commit and finished.
	progressCh := make(chan tasks.ProgressUpdate, len(entries)+4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Authorize:
				r.writePlain("🔐 %s\n", update.Message)
			case tasks.SearchTracks:
				r.writePlain("   🔍 %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.CommitTracks:
				r.writePlain("➕ %s\n", update.Message)
			}
		}
	}()

	result, exportErr := exporter.Export(ctx, name, entries, progressCh)
	close(progressCh)
	<-done

	if !cmd.Bool("no-history") {
		if err := r.recordExport(models.NewExportRecord(providerName, name, result)); err != nil {
			r.logger.Warn("failed to record export history", "error", err)
		}
	}

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(formatter.NewReport(name, providerName, result), path); err != nil {
			r.logger.Warn("failed to write report", "path", path, "error", err)
		} else {
			r.logger.Info("report written", "path", path)
		}
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(formatter.NewReport(name, providerName, result), true); err != nil {
			return err
		}
	} else {
		r.printSummary(name, result)
	}

	if exportErr != nil {
		r.writePlain("\n%s\n", r.styles.Err("%s", tasks.UserMessage(exportErr)))
		return exportErr
	}
	return nil
}

// exportEntries reads the export input from --input or generates it through the backend.
func (r *Runner) exportEntries(ctx context.Context, cmd *cli.Command) ([]models.TrackRequest, error) {
	if path := cmd.String("input"); path != "" {
		entries, err := formatter.ReadEntriesFile(path)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("loaded entries", "path", path, "count", len(entries))
		return entries, nil
	}

	if cmd.String("date") == "" && cmd.String("genre") == "" {
		return nil, fmt.Errorf("%w: either --input or --date and --genre must be provided", shared.ErrMissingArgument)
	}

	req := services.SimulateRequest{
		Date:         cmd.String("date"),
		Genre:        cmd.String("genre"),
		Hours:        int(cmd.Int("hours")),
		RepeatGapMin: int(cmd.Int("repeat-gap")),
		Limit:        int(cmd.Int("limit")),
	}
	if cmd.IsSet("seed") {
		seed := int(cmd.Int("seed"))
		req.Seed = &seed
	}

	r.logger.Info("generating playlist", "date", req.Date, "genre", req.Genre, "hours", req.Hours)
	tracks, err := r.backend.Simulate(ctx, req)
	if err != nil {
		return nil, err
	}

	return lo.Map(tracks, func(t models.GeneratedTrack, _ int) models.TrackRequest {
		return t.Request()
	}), nil
}

func (r *Runner) printSummary(name string, result *models.ExportResult) {
	r.writePlain("\n")
	if result.Succeeded() {
		r.writePlainHeader("Export Complete!")
	} else {
		r.writePlainHeader("Export Failed")
	}

	r.writePlain("Playlist: %s\n", name)
	if result.PlaylistID != "" {
		r.writePlain("Playlist ID: %s\n", result.PlaylistID)
	}
	r.writePlain("State: %s\n", result.State)

	if result.RequestedCount > 0 {
		added := fmt.Sprintf("Added: %d/%d (%.1f%%)", result.AddedCount, result.RequestedCount,
			float64(result.AddedCount)/float64(result.RequestedCount)*100)
		if result.Succeeded() {
			added = r.styles.OK("%s", added)
		}
		r.writePlain("%s\n", added)
	}

	if result.Orphaned() {
		r.writePlain("%s\n", r.styles.Warn("Playlist %s was created but may be empty", result.PlaylistID))
	}

	if len(result.Unresolved) > 0 {
		r.writePlain("\nCould not find %d tracks:\n", len(result.Unresolved))
		for _, entry := range result.Unresolved {
			r.writePlain("  - %s\n", entry)
		}
	}
}

// openHistory opens the configured history database and applies migrations.
func (r *Runner) openHistory() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (r *Runner) recordExport(rec *models.ExportRecord) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewExportRepository(db).Create(rec); err != nil {
		return err
	}
	r.logger.Debug("export recorded", "id", rec.ID, "sequence", rec.Sequence)
	return nil
}
