package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search resolves a single entry against the configured provider's catalog.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	r.useProvider(cmd.String("provider"))

	entry := models.TrackRequest{Artist: cmd.String("artist"), Title: cmd.String("title")}
	if entry.Query() == "" {
		entry = parseEntry(cmd.StringArg("query"))
	}
	if entry.Query() == "" {
		return fmt.Errorf("%w: provide --artist and --title or a query argument", shared.ErrMissingArgument)
	}

	provider, credentials, err := r.musicProvider()
	if err != nil {
		return err
	}

	cred, err := credentials.GetCredential(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("searching catalog", "provider", provider.Name(), "query", entry.Query())
	track, err := provider.Resolve(ctx, entry, cred)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := map[string]any{"artist": entry.Artist, "title": entry.Title, "found": track != nil}
		if track != nil {
			out["id"] = track.CatalogID
			out["type"] = track.Kind.String()
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if track == nil {
		r.writePlain("%s\n", r.styles.Warn("No match for %s", entry))
		return nil
	}
	r.writePlain("%s  %s (%s)\n", r.styles.OK("✓ %s", entry), track.CatalogID, track.Kind)
	return nil
}

// parseEntry splits "Artist - Title". Without a separator the whole query is the title.
func parseEntry(query string) models.TrackRequest {
	artist, title, ok := strings.Cut(query, " - ")
	if !ok {
		return models.TrackRequest{Title: strings.TrimSpace(query)}
	}
	return models.TrackRequest{Artist: strings.TrimSpace(artist), Title: strings.TrimSpace(title)}
}
