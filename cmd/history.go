package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tapedeck/internal/formatter"
	"github.com/desertthunder/tapedeck/internal/repositories"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints past exports, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewExportRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		reports := make([]formatter.Report, 0, len(records))
		for _, rec := range records {
			reports = append(reports, formatter.RecordReport(rec))
		}
		return r.writeJSON(reports, cmd.Bool("pretty"))
	}

	r.writePlain("%s", formatter.HistoryTable(records))
	return nil
}

// HistoryShow prints one past export in the requested format.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: export id is required", shared.ErrMissingArgument)
	}

	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := repositories.NewExportRepository(db).Get(id)
	if err != nil {
		return err
	}

	data, err := formatter.Render(formatter.RecordReport(rec), cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
