// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func providerFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "provider",
		Aliases: []string{"p"},
		Usage:   "Destination provider (apple, youtube, spotify); overrides provider.name",
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create configuration and initialize the history database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// exportCommand saves a track list as a new playlist
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Save a track list as a new playlist in the destination provider",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Name of the playlist to create",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON or CSV file of {artist, title} entries",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Generate the playlist for this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "genre",
				Usage: "Genre of the generated playlist",
			},
			&cli.IntFlag{
				Name:  "hours",
				Usage: "Length of the generated playlist in hours",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "repeat-gap",
				Usage: "Minimum minutes between repeats of a song",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed for reproducible generation",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of generated tracks",
			},
			providerFlag(),
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"r"},
				Usage:   "Write a report file (.json, .csv, .md, .txt)",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the authorization prompt",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the export in the history database",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
		},
		Action: r.Export,
	}
}

// searchCommand resolves one entry
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Look up one track in the destination catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Artist name",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Track title",
			},
			providerFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

// tokenCommand fetches a provider credential
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Fetch a service credential for the destination provider",
		Flags: []cli.Flag{
			providerFlag(),
			&cli.BoolFlag{
				Name:  "reveal",
				Usage: "Print the full token",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Token,
	}
}

// historyCommand inspects past exports
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past exports",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of exports to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.HistoryList,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show one export",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, csv, md, txt)",
						Value:   "txt",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
