// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/snaketracks/internal/formatter"
	"github.com/urfave/cli/v3"
)

// serveCommand runs the HTTP application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the snaketracks web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in the default browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the session database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.RollbackDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Destination path (defaults to --config)",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// lastfmCommand runs the stats aggregation outside of HTTP.
func lastfmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lastfm",
		Aliases: []string{"fm"},
		Usage:   "Last.fm statistics",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Print profile, top tracks, top artists and recent tracks for a user",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "username",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.LastFMStats,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing Last.fm stats.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse a Last.fm user's stats in the terminal",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "username",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/snaketracks-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// sessionsCommand manages persisted browser sessions.
func sessionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Manage stored browser sessions (sqlite backend)",
		Commands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete sessions not updated within the given window",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Age after which an untouched session is removed",
						Value: 30 * 24 * time.Hour,
					},
				},
				Action: r.PruneSessions,
			},
			{
				Name:  "count",
				Usage: "Print the number of stored sessions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CountSessions,
			},
		},
	}
}
