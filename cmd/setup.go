package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/snaketracks/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the session database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if r.config.Session.Backend != shared.SessionBackendSQLite {
		r.logger.Warnf("session.backend is %q; the server will not use this database until it is set to %q",
			r.config.Session.Backend, shared.SessionBackendSQLite)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writeStatus(true, "database ready at %s", r.config.Database.Path)
}

// RollbackDatabase reverts the most recently applied migration.
func (r *Runner) RollbackDatabase(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	return r.writeStatus(true, "rolled back latest migration on %s", r.config.Database.Path)
}

// SetupConfig writes the example configuration to --output, or to the global --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		return fmt.Errorf("%w: no destination for config file", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	if err := r.writeStatus(true, "wrote %s", path); err != nil {
		return err
	}
	return r.writePlain("Set SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and LASTFM_API_KEY in the environment or .env\n")
}
