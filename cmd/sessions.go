package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/snaketracks/internal/repositories"
	"github.com/desertthunder/snaketracks/internal/shared"
	"github.com/urfave/cli/v3"
)

// sessionRepository opens the SQLite session table. Memory sessions live in the server process and cannot be managed here.
func (r *Runner) sessionRepository() (*repositories.SessionRepository, func() error, error) {
	if r.config.Session.Backend != shared.SessionBackendSQLite {
		return nil, nil, fmt.Errorf("%w: session.backend is %q; only %q sessions are stored on disk",
			shared.ErrInvalidConfig, r.config.Session.Backend, shared.SessionBackendSQLite)
	}

	db, err := r.openDatabase()
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewSessionRepository(db), db.Close, nil
}

// PruneSessions deletes sessions that have not been written within --older-than.
func (r *Runner) PruneSessions(ctx context.Context, cmd *cli.Command) error {
	age := cmd.Duration("older-than")
	if age <= 0 {
		return fmt.Errorf("%w: --older-than must be positive, got %v", shared.ErrInvalidArgument, age)
	}

	repo, release, err := r.sessionRepository()
	if err != nil {
		return err
	}
	defer release()

	cutoff := time.Now().Add(-age)
	removed, err := repo.Prune(ctx, cutoff)
	if err != nil {
		return err
	}

	r.logger.Info("pruned sessions", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	return r.writeStatus(true, "removed %d session(s) older than %v", removed, age)
}

// SessionCount is the JSON shape printed by `sessions count --json`.
type SessionCount struct {
	Backend string `json:"backend"`
	Count   int    `json:"count"`
}

// CountSessions prints how many sessions are stored.
func (r *Runner) CountSessions(ctx context.Context, cmd *cli.Command) error {
	repo, release, err := r.sessionRepository()
	if err != nil {
		return err
	}
	defer release()

	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(SessionCount{Backend: r.config.Session.Backend, Count: count}, false)
	}
	return r.writePlain("%d session(s) in %s\n", count, r.config.Database.Path)
}
