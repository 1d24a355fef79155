package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/snaketracks/internal/formatter"
	"github.com/desertthunder/snaketracks/internal/shared"
	"github.com/urfave/cli/v3"
)

// LastFMStats aggregates a user's Last.fm stats and prints or exports them.
func (r *Runner) LastFMStats(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.StringArg("username"))
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	r.logger.Infof("fetching last.fm stats for %v", username)
	stats, err := r.buildStack().stats.Stats(ctx, username)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(stats, format, path); err != nil {
			return err
		}
		return r.writeStatus(true, "exported %s stats to %s", username, path)
	}

	data, err := formatter.Render(stats, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
