package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/snaketracks/internal/models"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// StatsAggregator assembles a Last.fm user's listening statistics.
type StatsAggregator struct {
	lastfm     *LastFMService
	normalizer *Normalizer
	logger     *log.Logger
}

// NewStatsAggregator creates an aggregator. A nil logger discards output.
func NewStatsAggregator(lastfm *LastFMService, normalizer *Normalizer, logger *log.Logger) *StatsAggregator {
	if logger == nil {
		logger = discardLogger()
	}
	return &StatsAggregator{lastfm: lastfm, normalizer: normalizer, logger: logger}
}

// Stats fetches profile, top tracks, top artists, and recent tracks for username, in that order.
//
// The profile is required: its failure is returned (as an [UpstreamError] for non-200 responses) and no
// further calls are made. The three lists degrade to empty on any failure.
func (s *StatsAggregator) Stats(ctx context.Context, username string) (*models.Stats, error) {
	if !s.lastfm.Configured() {
		return nil, fmt.Errorf("%w: last.fm api key is not configured", shared.ErrMissingCredentials)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	user, err := s.lastfm.UserInfo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last.fm profile: %w", err)
	}

	stats := models.NewStats(summarize(user))

	if recs, err := s.lastfm.TopTracks(ctx, username); err != nil {
		s.logger.Warn("top tracks unavailable", "user", username, "error", err)
	} else {
		stats.TopTracks = s.normalizer.Tracks(ctx, recs)
	}

	if recs, err := s.lastfm.TopArtists(ctx, username); err != nil {
		s.logger.Warn("top artists unavailable", "user", username, "error", err)
	} else {
		stats.TopArtists = s.normalizer.Artists(ctx, recs)
	}

	if recs, err := s.lastfm.RecentTracks(ctx, username); err != nil {
		s.logger.Warn("recent tracks unavailable", "user", username, "error", err)
	} else {
		stats.RecentTracks = s.normalizer.Tracks(ctx, recs)
	}

	return stats, nil
}

func summarize(user *LastFMUser) models.UserSummary {
	summary := models.UserSummary{
		Name:      string(user.Name),
		URL:       string(user.URL),
		Playcount: playcount(user.Playcount),
	}
	if n := len(user.Image); n > 0 {
		summary.Image = string(user.Image[n-1].Text)
	}
	return summary
}
