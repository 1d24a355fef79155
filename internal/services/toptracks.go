package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/snaketracks/internal/models"
	"github.com/desertthunder/snaketracks/internal/shared"
	"golang.org/x/oauth2"
)

const topTracksPageSize = 50

// Periods offered by the front end. Spotify has no all-time range, so overall shares long_term.
var periodRanges = map[string]string{
	"1month":  TimeRangeShort,
	"6month":  TimeRangeMedium,
	"12month": TimeRangeLong,
	"overall": TimeRangeLong,
}

// TimeRange maps a period name to a Spotify time range. Unknown or empty periods map to long_term.
func TimeRange(period string) string {
	if r, ok := periodRanges[period]; ok {
		return r
	}
	return TimeRangeLong
}

// TopTracksFetcher builds the snake game's track list from Spotify top tracks and Deezer previews.
type TopTracksFetcher struct {
	spotify     *SpotifyService
	previews    PreviewResolver
	placeholder string
}

// NewTopTracksFetcher creates a fetcher. A nil previews resolver keeps Spotify's own preview URLs.
func NewTopTracksFetcher(spotify *SpotifyService, previews PreviewResolver, placeholder string) *TopTracksFetcher {
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	return &TopTracksFetcher{spotify: spotify, previews: previews, placeholder: placeholder}
}

// TopTracks returns up to 50 entries in Spotify's order for the given period.
func (f *TopTracksFetcher) TopTracks(ctx context.Context, token *oauth2.Token, period string) ([]models.TopTrackEntry, error) {
	if token == nil {
		return nil, shared.ErrNotAuthenticated
	}

	page, err := f.spotify.TopTracks(ctx, token, TimeRange(period), topTracksPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top tracks: %w", err)
	}

	entries := make([]models.TopTrackEntry, 0, len(page.Items))
	for _, item := range page.Items {
		entries = append(entries, f.entry(ctx, item))
	}
	return entries, nil
}

func (f *TopTracksFetcher) entry(ctx context.Context, item SpotifyTrack) models.TopTrackEntry {
	entry := models.TopTrackEntry{
		ID:       item.ID,
		Name:     item.Name,
		ImageURL: f.placeholder,
	}

	if len(item.Artists) > 0 {
		entry.Artist = item.Artists[0].Name
	}
	if len(item.Album.Images) > 0 && item.Album.Images[0].URL != "" {
		entry.ImageURL = item.Album.Images[0].URL
	}
	if item.PreviewURL != nil {
		entry.PreviewURL = *item.PreviewURL
	}

	if f.previews != nil {
		if preview, ok := f.previews.Preview(ctx, item.Name+" "+entry.Artist); ok {
			entry.PreviewURL = preview
		}
	}
	return entry
}
