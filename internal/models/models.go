// package models defines the data model served by the snaketracks API
package models

// Track is a canonical Last.fm track.
type Track struct {
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	Playcount string `json:"playcount"`
	ImageURL  string `json:"image_url"`
	SourceURL string `json:"source_url"`
}

// Artist is a canonical Last.fm artist.
type Artist struct {
	Name      string `json:"name"`
	Playcount string `json:"playcount"`
	ImageURL  string `json:"image_url"`
	SourceURL string `json:"source_url"`
}

// TopTrackEntry is one of the authenticated user's Spotify top tracks.
type TopTrackEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ImageURL   string `json:"image_url"`
	PreviewURL string `json:"preview_url"`
}

// UserSummary is the Last.fm profile snapshot included in [Stats].
type UserSummary struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Playcount string `json:"playcount"`
	Image     string `json:"image"`
}

// Stats aggregates a Last.fm user's profile, top tracks, top artists, and recent tracks.
type Stats struct {
	User         UserSummary `json:"user"`
	TopTracks    []Track     `json:"top_tracks"`
	TopArtists   []Artist    `json:"top_artists"`
	RecentTracks []Track     `json:"recent_tracks"`
}

// NewStats returns Stats for user with empty, non-nil lists so they encode as [] rather than null.
func NewStats(user UserSummary) *Stats {
	return &Stats{
		User:         user,
		TopTracks:    []Track{},
		TopArtists:   []Artist{},
		RecentTracks: []Track{},
	}
}
