// Spotify Web API client for the authorization code flow
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/snaketracks/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Spotify time ranges accepted by /me/top.
const (
	TimeRangeShort  = "short_term"
	TimeRangeMedium = "medium_term"
	TimeRangeLong   = "long_term"
)

// SpotifyScopes are requested at login: profile for the status display, top-read for the game.
var SpotifyScopes = []string{"user-read-private", "user-top-read", "user-read-email"}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []SpotifyImage `json:"images"`
}

// AvatarURL returns the first profile image, or "".
func (u *SpotifyUser) AvatarURL() string {
	if len(u.Images) == 0 {
		return ""
	}
	return u.Images[0].URL
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	PreviewURL *string         `json:"preview_url"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTopTracks is a page of /me/top/tracks.
type SpotifyTopTracks struct {
	Items  []SpotifyTrack `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Next   *string        `json:"next"`
}

// SpotifyService drives the OAuth2 code flow with [oauth2] and reads the Web API on behalf of a token.
//
// The service holds no token itself; callers pass the one stored in their session.
type SpotifyService struct {
	config     *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify service. Missing credentials are allowed so the server can boot;
// check [SpotifyService.Configured] before starting a login.
func NewSpotifyService(creds shared.SpotifyConfig, endpoints shared.EndpointsConfig, client *http.Client) *SpotifyService {
	authURL := endpoints.SpotifyAuthURL
	if authURL == "" {
		authURL = spotifyAuthURL
	}
	tokenURL := endpoints.SpotifyTokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	apiURL := endpoints.SpotifyAPIURL
	if apiURL == "" {
		apiURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		apiURL:     apiURL,
		httpClient: client,
	}
}

// Name labels upstream errors from this service.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Configured reports whether a client id and secret are present.
func (s *SpotifyService) Configured() bool {
	return s.config.ClientID != "" && s.config.ClientSecret != ""
}

// AuthURL returns the authorization URL the browser is redirected to.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// withClient carries the configured client into [oauth2], which otherwise uses [http.DefaultClient].
func (s *SpotifyService) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// Exchange trades an authorization code for a token bundle.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", shared.ErrAuthFailed)
	}

	token, err := s.config.Exchange(s.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// api returns a client that authorizes requests with token, refreshing it in memory when it expires.
func (s *SpotifyService) api(ctx context.Context, token *oauth2.Token) (*APIClient, error) {
	if token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	ctx = s.withClient(ctx)
	return NewAPIClient(s.Name(), s.apiURL, s.config.Client(ctx, token)), nil
}

// CurrentUser retrieves the profile of the token's owner.
func (s *SpotifyService) CurrentUser(ctx context.Context, token *oauth2.Token) (*SpotifyUser, error) {
	api, err := s.api(ctx, token)
	if err != nil {
		return nil, err
	}

	var user SpotifyUser
	if err := api.GetJSON(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopTracks retrieves the token owner's most played tracks over timeRange. A limit outside 1..50 requests 50.
func (s *SpotifyService) TopTracks(ctx context.Context, token *oauth2.Token, timeRange string, limit int) (*SpotifyTopTracks, error) {
	api, err := s.api(ctx, token)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("time_range", timeRange)

	var page SpotifyTopTracks
	if err := api.GetJSON(ctx, "/me/top/tracks", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
