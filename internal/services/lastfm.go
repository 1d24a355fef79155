// Last.fm API client for read-only user methods
//
// See https://www.last.fm/api/show/user.getInfo and siblings. Responses are requested with format=json,
// which Last.fm produces by translating its XML: numbers arrive as strings, single-element lists arrive
// as bare objects, and the artist of a track is an object in one method and a "#text" node in another.
// The types below accept all of those shapes.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/snaketracks/internal/shared"
)

const lastfmBaseURL = "https://ws.audioscrobbler.com/2.0/"

const (
	topTracksLimit    = 10
	topArtistsLimit   = 5
	recentTracksLimit = 5
)

// flexString decodes a JSON string or number. Any other value decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(n.String())
	default:
		*f = ""
	}
	return nil
}

// artistRef is the artist of a track: {"name": ...}, {"#text": ...}, or a bare string.
type artistRef struct {
	Name string
}

func (a *artistRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Name = s
		return nil
	}

	var obj struct {
		Name flexString `json:"name"`
		Text flexString `json:"#text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		a.Name = ""
		return nil
	}

	a.Name = string(obj.Name)
	if a.Name == "" {
		a.Name = string(obj.Text)
	}
	return nil
}

type lastfmImage struct {
	Text flexString `json:"#text"`
	Size flexString `json:"size"`
}

// imageList decodes an array of image nodes, dropping entries that are not objects.
type imageList []lastfmImage

func (l *imageList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}

	images := make(imageList, 0, len(raw))
	for _, r := range raw {
		var img lastfmImage
		if err := json.Unmarshal(r, &img); err != nil {
			continue
		}
		images = append(images, img)
	}
	*l = images
	return nil
}

// LastFMRecord is a track or artist entry from any of the user.* list methods.
type LastFMRecord struct {
	Name      flexString `json:"name"`
	Artist    artistRef  `json:"artist"`
	Playcount flexString `json:"playcount"`
	URL       flexString `json:"url"`
	Image     imageList  `json:"image"`
}

// recordList decodes an array of records, or a single record object. Malformed entries are skipped.
type recordList []LastFMRecord

func (l *recordList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*l = nil
		return nil
	}

	if data[0] == '{' {
		var rec LastFMRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			*l = nil
			return nil
		}
		*l = recordList{rec}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}

	records := make(recordList, 0, len(raw))
	for _, r := range raw {
		var rec LastFMRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	*l = records
	return nil
}

// LastFMUser is the profile returned by user.getinfo.
type LastFMUser struct {
	Name      flexString `json:"name"`
	RealName  flexString `json:"realname"`
	URL       flexString `json:"url"`
	Playcount flexString `json:"playcount"`
	Country   flexString `json:"country"`
	Image     imageList  `json:"image"`
}

type lastfmUserResponse struct {
	User LastFMUser `json:"user"`
}

type lastfmTopTracksResponse struct {
	TopTracks struct {
		Track recordList `json:"track"`
	} `json:"toptracks"`
}

type lastfmTopArtistsResponse struct {
	TopArtists struct {
		Artist recordList `json:"artist"`
	} `json:"topartists"`
}

type lastfmRecentTracksResponse struct {
	RecentTracks struct {
		Track recordList `json:"track"`
	} `json:"recenttracks"`
}

// LastFMService calls the Last.fm web service with a shared API key.
type LastFMService struct {
	api    *APIClient
	apiKey string
}

// NewLastFMService creates a Last.fm client rooted at baseURL (the public endpoint when empty).
func NewLastFMService(baseURL, apiKey string, client *http.Client) *LastFMService {
	if baseURL == "" {
		baseURL = lastfmBaseURL
	}
	return &LastFMService{
		api:    NewAPIClient("Last.fm", baseURL, client),
		apiKey: apiKey,
	}
}

// Configured reports whether an API key is present.
func (l *LastFMService) Configured() bool {
	return l.apiKey != ""
}

func (l *LastFMService) call(ctx context.Context, method, username string, limit int, v any) error {
	if !l.Configured() {
		return fmt.Errorf("%w: last.fm api key", shared.ErrMissingCredentials)
	}

	params := url.Values{}
	params.Set("method", method)
	params.Set("user", username)
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	if err := l.api.GetJSON(ctx, "/", params, v); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// UserInfo fetches the profile for username.
func (l *LastFMService) UserInfo(ctx context.Context, username string) (*LastFMUser, error) {
	var resp lastfmUserResponse
	if err := l.call(ctx, "user.getinfo", username, 0, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// TopTracks fetches the user's ten most played tracks.
func (l *LastFMService) TopTracks(ctx context.Context, username string) ([]LastFMRecord, error) {
	var resp lastfmTopTracksResponse
	if err := l.call(ctx, "user.gettoptracks", username, topTracksLimit, &resp); err != nil {
		return nil, err
	}
	return resp.TopTracks.Track, nil
}

// TopArtists fetches the user's five most played artists.
func (l *LastFMService) TopArtists(ctx context.Context, username string) ([]LastFMRecord, error) {
	var resp lastfmTopArtistsResponse
	if err := l.call(ctx, "user.gettopartists", username, topArtistsLimit, &resp); err != nil {
		return nil, err
	}
	return resp.TopArtists.Artist, nil
}

// RecentTracks fetches the user's five latest scrobbles.
func (l *LastFMService) RecentTracks(ctx context.Context, username string) ([]LastFMRecord, error) {
	var resp lastfmRecentTracksResponse
	if err := l.call(ctx, "user.getrecenttracks", username, recentTracksLimit, &resp); err != nil {
		return nil, err
	}
	return resp.RecentTracks.Track, nil
}
