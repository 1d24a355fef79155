// Deezer search used as an artwork and preview fallback
//
// See https://developers.deezer.com/api/search
package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const deezerBaseURL = "https://api.deezer.com"

type deezerAlbum struct {
	CoverMedium string `json:"cover_medium"`
}

type deezerTrack struct {
	ID      int64       `json:"id"`
	Title   string      `json:"title"`
	Preview string      `json:"preview"`
	Album   deezerAlbum `json:"album"`
}

type deezerSearchResponse struct {
	Data  []deezerTrack `json:"data"`
	Total int           `json:"total"`
}

// DeezerService looks up tracks on Deezer's public search API. No API key is required.
//
// It implements [ImageResolver] and [PreviewResolver].
type DeezerService struct {
	api     *APIClient
	limiter *rate.Limiter
	logger  *log.Logger
}

// DeezerOption configures a [DeezerService].
type DeezerOption func(*DeezerService)

// WithDeezerHTTPClient sends lookups through client.
func WithDeezerHTTPClient(client *http.Client) DeezerOption {
	return func(d *DeezerService) {
		if client != nil {
			d.api = d.api.WithHTTPClient(client)
		}
	}
}

// WithDeezerRateLimit paces lookups to rps requests per second. A non-positive rps disables pacing.
func WithDeezerRateLimit(rps float64, burst int) DeezerOption {
	return func(d *DeezerService) {
		if rps <= 0 {
			d.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithDeezerLogger sets the logger used for lookup misses.
func WithDeezerLogger(logger *log.Logger) DeezerOption {
	return func(d *DeezerService) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDeezerService creates a Deezer client rooted at baseURL (the public API when empty).
func NewDeezerService(baseURL string, opts ...DeezerOption) *DeezerService {
	if baseURL == "" {
		baseURL = deezerBaseURL
	}

	d := &DeezerService{
		api:    NewAPIClient("Deezer", baseURL, nil),
		logger: discardLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CoverImage returns the medium album cover of the best match for "artist track".
func (d *DeezerService) CoverImage(ctx context.Context, artist, track string) (string, bool) {
	match, ok := d.first(ctx, artist+" "+track)
	if !ok || match.Album.CoverMedium == "" {
		return "", false
	}
	return match.Album.CoverMedium, true
}

// Preview returns the 30-second preview URL of the best match for query.
func (d *DeezerService) Preview(ctx context.Context, query string) (string, bool) {
	match, ok := d.first(ctx, query)
	if !ok || match.Preview == "" {
		return "", false
	}
	return match.Preview, true
}

// first runs a single-result search. Every failure is logged at debug and reported as a miss.
func (d *DeezerService) first(ctx context.Context, query string) (deezerTrack, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return deezerTrack{}, false
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			d.logger.Debug("deezer lookup skipped", "query", query, "error", err)
			return deezerTrack{}, false
		}
	}

	var result deezerSearchResponse
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")

	if err := d.api.GetJSON(ctx, "/search", params, &result); err != nil {
		d.logger.Debug("deezer lookup failed", "query", query, "error", err)
		return deezerTrack{}, false
	}

	if len(result.Data) == 0 {
		d.logger.Debug("deezer lookup found nothing", "query", query)
		return deezerTrack{}, false
	}
	return result.Data[0], true
}
