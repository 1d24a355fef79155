// Package services talks to the three upstream APIs and turns their responses into [models] records.
//
// # Upstream Clients
//
// [APIClient] wraps GET requests for every upstream. Non-200 responses become [UpstreamError], carrying the
// status and raw body so handlers can pass them through.
//
//   - [SpotifyService] : OAuth2 authorization code flow, current user profile, and top tracks
//   - [LastFMService] : user.getinfo, user.gettoptracks, user.gettopartists, user.getrecenttracks
//   - [DeezerService] : track search used for cover artwork and audio previews
//
// # Enrichment
//
// [DeezerService] implements [ImageResolver] and [PreviewResolver]. Lookups never fail loudly: network
// errors, bad statuses, and missing fields all mean "no result".
//
// [Normalizer] maps raw Last.fm track and artist records, whose shapes differ per method, onto
// [models.Track] and [models.Artist]. Records without usable artwork (absent, or Last.fm's placeholder
// star) are looked up through the [ImageResolver]; when that fails too the configured placeholder is used,
// so ImageURL is never empty.
//
// # Orchestration
//
// [StatsAggregator] calls Last.fm four times in sequence. Only the profile call is fatal; the three list
// calls degrade to empty lists.
//
// [TopTracksFetcher] maps the front end's period names onto Spotify time ranges, fetches the top 50 tracks,
// and attaches a Deezer preview to each.
//
// # Error Handling
//
// Errors from shared are wrapped with context:
//   - [shared.ErrMissingCredentials] : required API key absent
//   - [shared.ErrMissingArgument] : required input absent
//   - [shared.ErrNotAuthenticated] : no Spotify token
//
// Everything else is a processing failure.
package services
