// Package models defines the canonical records served to the browser.
//
// Upstream payloads (Spotify, Last.fm, Deezer) are decoded by the services package and normalized into:
//   - [Track] : a Last.fm track with guaranteed artwork
//   - [Artist] : a Last.fm artist with guaranteed artwork
//   - [TopTrackEntry] : a Spotify top track for the snake game, with a playable preview when one exists
//   - [Stats] : the aggregated Last.fm response for one user
//
// Every ImageURL on these records is non-empty: provider artwork, resolved artwork, or a placeholder.
package models
