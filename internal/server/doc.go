// Package server provides HTTP routing, middleware, session handling, and the JSON API of snaketracks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logger] writes an access log line per request; [Recoverer] converts panics into 500s.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Sessions
//
// Handlers are written as [Action] values: they receive the request and the caller's [session.Session]
// and return a [Response]. The adapter loads the session named by the cookie before the action runs and
// persists it afterwards, so handlers never touch cookies or the store.
//
// # Routes
//
//	GET  /login/spotify            → 302 to the Spotify consent page
//	GET  /callback/spotify         → 302 to / once the token and profile are stored
//	GET  /auth/status              → {authenticated, user_name, user_image}
//	GET  /logout                   → clears the session, 302 to /
//	GET  /api/snake-tracks?period= → top tracks with previews (401 without login)
//	GET  /api/lastfm/stats?username=
//	POST /api/lastfm/save-username → {success, username}
//	GET  /api/lastfm/get-username  → {username, has_username}
//	GET  /health                   → {status: "ok"}
//	GET  /                         → front end (see package web)
//
// # Errors
//
// [Fail] maps service errors to status codes. Error bodies are {"error": ...}, with "details" carrying
// the upstream body for upstream faults and the error text for processing faults.
package server
