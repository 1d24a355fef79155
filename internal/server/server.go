// package server contains middleware & handlers for the snaketracks web service
package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/snaketracks/internal/models"
	"github.com/desertthunder/snaketracks/internal/services"
	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/web"
	"golang.org/x/oauth2"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for read-only HTTP handlers that register their own routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	HandleRead(path string, handler http.Handler)     // HandleRead registers a GET/HEAD handler that changes no state
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Authorizer runs the Spotify authorization code flow. Implemented by [services.SpotifyService].
type Authorizer interface {
	Configured() bool
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	CurrentUser(ctx context.Context, token *oauth2.Token) (*services.SpotifyUser, error)
}

// TopTracksSource lists a user's top tracks. Implemented by [services.TopTracksFetcher].
type TopTracksSource interface {
	TopTracks(ctx context.Context, token *oauth2.Token, period string) ([]models.TopTrackEntry, error)
}

// StatsSource aggregates Last.fm statistics. Implemented by [services.StatsAggregator].
type StatsSource interface {
	Stats(ctx context.Context, username string) (*models.Stats, error)
}

// Deps are the collaborators a [Server] dispatches to.
type Deps struct {
	Store     session.Store
	Spotify   Authorizer
	TopTracks TopTracksSource
	Stats     StatsSource
	Logger    *log.Logger
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Server is the snaketracks HTTP application.
type Server struct {
	router  Router
	cookie  CookieConfig
	store   session.Store
	spotify Authorizer
	tracks  TopTracksSource
	stats   StatsSource
	logger  *log.Logger
}

// New builds the server and registers every route.
func New(cookie CookieConfig, deps Deps) *Server {
	if cookie.Name == "" {
		cookie.Name = "snaketracks_session"
	}
	if deps.Store == nil {
		deps.Store = session.NewMemoryStore()
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	s := &Server{
		router:  NewBasicRouter(),
		cookie:  cookie,
		store:   deps.Store,
		spotify: deps.Spotify,
		tracks:  deps.TopTracks,
		stats:   deps.Stats,
		logger:  deps.Logger,
	}

	s.router.Use(Recoverer(s.logger), Logger(s.logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Handle(http.MethodGet, "/login/spotify", s.action(s.login))
	s.router.Handle(http.MethodGet, "/callback/spotify", s.action(s.callback))
	s.router.Handle(http.MethodGet, "/auth/status", s.action(s.authStatus))
	s.router.Handle(http.MethodGet, "/logout", s.action(s.logout))

	s.router.Handle(http.MethodGet, "/api/snake-tracks", s.action(s.snakeTracks))

	s.router.Handle(http.MethodGet, "/api/lastfm/stats", s.action(s.lastfmStats))
	s.router.Handle(http.MethodPost, "/api/lastfm/save-username", s.action(s.saveUsername))
	s.router.Handle(http.MethodGet, "/api/lastfm/get-username", s.action(s.getUsername))

	s.router.HandleRead("/health", http.HandlerFunc(health))
	s.router.Handler(web.NewFrontend())
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
