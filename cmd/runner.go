package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/snaketracks/internal/repositories"
	"github.com/desertthunder/snaketracks/internal/server"
	"github.com/desertthunder/snaketracks/internal/services"
	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
	"github.com/desertthunder/snaketracks/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by subsequently built components.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Before loads configuration for every command from the global --config flag.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}

	r.config = config
	r.configPath = path
	r.logger.Debug("configuration loaded", "path", path, "session_backend", config.Session.Backend)
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, lastfmCommand, tuiCommand, sessionsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// warnMissingCredentials logs one warning per unconfigured upstream.
//
// The server still boots; the affected endpoints report the problem per request.
func (r *Runner) warnMissingCredentials() []string {
	var missing []string
	if !r.config.Credentials.Spotify.Configured() {
		missing = append(missing, "spotify")
		r.logger.Warn("spotify credentials are not configured; login will fail",
			"env", "SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET")
	}
	if r.config.Credentials.LastFM.APIKey == "" {
		missing = append(missing, "lastfm")
		r.logger.Warn("last.fm api key is not configured; stats will be unavailable", "env", "LASTFM_API_KEY")
	}
	return missing
}

// stack is the set of upstream clients built from one configuration.
type stack struct {
	deezer     *services.DeezerService
	normalizer *services.Normalizer
	lastfm     *services.LastFMService
	stats      *services.StatsAggregator
	spotify    *services.SpotifyService
	tracks     *services.TopTracksFetcher
}

func (r *Runner) buildStack() *stack {
	cfg := r.config

	deezer := services.NewDeezerService(cfg.Endpoints.DeezerAPIURL,
		services.WithDeezerHTTPClient(r.httpClient),
		services.WithDeezerRateLimit(cfg.Deezer.RequestsPerSecond, cfg.Deezer.Burst),
		services.WithDeezerLogger(shared.WithLogger(r.logger, "component", "deezer")),
	)
	normalizer := services.NewNormalizer(deezer, cfg.LastFM.PlaceholderSuffix, cfg.LastFM.PlaceholderImage)
	lastfm := services.NewLastFMService(cfg.Endpoints.LastFMAPIURL, cfg.Credentials.LastFM.APIKey, r.httpClient)
	spotify := services.NewSpotifyService(cfg.Credentials.Spotify, cfg.Endpoints, r.httpClient)

	return &stack{
		deezer:     deezer,
		normalizer: normalizer,
		lastfm:     lastfm,
		stats:      services.NewStatsAggregator(lastfm, normalizer, shared.WithLogger(r.logger, "component", "stats")),
		spotify:    spotify,
		tracks:     services.NewTopTracksFetcher(spotify, deezer, normalizer.Placeholder()),
	}
}

// openDatabase opens the configured SQLite database and applies pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	applied, err := shared.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		r.logger.Info("applied database migrations", "count", applied, "path", r.config.Database.Path)
	}
	return db, nil
}

// openStore returns the session store selected by config and a function that releases it.
func (r *Runner) openStore() (session.Store, func() error, error) {
	switch r.config.Session.Backend {
	case shared.SessionBackendSQLite:
		db, err := r.openDatabase()
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewSessionRepository(db), db.Close, nil
	case shared.SessionBackendMemory, "":
		return session.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session backend %q", shared.ErrInvalidConfig, r.config.Session.Backend)
	}
}

func (r *Runner) buildServer(store session.Store, s *stack) *server.Server {
	return server.New(
		server.CookieConfig{Name: r.config.Server.SessionCookie, Secure: r.config.Server.SecureCookies},
		server.Deps{
			Store:     store,
			Spotify:   s.spotify,
			TopTracks: s.tracks,
			Stats:     s.stats,
			Logger:    shared.WithLogger(r.logger, "component", "server"),
		},
	)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeStatus(ok bool, format string, args ...any) error {
	mark := ui.OK("✓")
	if !ok {
		mark = ui.Error("✗")
	}
	return r.writePlain("%s %s\n", mark, fmt.Sprintf(format, args...))
}
