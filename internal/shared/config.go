package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Session backends accepted by [SessionConfig.Backend].
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Session     SessionConfig     `toml:"session"`
	Database    DatabaseConfig    `toml:"database"`
	Credentials CredentialsConfig `toml:"credentials"`
	Endpoints   EndpointsConfig   `toml:"endpoints"`
	LastFM      LastFMConfig      `toml:"lastfm"`
	Deezer      DeezerConfig      `toml:"deezer"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionCookie string `toml:"session_cookie"`
	SecureCookies bool   `toml:"secure_cookies"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionConfig selects where browser sessions are kept.
type SessionConfig struct {
	Backend string `toml:"backend"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig     `toml:"spotify"`
	LastFM  LastFMCredentials `toml:"lastfm"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Configured reports whether both halves of the client credentials are set.
func (s SpotifyConfig) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// LastFMCredentials contains Last.fm API credentials. Only the key is needed for read-only user methods.
type LastFMCredentials struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

// EndpointsConfig holds upstream base URLs so fakes can be substituted in tests.
type EndpointsConfig struct {
	SpotifyAuthURL  string `toml:"spotify_auth_url"`
	SpotifyTokenURL string `toml:"spotify_token_url"`
	SpotifyAPIURL   string `toml:"spotify_api_url"`
	LastFMAPIURL    string `toml:"lastfm_api_url"`
	DeezerAPIURL    string `toml:"deezer_api_url"`
}

// LastFMConfig contains provider-specific artwork settings.
type LastFMConfig struct {
	PlaceholderSuffix string `toml:"placeholder_suffix"`
	PlaceholderImage  string `toml:"placeholder_image"`
}

// DeezerConfig paces outbound lookups against the Deezer search API.
type DeezerConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path when it exists and falls back to [DefaultConfig] otherwise.
//
// Environment overrides (see [Config.ApplyEnv]) are applied in both cases.
func LoadConfigOrDefault(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			config = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	return config, config.Validate()
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
//
// Variables already present in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values with any set environment variables.
func (c *Config) ApplyEnv() error {
	for env, dst := range map[string]*string{
		"SPOTIFY_CLIENT_ID":           &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET":       &c.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":        &c.Credentials.Spotify.RedirectURI,
		"LASTFM_API_KEY":              &c.Credentials.LastFM.APIKey,
		"LASTFM_API_SECRET":           &c.Credentials.LastFM.APISecret,
		"SNAKETRACKS_HOST":            &c.Server.Host,
		"SNAKETRACKS_SESSION_BACKEND": &c.Session.Backend,
		"SNAKETRACKS_DATABASE_PATH":   &c.Database.Path,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("SNAKETRACKS_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SNAKETRACKS_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	return nil
}

// Validate checks settings that would otherwise fail later in confusing ways.
//
// Missing credentials are not errors here: the server boots without them and reports per request.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendSQLite:
	default:
		return fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, c.Session.Backend)
	}

	if c.Server.SessionCookie == "" {
		return fmt.Errorf("%w: server.session_cookie is empty", ErrInvalidConfig)
	}

	if c.Session.Backend == SessionBackendSQLite && c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required for the sqlite session backend", ErrInvalidConfig)
	}

	return nil
}
