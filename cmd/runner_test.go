package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/snaketracks/internal/models"
	"github.com/desertthunder/snaketracks/internal/repositories"
	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
	tu "github.com/desertthunder/snaketracks/internal/testing"
)

const (
	userInfoBody  = `{"user":{"name":"rj","url":"https://www.last.fm/user/rj","playcount":"1500","image":[{"#text":"https://img/u.png","size":"large"}]}}`
	topTracksBody = `{"toptracks":{"track":[{"name":"Reckoner","artist":{"name":"Radiohead"},"playcount":"40","url":"https://last.fm/t1","image":[]}]}}`
)

// unsetEnv clears overrides that would otherwise leak from the host into loaded config.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REDIRECT_URI",
		"LASTFM_API_KEY", "LASTFM_API_SECRET",
		"SNAKETRACKS_HOST", "SNAKETRACKS_PORT", "SNAKETRACKS_SESSION_BACKEND", "SNAKETRACKS_DATABASE_PATH",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// writeConfig encodes the default config, adjusted by mutate, into a temp directory.
func writeConfig(t *testing.T, mutate func(*shared.Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := shared.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "sessions.db")
	cfg.Deezer.RequestsPerSecond = 0
	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}
	return path
}

func newTestRunner() (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{}), Output: output}), output
}

func run(r *Runner, args ...string) error {
	return newApp(r).Run(context.Background(), append([]string{"snaketracks"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner()

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner()

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner, _ := newTestRunner()

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			runner, output := newTestRunner()

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("writeStatus includes message", func(t *testing.T) {
			runner, output := newTestRunner()

			if err := runner.writeStatus(false, "removed %d", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "removed 3") {
				t.Errorf("expected message in output, got %q", output.String())
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, name := range []string{"serve", "setup", "lastfm", "tui", "sessions"} {
			if !names[name] {
				t.Errorf("expected %q command to be registered", name)
			}
		}
	})

	t.Run("warnMissingCredentials", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*shared.Config)
			want   []string
		}{
			{"Nothing Configured", func(*shared.Config) {}, []string{"spotify", "lastfm"}},
			{"Spotify Only", func(c *shared.Config) {
				c.Credentials.Spotify.ClientID = "id"
				c.Credentials.Spotify.ClientSecret = "secret"
			}, []string{"lastfm"}},
			{"Everything", func(c *shared.Config) {
				c.Credentials.Spotify.ClientID = "id"
				c.Credentials.Spotify.ClientSecret = "secret"
				c.Credentials.LastFM.APIKey = "key"
			}, nil},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				logs := &bytes.Buffer{}
				cfg := shared.DefaultConfig()
				tc.mutate(cfg)
				runner := NewRunner(RunnerOpts{Config: cfg, Logger: shared.NewLogger(logs)})

				got := runner.warnMissingCredentials()
				if strings.Join(got, ",") != strings.Join(tc.want, ",") {
					t.Errorf("expected %v, got %v", tc.want, got)
				}
				if len(tc.want) > 0 && !strings.Contains(logs.String(), "WARN") {
					t.Errorf("expected a warning to be logged, got %q", logs.String())
				}
			})
		}
	})

	t.Run("openStore", func(t *testing.T) {
		t.Run("memory backend", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			store, release, err := runner.openStore()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer release()
			if _, ok := store.(*session.MemoryStore); !ok {
				t.Errorf("expected *session.MemoryStore, got %T", store)
			}
		})

		t.Run("sqlite backend migrates database", func(t *testing.T) {
			cfg := shared.DefaultConfig()
			cfg.Session.Backend = shared.SessionBackendSQLite
			cfg.Database.Path = filepath.Join(t.TempDir(), "sessions.db")
			runner := NewRunner(RunnerOpts{Config: cfg, Logger: shared.NewLogger(&bytes.Buffer{})})

			store, release, err := runner.openStore()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer release()

			repo, ok := store.(*repositories.SessionRepository)
			if !ok {
				t.Fatalf("expected *repositories.SessionRepository, got %T", store)
			}
			if _, err := repo.Count(context.Background()); err != nil {
				t.Errorf("expected sessions table to exist, got %v", err)
			}
		})

		t.Run("unknown backend", func(t *testing.T) {
			cfg := shared.DefaultConfig()
			cfg.Session.Backend = "redis"
			runner := NewRunner(RunnerOpts{Config: cfg})

			if _, _, err := runner.openStore(); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("buildStack", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.LastFM.PlaceholderImage = "https://example.com/blank.png"
		runner := NewRunner(RunnerOpts{Config: cfg})

		s := runner.buildStack()
		if s.deezer == nil || s.lastfm == nil || s.spotify == nil || s.stats == nil || s.tracks == nil {
			t.Fatalf("expected every component to be built, got %+v", s)
		}
		if s.normalizer.Placeholder() != "https://example.com/blank.png" {
			t.Errorf("expected configured placeholder, got %q", s.normalizer.Placeholder())
		}
		if s.lastfm.Configured() || s.spotify.Configured() {
			t.Error("expected services without credentials to report unconfigured")
		}
	})
}

func TestBefore(t *testing.T) {
	t.Run("loads config from flag", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Server.Port = 7070 })
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Server.Port != 7070 {
			t.Errorf("expected port 7070, got %d", runner.config.Server.Port)
		}
		if runner.configPath != path {
			t.Errorf("expected configPath %q, got %q", path, runner.configPath)
		}
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		unsetEnv(t)
		runner, _ := newTestRunner()

		if err := run(runner, "--config", filepath.Join(t.TempDir(), "nope.toml"), "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Server.Port != shared.DefaultConfig().Server.Port {
			t.Errorf("expected default port, got %d", runner.config.Server.Port)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		unsetEnv(t)
		t.Setenv("LASTFM_API_KEY", "from-env")
		path := writeConfig(t, func(c *shared.Config) { c.Credentials.LastFM.APIKey = "from-file" })
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Credentials.LastFM.APIKey != "from-env" {
			t.Errorf("expected env key, got %q", runner.config.Credentials.LastFM.APIKey)
		}
	})

	t.Run("invalid config fails", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Session.Backend = "redis" })
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "setup"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("debug flag lowers log level", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, nil)
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "--debug", "setup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
		}
	})
}

func TestLastFMStats(t *testing.T) {
	setup := func(t *testing.T, apiKey string) (*tu.Upstream, string) {
		t.Helper()
		unsetEnv(t)
		lastfm := tu.NewLastFMUpstream(t)
		deezer := tu.NewUpstream(t)
		deezer.JSON("/search", http.StatusOK, map[string]any{
			"data": []any{map[string]any{"album": map[string]any{"cover_medium": "https://deezer/cover.jpg"}}},
		})
		path := writeConfig(t, func(c *shared.Config) {
			c.Credentials.LastFM.APIKey = apiKey
			c.Endpoints.LastFMAPIURL = lastfm.URL
			c.Endpoints.DeezerAPIURL = deezer.URL
		})
		return lastfm, path
	}

	t.Run("prints JSON stats", func(t *testing.T) {
		up, path := setup(t, "key")
		up.Raw("user.getinfo", http.StatusOK, userInfoBody)
		up.Raw("user.gettoptracks", http.StatusOK, topTracksBody)
		runner, output := newTestRunner()

		if err := run(runner, "--config", path, "lastfm", "stats", "--format", "json", "rj"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var stats models.Stats
		if err := json.Unmarshal(output.Bytes(), &stats); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if stats.User.Name != "rj" {
			t.Errorf("expected user rj, got %q", stats.User.Name)
		}
		if len(stats.TopTracks) != 1 || stats.TopTracks[0].ImageURL != "https://deezer/cover.jpg" {
			t.Errorf("expected resolved top track artwork, got %+v", stats.TopTracks)
		}
		if stats.TopArtists == nil || stats.RecentTracks == nil {
			t.Error("expected failed sections to decode as empty lists")
		}
	})

	t.Run("exports markdown to file", func(t *testing.T) {
		up, path := setup(t, "key")
		up.Raw("user.getinfo", http.StatusOK, userInfoBody)
		runner, output := newTestRunner()
		dest := filepath.Join(t.TempDir(), "rj.md")

		if err := run(runner, "--config", path, "lastfm", "stats", "-f", "md", "-o", dest, "rj"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, dest)
		if content := tu.MustReadFile(t, dest); !strings.HasPrefix(content, "# rj") {
			t.Errorf("expected markdown heading, got %q", content)
		}
		if !strings.Contains(output.String(), dest) {
			t.Errorf("expected confirmation naming %s, got %q", dest, output.String())
		}
	})

	t.Run("missing username makes no request", func(t *testing.T) {
		up, path := setup(t, "key")
		runner, _ := newTestRunner()

		err := run(runner, "--config", path, "lastfm", "stats")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if up.Total() != 0 {
			t.Errorf("expected no outbound calls, got %d", up.Total())
		}
	})

	t.Run("unknown format makes no request", func(t *testing.T) {
		up, path := setup(t, "key")
		runner, _ := newTestRunner()

		err := run(runner, "--config", path, "lastfm", "stats", "--format", "xml", "rj")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if up.Total() != 0 {
			t.Errorf("expected no outbound calls, got %d", up.Total())
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		up, path := setup(t, "")
		runner, _ := newTestRunner()

		err := run(runner, "--config", path, "lastfm", "stats", "rj")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if up.Total() != 0 {
			t.Errorf("expected no outbound calls, got %d", up.Total())
		}
	})
}

func TestTUI(t *testing.T) {
	t.Run("requires username", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Credentials.LastFM.APIKey = "key" })
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "tui"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("requires api key", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, nil)
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "tui", "rj"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config writes example file", func(t *testing.T) {
		unsetEnv(t)
		dest := filepath.Join(t.TempDir(), "config.toml")
		runner, _ := newTestRunner()

		if err := run(runner, "--config", dest, "setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, dest)
		if _, err := shared.LoadConfig(dest); err != nil {
			t.Errorf("expected written config to parse, got %v", err)
		}
	})

	t.Run("config refuses to overwrite", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, nil)
		before := tu.MustReadFile(t, path)
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "setup", "config"); err == nil {
			t.Fatal("expected error for existing file")
		}
		if tu.MustReadFile(t, path) != before {
			t.Error("expected existing config to be untouched")
		}
	})

	t.Run("database then rollback", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Session.Backend = shared.SessionBackendSQLite })
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, runner.config.Database.Path)

		if err := run(runner, "--config", path, "setup", "rollback"); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}
	})
}

func TestSessions(t *testing.T) {
	seed := func(t *testing.T, dbPath string, n int) {
		t.Helper()
		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if _, err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		repo := repositories.NewSessionRepository(db)
		for range n {
			s := session.New()
			s.ScrobbleUsername = "rj"
			if err := repo.Save(context.Background(), s); err != nil {
				t.Fatalf("failed to save session: %v", err)
			}
		}
	}

	t.Run("count reports stored sessions as JSON", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Session.Backend = shared.SessionBackendSQLite })
		cfg, _ := shared.LoadConfig(path)
		seed(t, cfg.Database.Path, 2)
		runner, output := newTestRunner()

		if err := run(runner, "--config", path, "sessions", "count", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got SessionCount
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("expected JSON output, got %q", output.String())
		}
		if got.Count != 2 || got.Backend != shared.SessionBackendSQLite {
			t.Errorf("expected 2 sqlite sessions, got %+v", got)
		}
	})

	t.Run("prune keeps recent sessions", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Session.Backend = shared.SessionBackendSQLite })
		cfg, _ := shared.LoadConfig(path)
		seed(t, cfg.Database.Path, 1)
		runner, output := newTestRunner()

		if err := run(runner, "--config", path, "sessions", "prune", "--older-than", "1h"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "removed 0") {
			t.Errorf("expected nothing pruned, got %q", output.String())
		}
	})

	t.Run("prune rejects non-positive window", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, func(c *shared.Config) { c.Session.Backend = shared.SessionBackendSQLite })
		runner, _ := newTestRunner()

		err := run(runner, "--config", path, "sessions", "prune", "--older-than", "0s")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("memory backend is rejected", func(t *testing.T) {
		unsetEnv(t)
		path := writeConfig(t, nil)
		runner, _ := newTestRunner()

		if err := run(runner, "--config", path, "sessions", "count"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestAppURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 5000, "http://localhost:5000/"},
		{"", 8080, "http://localhost:8080/"},
		{"::", 5000, "http://localhost:5000/"},
		{"127.0.0.1", 5000, "http://127.0.0.1:5000/"},
		{"snake.local", 80, "http://snake.local:80/"},
	}

	for _, tc := range tests {
		got := appURL(shared.ServerConfig{Host: tc.host, Port: tc.port})
		if got != tc.want {
			t.Errorf("%q:%d: expected %q, got %q", tc.host, tc.port, tc.want, got)
		}
	}
}

func TestPruneCutoff(t *testing.T) {
	cfg := shared.DefaultConfig()
	cfg.Session.Backend = shared.SessionBackendSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "sessions.db")
	runner := NewRunner(RunnerOpts{Config: cfg, Logger: shared.NewLogger(&bytes.Buffer{}), Output: &bytes.Buffer{}})

	repo, release, err := runner.sessionRepository()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer release()

	ctx := context.Background()
	s := session.New()
	s.ScrobbleUsername = "rj"
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	removed, err := repo.Prune(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 session removed, got %d", removed)
	}
}
