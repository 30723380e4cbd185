package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			ReadTimeout:    defaultReadTimeout,
			WriteTimeout:   defaultWriteTimeout,
			RequestTimeout: defaultRequestTimeout,
		},
		Database: DatabaseConfig{
			Path:              "./data/setlist.db",
			ConnectionTimeout: defaultDatabaseConnectionTimeout,
			EnableWAL:         true,
			MigrationsPath:    defaultMigrationsPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
		Sources: SourcesConfig{
			RateLimit: defaultSourcesRateLimit,
			Burst:     defaultSourcesBurst,
			Timeout:   defaultSourcesTimeout,
			Breaker: BreakerConfig{
				MaxRequests:      defaultBreakerMaxRequests,
				Interval:         defaultBreakerInterval,
				OpenTimeout:      defaultBreakerOpenTimeout,
				FailureThreshold: defaultBreakerFailureThreshold,
			},
			Spotify: SpotifyConfig{BatchSize: defaultSpotifyBatchSize},
		},
		Playlists: PlaylistsConfig{
			DefaultPageSize: defaultPageSize,
			MaxPageSize:     defaultMaxPageSize,
		},
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != defaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Server.Host != defaultServerHost {
		t.Errorf("Server.Host = %s, want %s", cfg.Server.Host, defaultServerHost)
	}
	if cfg.Server.RequestTimeout != defaultRequestTimeout {
		t.Errorf("Server.RequestTimeout = %v, want %v", cfg.Server.RequestTimeout, defaultRequestTimeout)
	}

	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, defaultDatabasePath)
	}
	if cfg.Database.EnableWAL != defaultDatabaseEnableWAL {
		t.Errorf("Database.EnableWAL = %v, want %v", cfg.Database.EnableWAL, defaultDatabaseEnableWAL)
	}
	if cfg.Database.MigrationsPath != defaultMigrationsPath {
		t.Errorf("Database.MigrationsPath = %s, want %s", cfg.Database.MigrationsPath, defaultMigrationsPath)
	}

	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("Logging.Level = %s, want %s", cfg.Logging.Level, defaultLogLevel)
	}
	if cfg.Logging.Pretty != defaultLogPretty {
		t.Errorf("Logging.Pretty = %v, want %v", cfg.Logging.Pretty, defaultLogPretty)
	}

	if cfg.Sources.RateLimit != defaultSourcesRateLimit {
		t.Errorf("Sources.RateLimit = %v, want %v", cfg.Sources.RateLimit, defaultSourcesRateLimit)
	}
	if cfg.Sources.Burst != defaultSourcesBurst {
		t.Errorf("Sources.Burst = %d, want %d", cfg.Sources.Burst, defaultSourcesBurst)
	}
	if cfg.Sources.Breaker.FailureThreshold != defaultBreakerFailureThreshold {
		t.Errorf("Sources.Breaker.FailureThreshold = %d, want %d", cfg.Sources.Breaker.FailureThreshold, defaultBreakerFailureThreshold)
	}
	if cfg.Sources.Breaker.OpenTimeout != defaultBreakerOpenTimeout {
		t.Errorf("Sources.Breaker.OpenTimeout = %v, want %v", cfg.Sources.Breaker.OpenTimeout, defaultBreakerOpenTimeout)
	}
	if cfg.Sources.Spotify.Enabled() {
		t.Error("Sources.Spotify.Enabled() = true, want false without credentials")
	}
	if cfg.Sources.Spotify.BatchSize != defaultSpotifyBatchSize {
		t.Errorf("Sources.Spotify.BatchSize = %d, want %d", cfg.Sources.Spotify.BatchSize, defaultSpotifyBatchSize)
	}

	if cfg.Playlists.DefaultPageSize != defaultPageSize {
		t.Errorf("Playlists.DefaultPageSize = %d, want %d", cfg.Playlists.DefaultPageSize, defaultPageSize)
	}
	if cfg.Playlists.MaxPageSize != defaultMaxPageSize {
		t.Errorf("Playlists.MaxPageSize = %d, want %d", cfg.Playlists.MaxPageSize, defaultMaxPageSize)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid server port (too low)",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "invalid server port (too high)",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "invalid read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "invalid read timeout",
		},
		{
			name:    "invalid request timeout",
			mutate:  func(c *Config) { c.Server.RequestTimeout = -time.Second },
			wantErr: "invalid request timeout",
		},
		{
			name:    "missing migrations path",
			mutate:  func(c *Config) { c.Database.MigrationsPath = "" },
			wantErr: "migrations path",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid rate limit",
			mutate:  func(c *Config) { c.Sources.RateLimit = 0 },
			wantErr: "rate limit",
		},
		{
			name:    "invalid burst",
			mutate:  func(c *Config) { c.Sources.Burst = 0 },
			wantErr: "burst",
		},
		{
			name:    "breaker threshold zero",
			mutate:  func(c *Config) { c.Sources.Breaker.FailureThreshold = 0 },
			wantErr: "failure threshold",
		},
		{
			name:    "spotify secret without id",
			mutate:  func(c *Config) { c.Sources.Spotify.ClientSecret = "secret" },
			wantErr: "spotify client id and secret",
		},
		{
			name: "spotify credentials complete",
			mutate: func(c *Config) {
				c.Sources.Spotify.ClientID = "id"
				c.Sources.Spotify.ClientSecret = "secret"
			},
		},
		{
			name:    "spotify batch too large",
			mutate:  func(c *Config) { c.Sources.Spotify.BatchSize = 51 },
			wantErr: "spotify batch size",
		},
		{
			name:    "max page size below default",
			mutate:  func(c *Config) { c.Playlists.MaxPageSize = 10 },
			wantErr: "invalid max page size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigEnvVars(t *testing.T) {
	t.Setenv("SETLIST_SERVER_PORT", "9090")
	t.Setenv("SETLIST_LOGGING_LEVEL", "debug")
	t.Setenv("SETLIST_SOURCES_RATELIMIT", "2.5")
	t.Setenv("SETLIST_SOURCES_SPOTIFY_CLIENTID", "client")
	t.Setenv("SETLIST_SOURCES_SPOTIFY_CLIENTSECRET", "secret")
	t.Setenv("SETLIST_PLAYLISTS_DEFAULTPAGESIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Sources.RateLimit != 2.5 {
		t.Errorf("Sources.RateLimit = %v, want 2.5", cfg.Sources.RateLimit)
	}
	if !cfg.Sources.Spotify.Enabled() {
		t.Error("Sources.Spotify.Enabled() = false, want true")
	}
	if cfg.Playlists.DefaultPageSize != 25 {
		t.Errorf("Playlists.DefaultPageSize = %d, want 25", cfg.Playlists.DefaultPageSize)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "logging:\n  level: warn\nplaylists:\n  maxpagesize: 500\n"
	if err := os.WriteFile(dir+"/config.yaml", []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
	if cfg.Playlists.MaxPageSize != 500 {
		t.Errorf("Playlists.MaxPageSize = %d, want 500", cfg.Playlists.MaxPageSize)
	}
}
