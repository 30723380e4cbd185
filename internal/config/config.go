// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultRequestTimeout            = 15 * time.Second
	defaultDatabasePath              = "./data/setlist.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultDatabaseEnableWAL         = true
	defaultMigrationsPath            = "file://./migrations"
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultSourcesRateLimit          = 10.0
	defaultSourcesBurst              = 5
	defaultSourcesTimeout            = 10 * time.Second
	defaultBreakerMaxRequests        = 3
	defaultBreakerInterval           = 60 * time.Second
	defaultBreakerOpenTimeout        = 30 * time.Second
	defaultBreakerFailureThreshold   = 5
	defaultSpotifyBatchSize          = 50
	defaultPageSize                  = 50
	defaultMaxPageSize               = 200
	envPrefix                        = "SETLIST"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Sources   SourcesConfig
	Playlists PlaylistsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	EnableWAL         bool
	MigrationsPath    string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// SourcesConfig holds settings shared by all media sources plus per-source credentials
type SourcesConfig struct {
	// RateLimit is the sustained number of lookups per second allowed against one source
	RateLimit float64
	Burst     int
	Timeout   time.Duration
	Breaker   BreakerConfig
	Spotify   SpotifyConfig
}

// BreakerConfig configures the circuit breaker placed in front of each source
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold uint32
}

// SpotifyConfig holds Spotify Web API client credentials.
// The source is only registered when both id and secret are set.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	BatchSize    int
}

// Enabled reports whether credentials are present
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// PlaylistsConfig holds item listing limits
type PlaylistsConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/setlist")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)
	v.SetDefault("server.requesttimeout", defaultRequestTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.enablewal", defaultDatabaseEnableWAL)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("sources.ratelimit", defaultSourcesRateLimit)
	v.SetDefault("sources.burst", defaultSourcesBurst)
	v.SetDefault("sources.timeout", defaultSourcesTimeout)
	v.SetDefault("sources.breaker.maxrequests", defaultBreakerMaxRequests)
	v.SetDefault("sources.breaker.interval", defaultBreakerInterval)
	v.SetDefault("sources.breaker.opentimeout", defaultBreakerOpenTimeout)
	v.SetDefault("sources.breaker.failurethreshold", defaultBreakerFailureThreshold)
	v.SetDefault("sources.spotify.clientid", "")
	v.SetDefault("sources.spotify.clientsecret", "")
	v.SetDefault("sources.spotify.batchsize", defaultSpotifyBatchSize)

	v.SetDefault("playlists.defaultpagesize", defaultPageSize)
	v.SetDefault("playlists.maxpagesize", defaultMaxPageSize)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout: %v (must be > 0)", c.Server.RequestTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}
	if c.Database.MigrationsPath == "" {
		return errors.New("database migrations path is required")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Sources.RateLimit <= 0 {
		return fmt.Errorf("invalid sources rate limit: %v (must be > 0)", c.Sources.RateLimit)
	}
	if c.Sources.Burst < 1 {
		return fmt.Errorf("invalid sources burst: %d (must be >= 1)", c.Sources.Burst)
	}
	if c.Sources.Timeout <= 0 {
		return fmt.Errorf("invalid sources timeout: %v (must be > 0)", c.Sources.Timeout)
	}
	if c.Sources.Breaker.FailureThreshold == 0 {
		return errors.New("invalid breaker failure threshold: must be > 0")
	}
	if (c.Sources.Spotify.ClientID == "") != (c.Sources.Spotify.ClientSecret == "") {
		return errors.New("spotify client id and secret must be set together")
	}
	if c.Sources.Spotify.BatchSize < 1 || c.Sources.Spotify.BatchSize > 50 {
		return fmt.Errorf("invalid spotify batch size: %d (must be between 1 and 50)", c.Sources.Spotify.BatchSize)
	}

	if c.Playlists.DefaultPageSize < 1 {
		return fmt.Errorf("invalid default page size: %d (must be >= 1)", c.Playlists.DefaultPageSize)
	}
	if c.Playlists.MaxPageSize < c.Playlists.DefaultPageSize {
		return fmt.Errorf("invalid max page size: %d (must be >= default page size %d)", c.Playlists.MaxPageSize, c.Playlists.DefaultPageSize)
	}

	return nil
}
