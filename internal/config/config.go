// Package config loads runtime settings from SCOUT_* environment variables,
// after reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the service and CLI. Keys are
// SCOUT_ followed by the split field path, e.g. SCOUT_BACKEND_BASE_URL.
type Config struct {
	Port       string `default:"4000"`
	AdminToken string `split_words:"true"`
	Backend    BackendConfig
	Saved      SavedConfig
	Cache      CacheConfig
	CORS       CORSConfig
	Metrics    MetricsConfig
	Log        LogConfig
}

// BackendConfig controls how we talk to the scouting backend.
type BackendConfig struct {
	BaseURL     string        `split_words:"true" default:"http://localhost:5000/api"`
	Shape       string        `default:"profile"`
	Timeout     time.Duration `default:"10s"`
	MaxAttempts int           `split_words:"true" default:"1"`
	Backoff     time.Duration `default:"200ms"`
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit   float64 `split_words:"true" default:"0"`
	Burst       int     `default:"1"`
	Concurrency int     `default:"8"`
}

// SavedConfig selects where the saved set is persisted.
type SavedConfig struct {
	Driver string `default:"file"`
	Path   string `default:"data/saved"`
}

// CacheConfig controls warming and scheduled refresh of the collection.
type CacheConfig struct {
	WarmOnStart bool `split_words:"true" default:"true"`
	// RefreshSchedule is a cron expression; empty disables scheduled refresh.
	RefreshSchedule string `split_words:"true"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `split_words:"true" default:"*"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"text"`
}

// Load reads the given .env files (".env" when none are named), then the
// environment. Variables already set win over file values; missing files
// are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{envFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Backend.Shape = strings.ToLower(strings.TrimSpace(c.Backend.Shape))
	c.Saved.Driver = strings.ToLower(strings.TrimSpace(c.Saved.Driver))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Cache.RefreshSchedule = strings.TrimSpace(c.Cache.RefreshSchedule)
	origins := c.CORS.AllowedOrigins[:0]
	for _, o := range c.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.AllowedOrigins = origins
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	switch c.Backend.Shape {
	case ShapeProfile, ShapeArchetype:
	default:
		errs = append(errs, fmt.Errorf("backend shape %q must be %s or %s", c.Backend.Shape, ShapeProfile, ShapeArchetype))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend timeout must be positive"))
	}
	if c.Backend.MaxAttempts < 1 {
		errs = append(errs, errors.New("backend max attempts must be at least 1"))
	}
	if c.Backend.Backoff < 0 {
		errs = append(errs, errors.New("backend backoff must not be negative"))
	}
	if c.Backend.RateLimit < 0 {
		errs = append(errs, errors.New("backend rate limit must not be negative"))
	}
	if c.Backend.Burst < 1 {
		errs = append(errs, errors.New("backend burst must be at least 1"))
	}
	if c.Backend.Concurrency < 1 {
		errs = append(errs, errors.New("backend concurrency must be at least 1"))
	}
	switch c.Saved.Driver {
	case SavedDriverFile, SavedDriverSQLite, SavedDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("saved driver %q must be file, sqlite or memory", c.Saved.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
