package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Sink names accepted by SINK.
const (
	SinkJSONL    = "jsonl"
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
)

type Config struct {
	// StartURLs maps to START_URL, a comma separated list of movie pages.
	StartURLs []string `envconfig:"START_URL" default:"https://www.themoviedb.org/movie/671-harry-potter-and-the-philosopher-s-stone"`

	// DomainRoot resolves the relative actor links found on cast pages.
	DomainRoot string `envconfig:"DOMAIN_ROOT" default:"https://www.themoviedb.org"`

	// Sink selects where credits go: jsonl, postgres or sqlite.
	Sink        string `envconfig:"SINK" default:"jsonl"`
	Output      string `envconfig:"OUTPUT" default:"results.jsonl"`
	DatabaseURL string `envconfig:"DB_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"credits.db"`

	// RedisAddr enables the shared visited set when non-empty.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	VisitedTTL    time.Duration `envconfig:"VISITED_TTL" default:"24h"`

	// Workers maps to WORKERS. Default to 10 if not set.
	Workers       int           `envconfig:"WORKERS" default:"10"`
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"20"`
	FlushInterval time.Duration `envconfig:"FLUSH_INTERVAL" default:"2s"`

	// RateLimit is the minimum gap between requests to one host.
	RateLimit     time.Duration `envconfig:"RATE_LIMIT" default:"2s"`
	UserAgent     string        `envconfig:"USER_AGENT" default:"filmography-crawler/1.0"`
	RespectRobots bool          `envconfig:"RESPECT_ROBOTS" default:"true"`
	RenderJS      bool          `envconfig:"RENDER_JS" default:"false"`
	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxRetries    int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" default:"1s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// MetricsAddr starts the /metrics server when non-empty.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":2112"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// 1. Try to load .env file (if it exists)
	// In Docker/K8s there often is no .env file (vars are injected directly).
	if err := godotenv.Load(); err != nil {
		// Only log if the file actually exists but failed to load.
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	// 2. Process Environment Variables (System + Loaded from .env)
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings a crawl cannot start without.
func (c *Config) Validate() error {
	if len(c.StartURLs) == 0 {
		return fmt.Errorf("START_URL: at least one start url is required")
	}
	for _, raw := range c.StartURLs {
		if _, err := ParseHTTPURL(raw); err != nil {
			return fmt.Errorf("START_URL: %w", err)
		}
	}
	if _, err := ParseHTTPURL(c.DomainRoot); err != nil {
		return fmt.Errorf("DOMAIN_ROOT: %w", err)
	}

	switch c.Sink {
	case SinkJSONL:
		if c.Output == "" {
			return fmt.Errorf("OUTPUT is required for the %s sink", SinkJSONL)
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_URL is required for the %s sink", SinkPostgres)
		}
	case SinkSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s sink", SinkSQLite)
		}
	default:
		return fmt.Errorf("SINK: unknown sink %q", c.Sink)
	}

	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// ParseHTTPURL parses an absolute http or https URL with a host.
func ParseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u, nil
}
