// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel    string   `mapstructure:"LOG_LEVEL"`
	DBURL       string   `mapstructure:"DB_URL"`
	GithubToken string   `mapstructure:"GITHUB_TOKEN"`
	GithubAPI   string   `mapstructure:"GITHUB_API_URL"`
	ReposToSync []string `mapstructure:"REPOS_TO_SYNC"`

	SyncInterval    time.Duration `mapstructure:"SYNC_INTERVAL"`
	CommitBatchSize int           `mapstructure:"COMMIT_BATCH_SIZE"`
	IssueBatchSize  int           `mapstructure:"ISSUE_BATCH_SIZE"`
	ForwardPerPage  int           `mapstructure:"FORWARD_PER_PAGE"`
	MaxComments     int           `mapstructure:"MAX_COMMENTS"`

	MaxRetries        int           `mapstructure:"MAX_RETRIES"`
	RetryDelay        time.Duration `mapstructure:"RETRY_DELAY"`
	RateLimitDelay    time.Duration `mapstructure:"RATE_LIMIT_DELAY"`
	RequestsPerSecond float64       `mapstructure:"REQUESTS_PER_SECOND"`

	RedisURL string        `mapstructure:"REDIS_URL"`
	LockTTL  time.Duration `mapstructure:"LOCK_TTL"`

	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
}

var defaults = map[string]any{
	"LOG_LEVEL":           "info",
	"DB_URL":              "",
	"GITHUB_TOKEN":        "",
	"GITHUB_API_URL":      "",
	"REPOS_TO_SYNC":       []string{},
	"SYNC_INTERVAL":       "15m",
	"COMMIT_BATCH_SIZE":   20,
	"ISSUE_BATCH_SIZE":    20,
	"FORWARD_PER_PAGE":    20,
	"MAX_COMMENTS":        10,
	"MAX_RETRIES":         3,
	"RETRY_DELAY":         "5s",
	"RATE_LIMIT_DELAY":    "60s",
	"REQUESTS_PER_SECOND": 1.3,
	"REDIS_URL":           "",
	"LOCK_TTL":            "10m",
	"HTTP_ADDR":           ":8080",
	"METRICS_ENABLED":     true,
}

// LoadConfig reads configuration from an optional .env file in dir and from
// environment variables, which take precedence.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	// Every key needs a default so that Unmarshal picks up its environment variable.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ReposToSync = splitRepos(cfg.ReposToSync)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and the bounds the sync engine depends on.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.GithubToken == "" {
		return errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if c.CommitBatchSize < 2 {
		return errors.New("COMMIT_BATCH_SIZE must be at least 2")
	}
	if c.IssueBatchSize < 1 || c.ForwardPerPage < 1 {
		return errors.New("ISSUE_BATCH_SIZE and FORWARD_PER_PAGE must be positive")
	}
	if c.MaxComments < 0 {
		return errors.New("MAX_COMMENTS must not be negative")
	}
	if c.MaxRetries < 1 {
		return errors.New("MAX_RETRIES must be at least 1")
	}
	if c.SyncInterval <= 0 || c.LockTTL <= 0 {
		return errors.New("SYNC_INTERVAL and LOCK_TTL must be positive")
	}
	// A rate limit wait must not outlive the repository lease.
	if c.RateLimitDelay >= c.LockTTL {
		return errors.New("RATE_LIMIT_DELAY must be shorter than LOCK_TTL")
	}
	return nil
}

// splitRepos accepts both list values and a single comma separated string.
func splitRepos(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, r := range strings.Split(entry, ",") {
			if r = strings.TrimSpace(r); r != "" {
				out = append(out, r)
			}
		}
	}
	return out
}
