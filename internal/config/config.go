// ABOUTME: Centralized configuration for the catmatch CLI and MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harper/catmatch/internal/core"
	"github.com/harper/catmatch/internal/models"
	"github.com/harper/catmatch/internal/storage/sqlite"
)

// Config holds all configuration for catmatch
type Config struct {
	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey      string
	OpenAIBaseURL  string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RateLimitDelay time.Duration

	// Matcher settings
	WeightTitle       float64
	WeightType        float64
	WeightDescription float64
	TopK              int
	Workers           int
	RequestsPerSecond float64

	// Dashboard cutoffs in percent
	ThresholdMatch float64
	ThresholdBest  float64
	ThresholdExact float64

	// Local storage and logging
	CachePath string
	LogLevel  string
	LogFile   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		CharmHost:         getEnv("CHARM_HOST", "charm.2389.dev"),
		CharmDBName:       getEnv("CHARM_DB", "catmatch"),
		AutoSync:          getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		EmbeddingModel:    getEnv("CATMATCH_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 5),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		RateLimitDelay:    getEnvDuration("CATMATCH_RATE_LIMIT_DELAY", core.DefaultRateLimitDelay),
		WeightTitle:       getEnvFloat("CATMATCH_WEIGHT_TITLE", 0.5),
		WeightType:        getEnvFloat("CATMATCH_WEIGHT_TYPE", 0.3),
		WeightDescription: getEnvFloat("CATMATCH_WEIGHT_DESCRIPTION", 0.2),
		TopK:              getEnvInt("CATMATCH_TOP_K", core.DefaultTopK),
		Workers:           getEnvInt("CATMATCH_WORKERS", 4),
		RequestsPerSecond: getEnvFloat("CATMATCH_REQUESTS_PER_SECOND", 0),
		ThresholdMatch:    getEnvFloat("CATMATCH_THRESHOLD_MATCH", models.DefaultMatchThreshold),
		ThresholdBest:     getEnvFloat("CATMATCH_THRESHOLD_BEST", models.DefaultBestThreshold),
		ThresholdExact:    getEnvFloat("CATMATCH_THRESHOLD_EXACT", models.DefaultExactThreshold),
		CachePath:         getEnv("CATMATCH_CACHE_PATH", sqlite.DefaultDBPath()),
		LogLevel:          getEnv("CATMATCH_LOG_LEVEL", "info"),
		LogFile:           os.Getenv("CATMATCH_LOG_FILE"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings that would make a run meaningless before any network call
func (c *Config) Validate() error {
	if err := c.Weights().Validate(); err != nil {
		return err
	}
	if err := c.MatchOptions().Validate(); err != nil {
		return err
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("%w: OPENAI_MAX_RETRIES must be 0-10, got %d", models.ErrConfiguration, c.MaxRetries)
	}
	if c.Workers > 64 {
		return fmt.Errorf("%w: CATMATCH_WORKERS must be 1-64, got %d", models.ErrConfiguration, c.Workers)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: CATMATCH_REQUESTS_PER_SECOND must not be negative, got %f", models.ErrConfiguration, c.RequestsPerSecond)
	}
	if c.RetryDelay < 0 || c.RateLimitDelay < 0 {
		return fmt.Errorf("%w: retry delays must not be negative", models.ErrConfiguration)
	}
	return nil
}

// Weights returns the field weights for the combiner
func (c *Config) Weights() core.Weights {
	return core.Weights{Title: c.WeightTitle, Type: c.WeightType, Description: c.WeightDescription}
}

// MatchOptions returns batch matcher options
func (c *Config) MatchOptions() core.MatchOptions {
	return core.MatchOptions{TopK: c.TopK, Workers: c.Workers}
}

// Thresholds returns the dashboard cutoffs
func (c *Config) Thresholds() models.Thresholds {
	return models.Thresholds{Match: c.ThresholdMatch, Best: c.ThresholdBest, Exact: c.ThresholdExact}
}

// RetryPolicy returns the provider retry settings
func (c *Config) RetryPolicy() core.RetryPolicy {
	return core.RetryPolicy{MaxRetries: c.MaxRetries, BaseDelay: c.RetryDelay, RateLimitDelay: c.RateLimitDelay}
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
