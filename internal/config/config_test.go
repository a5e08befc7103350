// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/catmatch/internal/models"
	"github.com/harper/catmatch/internal/storage/sqlite"
)

var configKeys = []string{
	"CHARM_HOST", "CHARM_DB", "CHARM_AUTO_SYNC",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "CATMATCH_EMBEDDING_MODEL",
	"OPENAI_TIMEOUT", "OPENAI_MAX_RETRIES", "OPENAI_RETRY_DELAY", "CATMATCH_RATE_LIMIT_DELAY",
	"CATMATCH_WEIGHT_TITLE", "CATMATCH_WEIGHT_TYPE", "CATMATCH_WEIGHT_DESCRIPTION",
	"CATMATCH_TOP_K", "CATMATCH_WORKERS", "CATMATCH_REQUESTS_PER_SECOND",
	"CATMATCH_THRESHOLD_MATCH", "CATMATCH_THRESHOLD_BEST", "CATMATCH_THRESHOLD_EXACT",
	"CATMATCH_CACHE_PATH", "CATMATCH_LOG_LEVEL", "CATMATCH_LOG_FILE",
}

// clearConfigEnv blanks every key Load reads; empty values fall back to defaults
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.CharmHost != "charm.2389.dev" {
		t.Errorf("CharmHost = %s, want charm.2389.dev", cfg.CharmHost)
	}
	if cfg.CharmDBName != "catmatch" {
		t.Errorf("CharmDBName = %s, want catmatch", cfg.CharmDBName)
	}
	if !cfg.AutoSync {
		t.Error("AutoSync = false, want true")
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.RateLimitDelay != 30*time.Second {
		t.Errorf("RateLimitDelay = %v, want 30s", cfg.RateLimitDelay)
	}
	if w := cfg.Weights(); w.Title != 0.5 || w.Type != 0.3 || w.Description != 0.2 {
		t.Errorf("Weights() = %+v, want 0.5/0.3/0.2", w)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Thresholds() != models.DefaultThresholds() {
		t.Errorf("Thresholds() = %+v, want defaults", cfg.Thresholds())
	}
	if cfg.CachePath != filepath.Join("/tmp/xdg", "catmatch", "embeddings.db") {
		t.Errorf("CachePath = %s", cfg.CachePath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CHARM_HOST", "custom.charm.sh")
	t.Setenv("CHARM_DB", "test_db")
	t.Setenv("CHARM_AUTO_SYNC", "false")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("CATMATCH_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("OPENAI_TIMEOUT", "60s")
	t.Setenv("OPENAI_MAX_RETRIES", "2")
	t.Setenv("OPENAI_RETRY_DELAY", "3s")
	t.Setenv("CATMATCH_RATE_LIMIT_DELAY", "45s")
	t.Setenv("CATMATCH_WEIGHT_TITLE", "0.6")
	t.Setenv("CATMATCH_WEIGHT_TYPE", "0.3")
	t.Setenv("CATMATCH_WEIGHT_DESCRIPTION", "0.1")
	t.Setenv("CATMATCH_TOP_K", "5")
	t.Setenv("CATMATCH_WORKERS", "8")
	t.Setenv("CATMATCH_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("CATMATCH_THRESHOLD_MATCH", "60")
	t.Setenv("CATMATCH_CACHE_PATH", "/tmp/cache.db")
	t.Setenv("CATMATCH_LOG_LEVEL", "debug")
	t.Setenv("CATMATCH_LOG_FILE", "/tmp/catmatch.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.CharmHost != "custom.charm.sh" {
		t.Errorf("CharmHost = %s, want custom.charm.sh", cfg.CharmHost)
	}
	if cfg.CharmDBName != "test_db" {
		t.Errorf("CharmDBName = %s, want test_db", cfg.CharmDBName)
	}
	if cfg.AutoSync {
		t.Error("AutoSync = true, want false")
	}
	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.OpenAIBaseURL != "http://localhost:8080/v1" {
		t.Errorf("OpenAIBaseURL = %s", cfg.OpenAIBaseURL)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-large", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if p := cfg.RetryPolicy(); p.MaxRetries != 2 || p.BaseDelay != 3*time.Second || p.RateLimitDelay != 45*time.Second {
		t.Errorf("RetryPolicy() = %+v", p)
	}
	if w := cfg.Weights(); w.Title != 0.6 || w.Description != 0.1 {
		t.Errorf("Weights() = %+v", w)
	}
	if o := cfg.MatchOptions(); o.TopK != 5 || o.Workers != 8 {
		t.Errorf("MatchOptions() = %+v", o)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %f, want 2.5", cfg.RequestsPerSecond)
	}
	if cfg.ThresholdMatch != 60 {
		t.Errorf("ThresholdMatch = %f, want 60", cfg.ThresholdMatch)
	}
	if cfg.CachePath != "/tmp/cache.db" {
		t.Errorf("CachePath = %s", cfg.CachePath)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != "/tmp/catmatch.log" {
		t.Errorf("logging = %s %s", cfg.LogLevel, cfg.LogFile)
	}
}

func TestLoad_InvalidValueFallsBackToDefault(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CATMATCH_TOP_K", "three")
	t.Setenv("OPENAI_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want default 3", cfg.TopK)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", cfg.Timeout)
	}
}

func validConfig() *Config {
	return &Config{
		WeightTitle: 0.5, WeightType: 0.3, WeightDescription: 0.2,
		TopK: 3, Workers: 4, MaxRetries: 5,
		ThresholdMatch: 70, ThresholdBest: 90, ThresholdExact: 95,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"weights do not sum to one", func(c *Config) { c.WeightTitle = 0.6 }},
		{"negative weight", func(c *Config) { c.WeightTitle, c.WeightType = 1.1, -0.3 }},
		{"zero top k", func(c *Config) { c.TopK = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"too many workers", func(c *Config) { c.Workers = 65 }},
		{"retries above 10", func(c *Config) { c.MaxRetries = 15 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"negative rps", func(c *Config) { c.RequestsPerSecond = -1 }},
		{"threshold above 100", func(c *Config) { c.ThresholdExact = 101 }},
		{"thresholds out of order", func(c *Config) { c.ThresholdBest = 99 }},
		{"negative retry delay", func(c *Config) { c.RetryDelay = -time.Second }},
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !errors.Is(err, models.ErrConfiguration) {
				t.Errorf("Validate() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		defaultVal bool
		want       bool
	}{
		{"empty uses default true", "", true, true},
		{"empty uses default false", "", false, false},
		{"true", "true", false, true},
		{"1", "1", false, true},
		{"false", "false", true, false},
		{"0", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			got := getEnvBool("TEST_BOOL", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCachePathWithoutXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("CATMATCH_CACHE_PATH", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(home, ".local", "share", "catmatch", "embeddings.db")
	if cfg.CachePath != want {
		t.Errorf("CachePath = %s, want %s", cfg.CachePath, want)
	}
	if cfg.CachePath != sqlite.DefaultDBPath() {
		t.Errorf("CachePath = %s, want sqlite.DefaultDBPath() %s", cfg.CachePath, sqlite.DefaultDBPath())
	}
}
