// ABOUTME: Charm KV client wrapper for sharing match reports across machines
// ABOUTME: Publishes and fetches frozen reports with automatic SSH key auth
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/charm/kv"
	"github.com/harper/catmatch/internal/models"
)

// Key prefixes for different entity types
const (
	ReportPrefix = "report:"
	MetaPrefix   = "report-meta:"
)

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// DefaultConfig returns default configuration for charm client
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "charm.2389.dev"
	}
	return &Config{
		Host:     host,
		DBName:   "catmatch",
		AutoSync: true,
	}
}

// Store is the subset of charm KV the client needs
type Store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Client wraps charm KV for report storage
type Client struct {
	kv     Store
	config *Config
	mu     sync.Mutex
}

// ReportMeta describes a published report
type ReportMeta struct {
	Name        string    `json:"name" yaml:"name"`
	RunID       string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Sources     int       `json:"sources" yaml:"sources"`
	Matches     int       `json:"matches" yaml:"matches"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

// NewClient opens the charm KV database named in cfg
func NewClient(cfg *Config) (*Client, error) {
	// Set CHARM_HOST before opening KV
	os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := NewClientWithStore(db, cfg)

	// Pull remote data on startup
	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// NewClientWithStore wraps an already opened store
func NewClientWithStore(store Store, cfg *Config) *Client {
	return &Client{kv: store, config: cfg}
}

// Close closes the KV database
func (c *Client) Close() error {
	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

// syncIfEnabled syncs to cloud after writes
func (c *Client) syncIfEnabled() {
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
}

// Set stores a value with the given key
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// Get retrieves a value by key
func (c *Client) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.kv.Get([]byte(key))
}

// Delete removes a key
func (c *Client) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// SetJSON marshals and stores a value as JSON
func (c *Client) SetJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(key, data)
}

// GetJSON retrieves and unmarshals a JSON value
func (c *Client) GetJSON(key string, dest interface{}) error {
	data, err := c.Get(key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: key %s", models.ErrNotFound, key)
	}
	return json.Unmarshal(data, dest)
}

// ListKeys returns all keys with the given prefix, sorted
func (c *Client) ListKeys(prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var result []string
	for _, key := range keys {
		keyStr := string(key)
		if strings.HasPrefix(keyStr, prefix) {
			result = append(result, keyStr)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Sync manually triggers a sync with the cloud
func (c *Client) Sync() error {
	return c.kv.Sync()
}

// PublishReport stores a report under name along with its metadata
func (c *Client) PublishReport(name, runID string, report *models.MatchReport) (*ReportMeta, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: report name", models.ErrMissingField)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to publish invalid report: %w", err)
	}

	meta := &ReportMeta{
		Name:        name,
		RunID:       runID,
		Sources:     len(report.WeightedMatches),
		PublishedAt: time.Now().UTC(),
	}
	for _, entry := range report.WeightedMatches {
		meta.Matches += len(entry.Matches)
	}

	if err := c.SetJSON(ReportKey(name), report); err != nil {
		return nil, err
	}
	if err := c.SetJSON(MetaKey(name), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// FetchReport loads a published report by name
func (c *Client) FetchReport(name string) (*models.MatchReport, error) {
	exists, err := c.has(ReportKey(name))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: report %q", models.ErrNotFound, name)
	}

	data, err := c.Get(ReportKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", name, err)
	}
	return models.ParseReport(data)
}

// ListReports returns metadata for every published report, sorted by name
func (c *Client) ListReports() ([]ReportMeta, error) {
	keys, err := c.ListKeys(MetaPrefix)
	if err != nil {
		return nil, err
	}

	metas := make([]ReportMeta, 0, len(keys))
	for _, key := range keys {
		var meta ReportMeta
		if err := c.GetJSON(key, &meta); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// DeleteReport removes a published report and its metadata
func (c *Client) DeleteReport(name string) error {
	exists, err := c.has(ReportKey(name))
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: report %q", models.ErrNotFound, name)
	}
	if err := c.Delete(ReportKey(name)); err != nil {
		return err
	}
	return c.Delete(MetaKey(name))
}

func (c *Client) has(key string) (bool, error) {
	keys, err := c.ListKeys(key)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

// ReportKey generates a key for a report body
func ReportKey(name string) string {
	return ReportPrefix + name
}

// MetaKey generates a key for report metadata
func MetaKey(name string) string {
	return MetaPrefix + name
}
