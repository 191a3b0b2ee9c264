// Package config persists ghsync's workspaces and settings as a single
// JSON document under ~/.ghsync.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhubert/ghsync/internal/errors"
)

// DefaultWatchIntervalSeconds is how often `ghsync watch` polls when the
// config does not set an interval.
const DefaultWatchIntervalSeconds = 60

// Config holds the application configuration
type Config struct {
	Workspaces        []Workspace `json:"workspaces"`
	ActiveWorkspaceID string      `json:"active_workspace_id,omitempty"`

	NotificationsEnabled bool `json:"notifications_enabled,omitempty"` // Desktop notifications from watch mode
	WatchIntervalSeconds int  `json:"watch_interval_seconds,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ghsync"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path. Used by Load and by
// callers that keep their store somewhere other than ~/.ghsync.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		Workspaces: []Workspace{},
		filePath:   path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	cfg.ensureInitialized()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureInitialized ensures all slices are initialized (not nil).
//
// Thread-safety: NOT thread-safe; only call during single-threaded
// initialization before the Config is shared across goroutines.
func (c *Config) ensureInitialized() {
	if c.Workspaces == nil {
		c.Workspaces = []Workspace{}
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seenIDs := make(map[string]bool)
	for _, ws := range c.Workspaces {
		if ws.ID == "" {
			return errors.ConfigInvalid("workspace with empty ID found")
		}
		if seenIDs[ws.ID] {
			return errors.ConfigInvalid("duplicate workspace ID: " + ws.ID)
		}
		seenIDs[ws.ID] = true

		if ws.Path == "" {
			return errors.ConfigInvalid("workspace " + ws.ID + " has empty path")
		}
	}

	if c.WatchIntervalSeconds < 0 {
		return errors.ConfigInvalid("watch interval must not be negative")
	}

	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetActiveWorkspaceID returns the active workspace ID, or empty string if none
func (c *Config) GetActiveWorkspaceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ActiveWorkspaceID
}

// SetActiveWorkspaceID sets the active workspace ID. Pass empty string to clear.
func (c *Config) SetActiveWorkspaceID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ActiveWorkspaceID = id
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetWatchIntervalSeconds returns the watch poll interval, applying the default.
func (c *Config) GetWatchIntervalSeconds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.WatchIntervalSeconds <= 0 {
		return DefaultWatchIntervalSeconds
	}
	return c.WatchIntervalSeconds
}

// SetWatchIntervalSeconds sets the watch poll interval. Zero restores the default.
func (c *Config) SetWatchIntervalSeconds(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WatchIntervalSeconds = seconds
}
