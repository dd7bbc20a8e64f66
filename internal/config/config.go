// Package config loads engine configuration from YAML with defaults for
// every field. Thresholds live here, not as hardcoded constants, so one
// queue instance is constructed with injected configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mhalvorsen/vouchsafe/internal/intent"
)

// EngineConfig holds queue and sweeper parameters.
type EngineConfig struct {
	MaxDefers     int           `yaml:"max_defers"`
	MaxPendingAge time.Duration `yaml:"max_pending_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// StoreConfig holds seal store paths.
type StoreConfig struct {
	DBPath      string `yaml:"db_path"`
	JournalPath string `yaml:"journal_path"`
	RecentCap   int    `yaml:"recent_cap"`
}

// ServerConfig holds the HTTP listener parameters.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// InboxConfig holds the proposal drop-directory parameters.
type InboxConfig struct {
	Drop         string        `yaml:"drop"`
	State        string        `yaml:"state"`
	PollMode     bool          `yaml:"poll_mode"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Config is the full process configuration.
type Config struct {
	Engine EngineConfig  `yaml:"engine"`
	Intent intent.Config `yaml:"intent"`
	Store  StoreConfig   `yaml:"store"`
	Server ServerConfig  `yaml:"server"`
	Inbox  InboxConfig   `yaml:"inbox"`
}

// DefaultDir returns the default vouchsafe home directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vouchsafe")
	}
	return filepath.Join(home, ".vouchsafe")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultDir()
	return &Config{
		Engine: EngineConfig{
			MaxDefers:     3,
			MaxPendingAge: 5 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
		Intent: intent.DefaultConfig(),
		Store: StoreConfig{
			DBPath:      filepath.Join(dir, "seals.db"),
			JournalPath: filepath.Join(dir, "journal.jsonl"),
			RecentCap:   100,
		},
		Server: ServerConfig{
			Port: 8474,
		},
		Inbox: InboxConfig{
			Drop:         filepath.Join(dir, "inbox"),
			State:        filepath.Join(dir, "state"),
			PollInterval: 5 * time.Second,
		},
	}
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.vouchsafe/config.yaml. Missing file returns defaults; YAML
// overwrites only the fields it specifies. Invalid YAML is an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 of the raw
// YAML bytes on disk. When no file exists, the hash covers empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = filepath.Join(DefaultDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, hash, nil
}
