package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coverfetch/internal/shared"
)

const (
	DefaultParallelism = 4
	DefaultMaxRetries  = shared.DefaultMaxRetries
)

// Configuration structure
type Config struct {
	UserAgent             string `json:"UserAgent"`
	Parallelism           int    `json:"Parallelism"`
	MaxRetryAttempts      int    `json:"MaxRetryAttempts"`
	RequestTimeoutSeconds int    `json:"RequestTimeoutSeconds"`
	InitialRetryDelayMs   int    `json:"InitialRetryDelayMs"`
	MaxRetryDelayMs       int    `json:"MaxRetryDelayMs"`
	MusicBrainzDelayMs    int    `json:"MusicBrainzDelayMs"` // min interval between MusicBrainz requests
	MinImageBytes         int    `json:"MinImageBytes"`      // floor for iTunes artwork
	MinArchiveImageBytes  int    `json:"MinArchiveImageBytes"`
	MaxEmbedArtSize       int    `json:"MaxEmbedArtSize"` // downscale embedded art to this many pixels, 0 disables
}

// GetDefaultConfig returns the built-in defaults.
func GetDefaultConfig() *Config {
	return &Config{
		UserAgent:             shared.UserAgent,
		Parallelism:           DefaultParallelism,
		MaxRetryAttempts:      DefaultMaxRetries,
		RequestTimeoutSeconds: 12,
		InitialRetryDelayMs:   500,
		MaxRetryDelayMs:       5000,
		MusicBrainzDelayMs:    1000,
		MinImageBytes:         25000,
		MinArchiveImageBytes:  20000,
		MaxEmbedArtSize:       0,
	}
}

// ApplyDefaults fills empty fields with the built-in defaults.
func (cfg *Config) ApplyDefaults() {
	defaults := GetDefaultConfig()

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaults.Parallelism
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = defaults.MaxRetryAttempts
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if cfg.InitialRetryDelayMs <= 0 {
		cfg.InitialRetryDelayMs = defaults.InitialRetryDelayMs
	}
	if cfg.MaxRetryDelayMs <= 0 {
		cfg.MaxRetryDelayMs = defaults.MaxRetryDelayMs
	}
	if cfg.MusicBrainzDelayMs <= 0 {
		cfg.MusicBrainzDelayMs = defaults.MusicBrainzDelayMs
	}
	if cfg.MinImageBytes <= 0 {
		cfg.MinImageBytes = defaults.MinImageBytes
	}
	if cfg.MinArchiveImageBytes <= 0 {
		cfg.MinArchiveImageBytes = defaults.MinArchiveImageBytes
	}
}

// RequestTimeout returns the per-request timeout as a duration.
func (cfg *Config) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
}

// InitialRetryDelay returns the first backoff delay as a duration.
func (cfg *Config) InitialRetryDelay() time.Duration {
	return time.Duration(cfg.InitialRetryDelayMs) * time.Millisecond
}

// MaxRetryDelay returns the backoff cap as a duration.
func (cfg *Config) MaxRetryDelay() time.Duration {
	return time.Duration(cfg.MaxRetryDelayMs) * time.Millisecond
}

// MusicBrainzDelay returns the MusicBrainz request interval as a duration.
func (cfg *Config) MusicBrainzDelay() time.Duration {
	return time.Duration(cfg.MusicBrainzDelayMs) * time.Millisecond
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
