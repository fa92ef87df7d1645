// Package config loads the TOML configuration file. Everything has a
// working default so the application runs with no file at all;
// operator-editable knobs like the auto-pause ceiling live in the
// settings table instead.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Webhook contains configuration for the outbox dispatcher.
type Webhook struct {
	Endpoint            string `toml:"endpoint"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxAttempts         int    `toml:"max_attempts"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	BatchSize           int    `toml:"batch_size"`
}

// Enabled reports whether an endpoint is configured. Without one the
// dispatcher never runs and events simply accumulate as pending.
func (w Webhook) Enabled() bool {
	return strings.TrimSpace(w.Endpoint) != ""
}

type Config struct {
	DatabasePath string  `toml:"database_path"`
	Webhook      Webhook `toml:"webhook"`
}

func Default() Config {
	return Config{
		Webhook: Webhook{
			PollIntervalSeconds: 15,
			MaxAttempts:         5,
			TimeoutSeconds:      10,
			BatchSize:           20,
		},
	}
}

// DefaultConfigPath returns ~/.config/consultorpro/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "consultorpro", "config.toml"), nil
}

// Load reads the config at path, falling back to defaults when the
// file does not exist. An empty path means the default location.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Webhook.PollIntervalSeconds <= 0 {
		return fmt.Errorf("webhook poll_interval_seconds must be positive, got %d", c.Webhook.PollIntervalSeconds)
	}
	if c.Webhook.MaxAttempts <= 0 {
		return fmt.Errorf("webhook max_attempts must be positive, got %d", c.Webhook.MaxAttempts)
	}
	if c.Webhook.TimeoutSeconds <= 0 {
		return fmt.Errorf("webhook timeout_seconds must be positive, got %d", c.Webhook.TimeoutSeconds)
	}
	if c.Webhook.BatchSize <= 0 {
		return fmt.Errorf("webhook batch_size must be positive, got %d", c.Webhook.BatchSize)
	}
	return nil
}

// CreateSample writes an annotated sample config, refusing to clobber
// an existing file.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
