// Package config holds app configuration: load order is defaults, then the
// optional YAML config file, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// Config is the full app configuration
type Config struct {
	// DataDir is where the local database and saved images live
	// Default: ~/.siyensya
	DataDir string `yaml:"data_dir"`

	// GradeLevel selects the audience tier for generated content
	// Default: junior_high
	GradeLevel types.GradeLevel `yaml:"grade_level"`

	// SessionTTLHours is how long a discovery session lives
	// Default: 24, Range: 1-168
	SessionTTLHours int `yaml:"session_ttl_hours"`

	// Model overrides the AI model; empty uses the built-in default
	Model string `yaml:"model"`

	// RemoteDSN is the connection string for the remote mirror; empty
	// disables mirroring entirely
	RemoteDSN string `yaml:"remote_dsn"`

	// UserID identifies this learner to the remote mirror
	UserID string `yaml:"user_id"`

	// Username is the display name on the leaderboard
	Username string `yaml:"username"`
}

// Default returns the default configuration
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:         filepath.Join(home, ".siyensya"),
		GradeLevel:      types.GradeJuniorHigh,
		SessionTTLHours: 24,
	}
}

// Load builds the effective configuration: defaults, overlaid with the YAML
// file at path (skipped if path is empty or the file is absent), overlaid
// with environment variables
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays SIYENSYA_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("SIYENSYA_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SIYENSYA_GRADE_LEVEL"); v != "" {
		grade, err := types.ParseGradeLevel(v)
		if err != nil {
			return fmt.Errorf("SIYENSYA_GRADE_LEVEL: %w", err)
		}
		c.GradeLevel = grade
	}
	if v := os.Getenv("SIYENSYA_SESSION_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIYENSYA_SESSION_TTL_HOURS must be an integer (got %q)", v)
		}
		c.SessionTTLHours = hours
	}
	if v := os.Getenv("SIYENSYA_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("SIYENSYA_REMOTE_DSN"); v != "" {
		c.RemoteDSN = v
	}
	if v := os.Getenv("SIYENSYA_USER_ID"); v != "" {
		c.UserID = v
	}
	if v := os.Getenv("SIYENSYA_USERNAME"); v != "" {
		c.Username = v
	}
	return nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if !c.GradeLevel.IsValid() {
		return fmt.Errorf("invalid grade_level %q", c.GradeLevel)
	}
	if c.SessionTTLHours < 1 || c.SessionTTLHours > 168 {
		return fmt.Errorf("session_ttl_hours must be between 1 and 168 (got %d)", c.SessionTTLHours)
	}
	if c.RemoteDSN != "" && c.UserID == "" {
		return fmt.Errorf("user_id is required when remote_dsn is set")
	}
	return nil
}

// DatabasePath returns the local sqlite database path
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "local.db")
}

// MuseumImageDir returns the directory saved discovery images live in
func (c Config) MuseumImageDir() string {
	return filepath.Join(c.DataDir, "museum")
}

// String returns a human-readable summary with secrets elided
func (c Config) String() string {
	remote := "disabled"
	if c.RemoteDSN != "" {
		remote = "configured"
	}
	return fmt.Sprintf("data_dir=%s grade=%s ttl=%dh model=%s remote=%s",
		c.DataDir, c.GradeLevel, c.SessionTTLHours, modelOrDefault(c.Model), remote)
}

func modelOrDefault(m string) string {
	if m == "" {
		return "default"
	}
	return m
}
