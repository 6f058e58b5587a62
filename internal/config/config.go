package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dyluth/artmatrix/internal/cursor"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "artmatrix.yml"

// Store drivers
const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config represents the top-level artmatrix.yml configuration
type Config struct {
	Version    string           `yaml:"version"`
	Store      StoreConfig      `yaml:"store"`
	Grid       GridConfig       `yaml:"grid"`
	Navigation NavigationConfig `yaml:"navigation"`
	Images     ImagesConfig     `yaml:"images"`
	Server     ServerConfig     `yaml:"server"`
	Identity   IdentityConfig   `yaml:"identity"`
}

// StoreConfig selects and addresses the document store
type StoreConfig struct {
	// Driver is "redis" or "sqlite"
	Driver     string `yaml:"driver" env:"ARTMATRIX_STORE_DRIVER"`
	RedisURL   string `yaml:"redis_url" env:"ARTMATRIX_REDIS_URL"`
	SQLitePath string `yaml:"sqlite_path" env:"ARTMATRIX_SQLITE_PATH"`
	Collection string `yaml:"collection" env:"ARTMATRIX_COLLECTION"`
}

// GridConfig holds the top-level grid bounds (R_MAX x C_MAX)
type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// NavigationConfig holds the cursor timing constants
type NavigationConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	Transition     time.Duration `yaml:"transition"` // Length of each half of the fade
	NoiseThreshold float64       `yaml:"noise_threshold"`
}

// ImagesConfig selects the image-presence rule
type ImagesConfig struct {
	Strict *bool `yaml:"strict,omitempty"` // Require an http(s) URL (default true)
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ARTMATRIX_ADDR"`
	// ViewTTL closes detail views that have not been touched for this long
	ViewTTL time.Duration `yaml:"view_ttl" env:"ARTMATRIX_VIEW_TTL"`
}

// IdentityConfig configures anonymous sign-in
type IdentityConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{Version: "1.0"}
	// Validate on an empty config only fills defaults
	_ = cfg.Validate()
	return cfg
}

// Validate applies defaults for omitted values and rejects invalid ones
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.Store.validate(); err != nil {
		return err
	}

	if c.Grid.Rows == 0 {
		c.Grid.Rows = 18
	}
	if c.Grid.Cols == 0 {
		c.Grid.Cols = 14
	}
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 {
		return fmt.Errorf("grid.rows and grid.cols must be >= 1, got %dx%d", c.Grid.Rows, c.Grid.Cols)
	}

	defaults := cursor.DefaultConfig()
	if c.Navigation.Debounce == 0 {
		c.Navigation.Debounce = defaults.Debounce
	}
	if c.Navigation.Transition == 0 {
		c.Navigation.Transition = defaults.Transition
	}
	if c.Navigation.NoiseThreshold == 0 {
		c.Navigation.NoiseThreshold = defaults.NoiseThreshold
	}
	if c.Navigation.Debounce < 0 || c.Navigation.Transition < 0 {
		return fmt.Errorf("navigation.debounce and navigation.transition must not be negative")
	}
	if c.Navigation.NoiseThreshold < 0 {
		return fmt.Errorf("navigation.noise_threshold must be >= 0, got %v", c.Navigation.NoiseThreshold)
	}

	if c.Images.Strict == nil {
		strict := true
		c.Images.Strict = &strict
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ViewTTL == 0 {
		c.Server.ViewTTL = 30 * time.Minute
	}
	if c.Server.ViewTTL < 0 {
		return fmt.Errorf("server.view_ttl must not be negative")
	}

	if c.Identity.TTL == 0 {
		c.Identity.TTL = 24 * time.Hour
	}
	if c.Identity.TTL < 0 {
		return fmt.Errorf("identity.ttl must not be negative")
	}

	return nil
}

func (s *StoreConfig) validate() error {
	if s.Driver == "" {
		s.Driver = DriverRedis
	}
	if s.Collection == "" {
		s.Collection = "details"
	}

	switch s.Driver {
	case DriverRedis:
		if s.RedisURL == "" {
			s.RedisURL = "redis://localhost:6379/0"
		}
	case DriverSQLite:
		if s.SQLitePath == "" {
			s.SQLitePath = "artmatrix.db"
		}
	default:
		return fmt.Errorf("invalid store.driver: %s (must be '%s' or '%s')", s.Driver, DriverRedis, DriverSQLite)
	}
	return nil
}

// CursorConfig returns the navigation constants in the cursor's form
func (c *Config) CursorConfig() cursor.Config {
	return cursor.Config{
		NoiseThreshold: c.Navigation.NoiseThreshold,
		Debounce:       c.Navigation.Debounce,
		Transition:     c.Navigation.Transition,
	}
}

// StrictImages reports the image rule, defaulting to strict
func (c *Config) StrictImages() bool {
	return c.Images.Strict == nil || *c.Images.Strict
}

// ApplyEnv overrides store and server settings from ARTMATRIX_* variables.
// Unset variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(&c.Store); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := env.Parse(&c.Server); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Load reads artmatrix.yml from path, applies environment overrides and validates
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault behaves like Load but falls back to Default (plus environment
// overrides) when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	config, err := Load(path)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config = &Config{}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
