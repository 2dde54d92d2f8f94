// Package config loads the service configuration from config.toml, an
// optional per-environment overlay, and PESTILAB_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/pestilab/pkg/database"
	"github.com/JaimeStill/pestilab/pkg/settings"
	"github.com/JaimeStill/pestilab/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPestilabEnv             = "PESTILAB_ENV"
	EnvPestilabShutdownTimeout = "PESTILAB_SHUTDOWN_TIMEOUT"
	EnvPestilabVersion         = "PESTILAB_VERSION"
)

var databaseEnv = &database.Env{
	Driver:          "PESTILAB_DB_DRIVER",
	Path:            "PESTILAB_DB_PATH",
	Host:            "PESTILAB_DB_HOST",
	Port:            "PESTILAB_DB_PORT",
	Name:            "PESTILAB_DB_NAME",
	User:            "PESTILAB_DB_USER",
	Password:        "PESTILAB_DB_PASSWORD",
	SSLMode:         "PESTILAB_DB_SSL_MODE",
	MaxOpenConns:    "PESTILAB_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PESTILAB_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PESTILAB_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PESTILAB_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Driver:           "PESTILAB_STORAGE_DRIVER",
	ContainerName:    "PESTILAB_STORAGE_CONTAINER_NAME",
	ConnectionString: "PESTILAB_STORAGE_CONNECTION_STRING",
	Bucket:           "PESTILAB_STORAGE_BUCKET",
	Region:           "PESTILAB_STORAGE_REGION",
	Endpoint:         "PESTILAB_STORAGE_ENDPOINT",
	AccessKeyID:      "PESTILAB_STORAGE_ACCESS_KEY_ID",
	SecretAccessKey:  "PESTILAB_STORAGE_SECRET_ACCESS_KEY",
	PathStyle:        "PESTILAB_STORAGE_PATH_STYLE",
	Root:             "PESTILAB_STORAGE_ROOT",
}

var settingsEnv = &settings.Env{
	Driver: "PESTILAB_SETTINGS_DRIVER",
	Path:   "PESTILAB_SETTINGS_PATH",
}

// Config is the root configuration for the PestiLab service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Settings        settings.Config `toml:"settings"`
	API             APIConfig       `toml:"api"`
	Density         DensityConfig   `toml:"density"`
	Labels          LabelsConfig    `toml:"labels"`
	Weighing        WeighingConfig  `toml:"weighing"`
	Exports         ExportsConfig   `toml:"exports"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PESTILAB_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPestilabEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Without a config.toml, defaults and environment
// variables provide everything.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Settings.Merge(&overlay.Settings)
	c.API.Merge(&overlay.API)
	c.Density.Merge(&overlay.Density)
	c.Labels.Merge(&overlay.Labels)
	c.Weighing.Merge(&overlay.Weighing)
	c.Exports.Merge(&overlay.Exports)
}

// Finalize applies defaults, environment overrides, and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"settings", func() error { return c.Settings.Finalize(settingsEnv) }},
		{"api", c.API.Finalize},
		{"density", c.Density.Finalize},
		{"labels", c.Labels.Finalize},
		{"weighing", c.Weighing.Finalize},
		{"exports", c.Exports.Finalize},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPestilabShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPestilabVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPestilabEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
