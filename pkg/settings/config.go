package settings

import (
	"fmt"
	"os"
)

// Supported drivers.
const (
	// DriverDatabase stores settings in the shared application database.
	DriverDatabase = "database"
	// DriverSQLite stores settings in a dedicated local SQLite file.
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config selects where persisted preferences live.
type Config struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Driver string
	Path   string
}

// Finalize applies environment overrides, defaults, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		if v := os.Getenv(env.Driver); env.Driver != "" && v != "" {
			c.Driver = v
		}
		if v := os.Getenv(env.Path); env.Path != "" && v != "" {
			c.Path = v
		}
	}

	if c.Driver == "" {
		c.Driver = DriverDatabase
	}
	if c.Path == "" {
		c.Path = "settings.db"
	}

	switch c.Driver {
	case DriverDatabase, DriverSQLite, DriverMemory:
		return nil
	default:
		return fmt.Errorf("unsupported settings driver %q", c.Driver)
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
