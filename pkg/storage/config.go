package storage

import (
	"fmt"
	"os"
	"strings"
)

// Supported drivers.
const (
	DriverAzure      = "azure"
	DriverS3         = "s3"
	DriverFilesystem = "filesystem"
	DriverMemory     = "memory"
)

// Config selects a blob driver and holds the parameters each driver needs.
type Config struct {
	Driver string `toml:"driver"`

	// azure
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`

	// s3
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	PathStyle       bool   `toml:"path_style"`

	// filesystem
	Root string `toml:"root"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Driver           string
	ContainerName    string
	ConnectionString string
	Bucket           string
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	PathStyle        string
	Root             string
}

// Finalize applies environment overrides, defaults, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	merge(&c.Driver, overlay.Driver)
	merge(&c.ContainerName, overlay.ContainerName)
	merge(&c.ConnectionString, overlay.ConnectionString)
	merge(&c.Bucket, overlay.Bucket)
	merge(&c.Region, overlay.Region)
	merge(&c.Endpoint, overlay.Endpoint)
	merge(&c.AccessKeyID, overlay.AccessKeyID)
	merge(&c.SecretAccessKey, overlay.SecretAccessKey)
	merge(&c.Root, overlay.Root)
	if overlay.PathStyle {
		c.PathStyle = true
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverFilesystem
	}
	if c.ContainerName == "" {
		c.ContainerName = "exports"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Root == "" {
		c.Root = "./data/exports"
	}
}

func (c *Config) loadEnv(env *Env) {
	envString(env.Driver, &c.Driver)
	envString(env.ContainerName, &c.ContainerName)
	envString(env.ConnectionString, &c.ConnectionString)
	envString(env.Bucket, &c.Bucket)
	envString(env.Region, &c.Region)
	envString(env.Endpoint, &c.Endpoint)
	envString(env.AccessKeyID, &c.AccessKeyID)
	envString(env.SecretAccessKey, &c.SecretAccessKey)
	envString(env.Root, &c.Root)
	if env.PathStyle != "" {
		if v := os.Getenv(env.PathStyle); v != "" {
			c.PathStyle = strings.EqualFold(v, "true")
		}
	}
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverAzure:
		if c.ConnectionString == "" {
			return fmt.Errorf("connection_string required for azure driver")
		}
	case DriverS3:
		if c.Bucket == "" {
			return fmt.Errorf("bucket required for s3 driver")
		}
	case DriverFilesystem, DriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Driver)
	}
	return nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(key string, dst *string) {
	if key == "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
