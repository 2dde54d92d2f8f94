package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

// DensityConfig locates the solvent density service.
type DensityConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *DensityConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *DensityConfig) Finalize() error {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	envString("PESTILAB_DENSITY_BASE_URL", &c.BaseURL)
	envString("PESTILAB_DENSITY_TIMEOUT", &c.Timeout)

	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	return nil
}

func (c *DensityConfig) Merge(overlay *DensityConfig) {
	mergeString(&c.BaseURL, overlay.BaseURL)
	mergeString(&c.Timeout, overlay.Timeout)
}

// LabelsConfig sets the timezone used for label dates and the profile used
// when none has been selected.
type LabelsConfig struct {
	Timezone       string `toml:"timezone"`
	DefaultProfile string `toml:"default_profile"`
}

// Location loads Timezone. Finalize has already validated it.
func (c *LabelsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *LabelsConfig) Finalize() error {
	if c.Timezone == "" {
		c.Timezone = "Europe/Istanbul"
	}
	envString("PESTILAB_LABELS_TIMEZONE", &c.Timezone)
	envString("PESTILAB_LABELS_DEFAULT_PROFILE", &c.DefaultProfile)

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	return nil
}

func (c *LabelsConfig) Merge(overlay *LabelsConfig) {
	mergeString(&c.Timezone, overlay.Timezone)
	mergeString(&c.DefaultProfile, overlay.DefaultProfile)
}

// WeighingConfig tunes the weighing calculator and its sessions.
type WeighingConfig struct {
	TolerancePct float64 `toml:"tolerance_pct"`
	SessionTTL   string  `toml:"session_ttl"`
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *WeighingConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

func (c *WeighingConfig) Finalize() error {
	if c.TolerancePct == 0 {
		c.TolerancePct = 1
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "8h"
	}
	envFloat("PESTILAB_WEIGHING_TOLERANCE_PCT", &c.TolerancePct)
	envString("PESTILAB_WEIGHING_SESSION_TTL", &c.SessionTTL)

	if c.TolerancePct < 0 {
		return fmt.Errorf("tolerance_pct cannot be negative")
	}
	if d, err := time.ParseDuration(c.SessionTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid session_ttl %q", c.SessionTTL)
	}
	return nil
}

func (c *WeighingConfig) Merge(overlay *WeighingConfig) {
	if overlay.TolerancePct != 0 {
		c.TolerancePct = overlay.TolerancePct
	}
	mergeString(&c.SessionTTL, overlay.SessionTTL)
}

// ExportsConfig controls export file generation and archiving.
type ExportsConfig struct {
	Title       string `toml:"title"`
	Subject     string `toml:"subject"`
	ChunkSize   int    `toml:"chunk_size"`
	Concurrency int    `toml:"concurrency"`
	Archive     *bool  `toml:"archive"`
}

// ArchiveEnabled reports whether generated files are archived.
func (c *ExportsConfig) ArchiveEnabled() bool {
	return c.Archive != nil && *c.Archive
}

func (c *ExportsConfig) Finalize() error {
	if c.Title == "" {
		c.Title = "PestiLab – Labels Export"
	}
	if c.Subject == "" {
		c.Subject = "PestiLab_Labels"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 500
	}
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}
	if c.Archive == nil {
		enabled := true
		c.Archive = &enabled
	}

	envString("PESTILAB_EXPORTS_TITLE", &c.Title)
	envString("PESTILAB_EXPORTS_SUBJECT", &c.Subject)
	envInt("PESTILAB_EXPORTS_CHUNK_SIZE", &c.ChunkSize)
	envInt("PESTILAB_EXPORTS_CONCURRENCY", &c.Concurrency)
	if v := os.Getenv("PESTILAB_EXPORTS_ARCHIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Archive = &b
		}
	}

	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	return nil
}

func (c *ExportsConfig) Merge(overlay *ExportsConfig) {
	mergeString(&c.Title, overlay.Title)
	mergeString(&c.Subject, overlay.Subject)
	if overlay.ChunkSize != 0 {
		c.ChunkSize = overlay.ChunkSize
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.Archive != nil {
		c.Archive = overlay.Archive
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
