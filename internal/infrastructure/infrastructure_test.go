package infrastructure_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/pestilab/internal/config"
	"github.com/JaimeStill/pestilab/internal/infrastructure"
	"github.com/JaimeStill/pestilab/pkg/database"
	"github.com/JaimeStill/pestilab/pkg/settings"
	"github.com/JaimeStill/pestilab/pkg/storage"
)

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Driver:          database.DriverSQLite,
			Path:            ":memory:",
			MaxOpenConns:    1,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage:  storage.Config{Driver: storage.DriverMemory},
		Settings: settings.Config{Driver: settings.DriverMemory},
		Version:  "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Settings == nil {
		t.Error("Settings is nil")
	}
	if infra.Metrics == nil {
		t.Error("Metrics is nil")
	}
}

func TestNewUnsupportedSettingsDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Settings.Driver = "redis"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Error("expected error for unsupported settings driver")
	}
}

func TestStartAndShutdown(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	infra.Lifecycle.WaitForStartup()
	if !infra.Lifecycle.Ready() {
		t.Error("lifecycle not ready after startup")
	}

	if err := infra.Lifecycle.Shutdown(5 * time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestMetricsRegistry(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	families, err := infra.Metrics.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Error("expected runtime collectors to be registered")
	}
}
