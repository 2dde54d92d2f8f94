// Package database opens the SQL connection pool and ties it to the
// application lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/pestilab/pkg/lifecycle"
	"github.com/JaimeStill/pestilab/pkg/query"
)

// System manages the connection pool.
type System interface {
	Connection() *sql.DB
	// Dialect reports how queries must be rendered for this connection.
	Dialect() query.Dialect
	// Schema is the table qualifier for this connection.
	Schema() string
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	dialect     query.Dialect
	schema      string
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens the pool for cfg. No connection is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	driver := "pgx"
	if cfg.Driver == DriverSQLite {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		dialect:     cfg.Dialect(),
		schema:      cfg.Schema(),
		logger:      logger.With("system", "database", "driver", cfg.Driver),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Dialect() query.Dialect {
	return d.dialect
}

func (d *database) Schema() string {
	return d.schema
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(ctx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return
		}
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}
