// Package settings persists small key/value preferences, such as the
// selected label profile, behind a swappable repository.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/pestilab/pkg/database"
	"github.com/JaimeStill/pestilab/pkg/lifecycle"
	"github.com/JaimeStill/pestilab/pkg/query"
)

// Repository reads and writes string preferences by key.
type Repository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// System is a Repository with a lifecycle.
type System interface {
	Repository
	Start(lc *lifecycle.Coordinator) error
}

// New creates the settings system selected by cfg. db is only used by the
// database driver and may be nil otherwise.
func New(cfg *Config, db database.System, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "settings", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverMemory:
		return &memory{values: make(map[string]string), logger: logger}, nil
	case DriverDatabase:
		if db == nil {
			return nil, fmt.Errorf("settings driver %q requires a database", cfg.Driver)
		}
		return &store{
			db:      db.Connection(),
			dialect: db.Dialect(),
			table:   db.Schema() + ".settings",
			logger:  logger,
		}, nil
	case DriverSQLite:
		conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("open settings store: %w", err)
		}
		conn.SetMaxOpenConns(1)
		return &store{
			db:      conn,
			dialect: query.SQLite,
			table:   "settings",
			ensure:  true,
			owned:   true,
			logger:  logger,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported settings driver %q", cfg.Driver)
	}
}

// NewMemory returns an in-process System.
func NewMemory(logger *slog.Logger) System {
	return &memory{values: make(map[string]string), logger: logger}
}

type memory struct {
	mu     sync.RWMutex
	values map[string]string
	logger *slog.Logger
}

func (m *memory) Start(_ *lifecycle.Coordinator) error {
	m.logger.Info("settings held in memory")
	return nil
}

func (m *memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

const createTable = `CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type store struct {
	db      *sql.DB
	dialect query.Dialect
	table   string
	ensure  bool
	owned   bool
	logger  *slog.Logger
}

func (s *store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting settings store")

	if s.ensure {
		lc.OnStartup(func() {
			if _, err := s.db.ExecContext(lc.Context(), createTable); err != nil {
				s.logger.Error("settings table initialization failed", "error", err)
				return
			}
			s.logger.Info("settings table ready")
		})
	}

	if s.owned {
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			if err := s.db.Close(); err != nil {
				s.logger.Error("settings store close failed", "error", err)
			}
		})
	}

	return nil
}

func (s *store) Get(ctx context.Context, key string) (string, bool, error) {
	q := fmt.Sprintf("SELECT value FROM %s WHERE key = %s", s.table, s.dialect.Param(1))

	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *store) Set(ctx context.Context, key, value string) error {
	q := fmt.Sprintf(
		`INSERT INTO %s (key, value, updated_at) VALUES (%s, %s, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.table, s.dialect.Param(1), s.dialect.Param(2),
	)

	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
