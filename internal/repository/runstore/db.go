package runstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradepulse/backend/internal/config"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// New creates a new database connection for the run-history store
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if cfg.Driver == "sqlite" {
		db, err = sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		// WAL mode for better concurrency
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}

		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)

	} else if cfg.Driver == "postgres" {
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
		)

		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the run-history schema if it does not exist
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS recon_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind VARCHAR(20) NOT NULL,
		source VARCHAR(20),
		window_days INTEGER NOT NULL,
		rows_found INTEGER NOT NULL DEFAULT 0,
		partial BOOLEAN NOT NULL DEFAULT FALSE,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		trigger_source VARCHAR(20) NOT NULL DEFAULT 'api',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_recon_runs_kind_created
		ON recon_runs(kind, created_at DESC);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create run-history schema: %w", err)
	}
	return nil
}
