package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS clients (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		company     TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		archived    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS consultants (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		name              TEXT NOT NULL UNIQUE,
		email             TEXT NOT NULL DEFAULT '',
		hourly_rate_cents INTEGER NOT NULL DEFAULT 0,
		archived          INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS projects (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id     INTEGER NOT NULL REFERENCES clients(id),
		consultant_id INTEGER REFERENCES consultants(id),
		name          TEXT NOT NULL UNIQUE,
		color         TEXT NOT NULL DEFAULT '#6C63FF',
		status        TEXT NOT NULL DEFAULT 'planned',
		value_cents   INTEGER NOT NULL DEFAULT 0,
		archived      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS stages (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id         INTEGER NOT NULL REFERENCES projects(id),
		name               TEXT NOT NULL,
		position           INTEGER NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'pending',
		value_cents        INTEGER NOT NULL DEFAULT 0,
		days               INTEGER NOT NULL DEFAULT 0,
		timer_status       TEXT NOT NULL DEFAULT 'stopped',
		time_spent_minutes INTEGER NOT NULL DEFAULT 0,
		timer_started_at   TEXT,
		created_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(project_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_stages_project ON stages(project_id);

	CREATE TABLE IF NOT EXISTS work_sessions (
		id               TEXT PRIMARY KEY,
		stage_id         INTEGER NOT NULL REFERENCES stages(id),
		start_time       TEXT NOT NULL,
		end_time         TEXT,
		status           TEXT NOT NULL DEFAULT 'active',
		duration_minutes INTEGER,
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_stage ON work_sessions(stage_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_start ON work_sessions(start_time);

	CREATE TABLE IF NOT EXISTS transactions (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id   INTEGER NOT NULL REFERENCES projects(id),
		stage_id     INTEGER REFERENCES stages(id),
		kind         TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		occurred_on  TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_project ON transactions(project_id);

	CREATE TABLE IF NOT EXISTS webhook_events (
		id           TEXT PRIMARY KEY,
		event_type   TEXT NOT NULL,
		payload      TEXT NOT NULL DEFAULT '{}',
		status       TEXT NOT NULL DEFAULT 'pending',
		attempts     INTEGER NOT NULL DEFAULT 0,
		last_error   TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		delivered_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_webhook_status ON webhook_events(status);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('auto_pause_minutes', '240'),
		('daily_goal_minutes', '480'),
		('week_start',         'monday');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/consultorpro/consultorpro.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "consultorpro", "consultorpro.db"), nil
}
