package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tendhq/tend/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/tend.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tend.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "tend.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS people (
		  key             TEXT PRIMARY KEY,
		  name            TEXT NOT NULL,
		  role            TEXT,
		  team            TEXT,
		  importance      TEXT NOT NULL,
		  cadence         TEXT NOT NULL,
		  channels_json   TEXT,
		  style           TEXT,
		  categories_json TEXT,
		  created_at      INTEGER NOT NULL,
		  updated_at      INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
		  key          TEXT PRIMARY KEY,
		  description  TEXT NOT NULL,
		  direction    TEXT NOT NULL,
		  assignee     TEXT,
		  priority     TEXT NOT NULL,
		  due_at       INTEGER,
		  follow_up    INTEGER NOT NULL DEFAULT 0,
		  follow_up_at INTEGER,
		  category     TEXT,
		  status       TEXT NOT NULL,
		  created_at   INTEGER NOT NULL,
		  updated_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_status
		ON tasks(status, updated_at DESC);

		CREATE TABLE IF NOT EXISTS interactions (
		  id          TEXT PRIMARY KEY,
		  person_key  TEXT NOT NULL,
		  occurred_at INTEGER NOT NULL,
		  type        TEXT NOT NULL,
		  quality     INTEGER,
		  topics_json TEXT,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_interactions_person
		ON interactions(person_key, occurred_at DESC);

		CREATE TABLE IF NOT EXISTS recommendations (
		  id         TEXT PRIMARY KEY,
		  person_key TEXT NOT NULL,
		  type       TEXT NOT NULL,
		  urgency    TEXT NOT NULL,
		  reason     TEXT NOT NULL,
		  approach   TEXT,
		  confidence REAL NOT NULL,
		  status     TEXT NOT NULL,
		  created_at INTEGER NOT NULL,
		  expires_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_recommendations_person_status
		ON recommendations(person_key, status);

		CREATE INDEX IF NOT EXISTS idx_recommendations_status
		ON recommendations(status, expires_at);

		CREATE TABLE IF NOT EXISTS interest_links (
		  id               TEXT PRIMARY KEY,
		  person_key       TEXT NOT NULL,
		  initiative       TEXT NOT NULL,
		  level            TEXT NOT NULL,
		  required_cadence TEXT NOT NULL,
		  active           INTEGER NOT NULL DEFAULT 1,
		  created_at       INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_interest_links_person
		ON interest_links(person_key)
		WHERE active = 1;

		CREATE TABLE IF NOT EXISTS review_queue (
		  id             TEXT PRIMARY KEY,
		  kind           TEXT NOT NULL,
		  candidate_json TEXT NOT NULL,
		  questions_json TEXT,
		  status         TEXT NOT NULL,
		  created_at     INTEGER NOT NULL,
		  resolved_at    INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_review_queue_status
		ON review_queue(status, created_at);

		CREATE TABLE IF NOT EXISTS update_suggestions (
		  id              TEXT PRIMARY KEY,
		  target_key      TEXT NOT NULL,
		  kind            TEXT NOT NULL,
		  field           TEXT NOT NULL,
		  current_value   TEXT,
		  suggested_value TEXT NOT NULL,
		  confidence      REAL NOT NULL,
		  status          TEXT NOT NULL,
		  created_at      INTEGER NOT NULL,
		  resolved_at     INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_update_suggestions_target
		ON update_suggestions(target_key, status);

		CREATE TABLE IF NOT EXISTS detection_log (
		  id          TEXT PRIMARY KEY,
		  key         TEXT NOT NULL,
		  kind        TEXT NOT NULL,
		  confidence  REAL NOT NULL,
		  disposition TEXT NOT NULL,
		  reason      TEXT NOT NULL,
		  source      TEXT,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_detection_log_created
		ON detection_log(created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
