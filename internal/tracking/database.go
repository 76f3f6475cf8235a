package tracking

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

// NewDatabase opens the SQLite database at dbPath and applies the schema.
// Use ":memory:" for a throwaway database.
func NewDatabase(dbPath string) (*sql.DB, error) {
	// Ensure directory exists if not in-memory
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA user_version = 1",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// ensureSchema creates the database schema if it doesn't exist
func ensureSchema(db *sql.DB) error {
	schema := `
-- One row per load attempt
CREATE TABLE IF NOT EXISTS load_events (
    id              INTEGER PRIMARY KEY,
    timestamp       INTEGER NOT NULL,
    path            TEXT    NOT NULL,
    format          TEXT    NOT NULL DEFAULT '',
    channels        INTEGER NOT NULL DEFAULT 0,
    sample_rate     INTEGER NOT NULL DEFAULT 0,
    bits_per_sample INTEGER NOT NULL DEFAULT 0,
    duration_ms     INTEGER NOT NULL DEFAULT 0,
    pcm_bytes       INTEGER NOT NULL DEFAULT 0,
    file_bytes      INTEGER NOT NULL DEFAULT 0,
    elapsed_us      INTEGER NOT NULL DEFAULT 0,
    passthrough     INTEGER NOT NULL DEFAULT 0 CHECK (passthrough IN (0,1)),
    error           TEXT
);

CREATE INDEX IF NOT EXISTS idx_loads_timestamp ON load_events(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_loads_path ON load_events(path);
CREATE INDEX IF NOT EXISTS idx_loads_failed ON load_events(path) WHERE error IS NOT NULL;
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// GetDatabasePath returns the XDG cache path for the history database,
// creating its directory.
func GetDatabasePath() (string, error) {
	path, err := xdg.CacheFile(filepath.Join("runtimecue", "history.db"))
	if err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}
