// Package cache provides a SQLite-based store for lyrics and proxied images,
// plus the in-memory playlist cache.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	// CurrentSchemaVersion is the current database schema version.
	CurrentSchemaVersion = "1"

	// DefaultDBPath is the default path for the cache database.
	DefaultDBPath = "data/remote.db"

	// DefaultMaxAge is how long cached lyrics and images stay valid.
	DefaultMaxAge = 168 * time.Hour // 7 days
)

// DB wraps the SQLite cache database.
type DB struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewDB creates a cache database instance at path.
func NewDB(path string) *DB {
	if path == "" {
		path = DefaultDBPath
	}
	return &DB{path: path}
}

// Open opens the database and initializes the schema.
func (d *DB) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", d.path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d.db = db

	if err := d.initSchema(); err != nil {
		d.db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", d.path).Msg("Cache database opened")
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

func (d *DB) initSchema() error {
	currentVersion := d.getSchemaVersion()

	if currentVersion == "" {
		if err := d.createSchema(); err != nil {
			return err
		}
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	if currentVersion != CurrentSchemaVersion {
		log.Info().
			Str("current", currentVersion).
			Str("target", CurrentSchemaVersion).
			Msg("Migrating cache schema")
		// Add migration logic here when schema changes
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	return nil
}

func (d *DB) createSchema() error {
	schema := `
	-- Lyrics keyed by normalized artist::title
	CREATE TABLE IF NOT EXISTS lyrics (
		key TEXT PRIMARY KEY,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		lyrics TEXT NOT NULL,
		synced TEXT,
		has_synced INTEGER DEFAULT 0,
		source TEXT NOT NULL,
		cached_at TEXT NOT NULL
	);

	-- Proxied images keyed by MD5 of normalized URL
	CREATE TABLE IF NOT EXISTS images (
		key TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		data BLOB NOT NULL,
		content_type TEXT NOT NULL,
		cache_control TEXT,
		cached_at TEXT NOT NULL
	);

	-- Cache metadata
	CREATE TABLE IF NOT EXISTS cache_meta (
		key TEXT PRIMARY KEY,
		value TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_lyrics_cached ON lyrics(cached_at);
	CREATE INDEX IF NOT EXISTS idx_images_cached ON images(cached_at);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Msg("Cache schema created")
	return nil
}

func (d *DB) getSchemaVersion() string {
	var version string
	err := d.db.QueryRow("SELECT value FROM cache_meta WHERE key = 'schema_version'").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO cache_meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = ?
	`, key, value, time.Now().Format(time.RFC3339), value, time.Now().Format(time.RFC3339))
	return err
}

// Prune removes expired lyrics and image rows.
func (d *DB) Prune(maxAge time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return fmt.Errorf("database not open")
	}

	cutoff := time.Now().Add(-maxAge).Format(time.RFC3339)
	for _, table := range []string{"lyrics", "images"} {
		if _, err := d.db.Exec("DELETE FROM "+table+" WHERE cached_at < ?", cutoff); err != nil {
			return fmt.Errorf("failed to prune %s: %w", table, err)
		}
	}
	return nil
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer the DAO methods.
func (d *DB) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}
