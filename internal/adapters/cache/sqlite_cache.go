package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the VerdictCache interface
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	c, err := newSQLCache(db, dialect{
		name: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS verdict_cache (
				cache_key TEXT PRIMARY KEY,
				label INTEGER NOT NULL,
				confidence REAL NOT NULL,
				has_confidence BOOLEAN NOT NULL,
				created_at INTEGER NOT NULL,
				expires_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_verdict_expires_at ON verdict_cache(expires_at)`,
		},
		upsert: `
			INSERT OR REPLACE INTO verdict_cache (cache_key, label, confidence, has_confidence, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
	}, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &SQLiteCache{sqlCache: c}, nil
}
