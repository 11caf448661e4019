package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresCache is a PostgreSQL implementation of the VerdictCache interface
type PostgresCache struct {
	*sqlCache
}

// NewPostgresCache creates a new PostgreSQL cache
func NewPostgresCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*PostgresCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	c, err := newSQLCache(db, dialect{
		name: "postgres",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS verdict_cache (
				cache_key TEXT PRIMARY KEY,
				label SMALLINT NOT NULL,
				confidence DOUBLE PRECISION NOT NULL,
				has_confidence BOOLEAN NOT NULL,
				created_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_verdict_expires_at ON verdict_cache(expires_at)`,
		},
		upsert: `
			INSERT INTO verdict_cache (cache_key, label, confidence, has_confidence, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (cache_key) DO UPDATE SET
				label = EXCLUDED.label,
				confidence = EXCLUDED.confidence,
				has_confidence = EXCLUDED.has_confidence,
				created_at = EXCLUDED.created_at,
				expires_at = EXCLUDED.expires_at
		`,
		rebind: dollarPlaceholders,
	}, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &PostgresCache{sqlCache: c}, nil
}
