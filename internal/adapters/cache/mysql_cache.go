package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the VerdictCache interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	c, err := newSQLCache(db, dialect{
		name: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS verdict_cache (
				cache_key CHAR(64) PRIMARY KEY,
				label TINYINT NOT NULL,
				confidence DOUBLE NOT NULL,
				has_confidence BOOLEAN NOT NULL,
				created_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL,
				INDEX idx_verdict_expires_at (expires_at)
			)`,
		},
		upsert: `
			INSERT INTO verdict_cache (cache_key, label, confidence, has_confidence, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				label = VALUES(label),
				confidence = VALUES(confidence),
				has_confidence = VALUES(has_confidence),
				created_at = VALUES(created_at),
				expires_at = VALUES(expires_at)
		`,
	}, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}

	return &MySQLCache{sqlCache: c}, nil
}
