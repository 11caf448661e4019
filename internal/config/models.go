package config

import (
	"fmt"
	"time"
)

// ArtifactsConfig represents where the trained vectorizer and classifier live
type ArtifactsConfig struct {
	Root           string
	VectorizerPath string
	ModelPath      string
}

// TextConfig represents the configuration for text normalization
type TextConfig struct {
	Tokenizer    string
	MaxInputSize int
}

// ServerConfig represents the configuration for the front end process
type ServerConfig struct {
	Frontend        string
	ListenAddress   string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SMTPConfig represents the configuration for the SMTP content filter
type SMTPConfig struct {
	ListenAddress      string
	Domain             string
	RelayAddress       string
	MaxMessageBytes    int64
	BlockSpam          bool
	SubjectPrefix      string
	SpamHeader         string
	ScoreHeader        string
	ReasonHeader       string
	WhitelistedDomains []string
}

// CacheConfig represents the configuration for the verdict cache
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	PostgresDSN      string
}

// LoggingConfig represents the configuration for the process logger
type LoggingConfig struct {
	Level       string
	Format      string
	OutputPaths []string
}

// GetArtifacts returns the artifact configuration
func (c *Config) GetArtifacts() ArtifactsConfig {
	return ArtifactsConfig{
		Root:           c.GetString("artifacts.root"),
		VectorizerPath: c.GetString("artifacts.vectorizer_path"),
		ModelPath:      c.GetString("artifacts.model_path"),
	}
}

// GetText returns the text processing configuration
func (c *Config) GetText() TextConfig {
	return TextConfig{
		Tokenizer:    c.GetString("text.tokenizer"),
		MaxInputSize: c.GetInt("text.max_input_size"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	read, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	write, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Frontend:        c.GetString("server.frontend"),
		ListenAddress:   c.GetString("server.listen_address"),
		Mode:            c.GetString("server.mode"),
		ReadTimeout:     read,
		WriteTimeout:    write,
		ShutdownTimeout: shutdown,
	}, nil
}

// GetSMTP returns the SMTP filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress:      c.GetString("smtp.listen_address"),
		Domain:             c.GetString("smtp.domain"),
		RelayAddress:       c.GetString("smtp.relay_address"),
		MaxMessageBytes:    int64(c.GetInt("smtp.max_message_bytes")),
		BlockSpam:          c.GetBool("smtp.block_spam"),
		SubjectPrefix:      c.GetString("smtp.subject_prefix"),
		SpamHeader:         c.GetString("smtp.headers.spam"),
		ScoreHeader:        c.GetString("smtp.headers.score"),
		ReasonHeader:       c.GetString("smtp.headers.reason"),
		WhitelistedDomains: c.GetStringSlice("smtp.whitelisted_domains"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	if ttl <= 0 {
		return CacheConfig{}, fmt.Errorf("cache.ttl must be positive, got %s", ttl)
	}

	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		PostgresDSN:      c.GetString("cache.postgres_dsn"),
	}, nil
}

// GetLogging returns the logger configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:       c.GetString("logging.level"),
		Format:      c.GetString("logging.format"),
		OutputPaths: c.GetStringSlice("logging.output_paths"),
	}
}
