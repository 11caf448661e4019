package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	a := cfg.GetArtifacts()
	require.Equal(t, ".", a.Root)
	require.Equal(t, "vectorizer.json", a.VectorizerPath)
	require.Equal(t, "model.json", a.ModelPath)

	srv, err := cfg.GetServer()
	require.NoError(t, err)
	require.Equal(t, "http", srv.Frontend)
	require.Equal(t, "0.0.0.0:8501", srv.ListenAddress)
	require.Equal(t, 10*time.Second, srv.ShutdownTimeout)

	smtp := cfg.GetSMTP()
	require.Equal(t, "X-Spam-Status", smtp.SpamHeader)
	require.Equal(t, "X-Spam-Score", smtp.ScoreHeader)
	require.Equal(t, "X-Spam-Reason", smtp.ReasonHeader)
	require.False(t, smtp.BlockSpam)
	require.Empty(t, smtp.WhitelistedDomains)

	c, err := cfg.GetCache()
	require.NoError(t, err)
	require.True(t, c.Enabled)
	require.Equal(t, "memory", c.Type)
	require.Equal(t, 24*time.Hour, c.TTL)
	require.Equal(t, time.Hour, c.CleanupFrequency)

	require.Equal(t, "treebank", cfg.GetText().Tokenizer)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SPAM_DETECTOR_ARTIFACTS_ROOT", "/srv/models")
	t.Setenv("SPAM_DETECTOR_CACHE_TYPE", "sqlite")
	t.Setenv("SPAM_DETECTOR_SMTP_BLOCK_SPAM", "true")

	cfg := NewFromViper(NewEmptyViper())
	require.Equal(t, "/srv/models", cfg.GetArtifacts().Root)
	require.True(t, cfg.GetSMTP().BlockSpam)

	c, err := cfg.GetCache()
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Type)
}

func TestNew_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
artifacts:
  root: /opt/artifacts
  model_path: model.yaml
smtp:
  whitelisted_domains: [example.com, corp.example.org]
cache:
  ttl: 30m
`), 0o600))

	cfg, err := New(path)
	require.NoError(t, err)

	a := cfg.GetArtifacts()
	require.Equal(t, "/opt/artifacts", a.Root)
	require.Equal(t, "model.yaml", a.ModelPath)
	require.Equal(t, "vectorizer.json", a.VectorizerPath)
	require.Equal(t, []string{"example.com", "corp.example.org"}, cfg.GetSMTP().WhitelistedDomains)

	c, err := cfg.GetCache()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, c.TTL)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestInvalidDurations(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	cfg.Set("cache.ttl", "soon")
	_, err := cfg.GetCache()
	require.ErrorContains(t, err, "cache.ttl")

	cfg.Set("cache.ttl", "0s")
	_, err = cfg.GetCache()
	require.Error(t, err)

	cfg.Set("server.read_timeout", "fast")
	_, err = cfg.GetServer()
	require.ErrorContains(t, err, "server.read_timeout")
}

func TestLoggingSection(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	lc := cfg.GetLogging()
	require.Equal(t, "info", lc.Level)
	require.Equal(t, "json", lc.Format)
	require.Equal(t, []string{"stderr"}, lc.OutputPaths)

	t.Setenv("SPAM_DETECTOR_LOGGING_LEVEL", "debug")
	require.Equal(t, "debug", NewFromViper(NewEmptyViper()).GetLogging().Level)
}
