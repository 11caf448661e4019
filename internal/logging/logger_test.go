package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mikey/sms-spam-detector/internal/config"
)

func TestLevelOf(t *testing.T) {
	cases := map[string]zapcore.Level{
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, levelOf(in), in)
	}
}

func TestInitLogger(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("logging.level", "error")

	logger, err := InitLogger(cfg)
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	require.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestInitConsoleLogger(t *testing.T) {
	quiet, err := InitConsoleLogger(false, false)
	require.NoError(t, err)
	require.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	require.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	verbose, err := InitConsoleLogger(true, true)
	require.NoError(t, err)
	require.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_OutputPathsAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detector.log")

	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)
	logger.Info("classified")
	require.NoError(t, logger.Sync())
	require.FileExists(t, path)

	_, err = New(config.LoggingConfig{Format: "xml"})
	require.Error(t, err)
}
