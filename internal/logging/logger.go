package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mikey/sms-spam-detector/internal/config"
)

// InitLogger builds the server logger from the logging section of the configuration
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.GetLogging())
}

// InitConsoleLogger builds the CLI logger, which stays quiet unless verbose is set
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	lc := config.LoggingConfig{Level: "warn", Format: "console"}
	if verbose {
		lc.Level = "debug"
	}
	if jsonFormat {
		lc.Format = "json"
	}
	return New(lc)
}

// New builds a logger for the given settings. Unknown levels log at info.
func New(lc config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch strings.ToLower(lc.Format) {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unsupported log format: %q", lc.Format)
	}

	zc.Level = zap.NewAtomicLevelAt(levelOf(lc.Level))
	if len(lc.OutputPaths) > 0 {
		zc.OutputPaths = lc.OutputPaths
	}

	logger, err := zc.Build(zap.Fields(zap.String("service", "spam-detector")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func levelOf(s string) zapcore.Level {
	if strings.EqualFold(s, "warning") {
		return zapcore.WarnLevel
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
