package di

import (
	"flag"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/adapters/frontend"
	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	Message   string
	InputFile string

	// Artifact flags
	ArtifactsRoot  string
	VectorizerPath string
	ModelPath      string

	// Output flags
	Verbose    bool
	JSONLog    bool
	JSONOutput bool
	ConfigFile string
}

// ParseFlags parses command line arguments into a CLIFlags struct
func ParseFlags(name string, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	// Input flags
	fs.StringVar(&flags.Message, "message", "", "Message to classify")
	fs.StringVar(&flags.InputFile, "file", "", "File holding the message (use stdin if neither -message nor -file is given)")

	// Artifact flags
	fs.StringVar(&flags.ArtifactsRoot, "artifacts", "", "Directory holding the vectorizer and model")
	fs.StringVar(&flags.VectorizerPath, "vectorizer", "", "Vectorizer file, relative to the artifacts directory")
	fs.StringVar(&flags.ModelPath, "model", "", "Model file, relative to the artifacts directory")

	// Output flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.BoolVar(&flags.JSONOutput, "json", false, "Print the verdict as JSON")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration, with flags taking precedence over the file
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.New(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register spam detector service with no cache
	if err := container.Provide(func(
		artifacts *core.Artifacts,
		normalizer core.Normalizer,
		logger *zap.Logger,
	) *core.SpamDetectorService {
		return core.NewSpamDetectorService(artifacts, normalizer, nil, logger, false, 0)
	}); err != nil {
		return nil, err
	}

	// Register CLI front end
	if err := container.Provide(func(
		service *core.SpamDetectorService,
		logger *zap.Logger,
		cfg *config.Config,
		flags *CLIFlags,
	) *frontend.CLIFrontend {
		return frontend.NewCLIFrontend(service, logger, out, flags.Verbose, flags.JSONOutput, cfg.GetText().MaxInputSize)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.ArtifactsRoot != "" {
		cfg.Set("artifacts.root", flags.ArtifactsRoot)
	}
	if flags.VectorizerPath != "" {
		cfg.Set("artifacts.vectorizer_path", flags.VectorizerPath)
	}
	if flags.ModelPath != "" {
		cfg.Set("artifacts.model_path", flags.ModelPath)
	}
	cfg.Set("cache.enabled", false)
}
