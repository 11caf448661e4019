package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/artifact"
	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
)

// ArtifactFactory loads the trained artifacts named in the configuration
type ArtifactFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewArtifactFactory creates a new ArtifactFactory
func NewArtifactFactory(cfg *config.Config, logger *zap.Logger) *ArtifactFactory {
	return &ArtifactFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateArtifacts loads the vectorizer and classifier. Any error is fatal to startup.
func (f *ArtifactFactory) CreateArtifacts() (*core.Artifacts, error) {
	ac := f.cfg.GetArtifacts()

	loader, err := artifact.NewLoader(ac.Root, f.logger)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Loading artifacts",
		zap.String("root", loader.Root()),
		zap.String("vectorizer", ac.VectorizerPath),
		zap.String("model", ac.ModelPath))

	return loader.LoadArtifacts(ac.VectorizerPath, ac.ModelPath)
}
