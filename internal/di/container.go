package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/factory"
	"github.com/mikey/sms-spam-detector/internal/logging"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"github.com/mikey/sms-spam-detector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container for the server
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.New(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register cache
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateCache()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetSMTP().WhitelistedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register spam detector service
	if err := container.Provide(core.NewSpamDetectorService); err != nil {
		return nil, err
	}

	// Register front end
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCore registers the artifacts and the normalizer shared by every binary
func provideCore(container *dig.Container) error {
	if err := container.Provide(factory.NewArtifactFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ArtifactFactory) (*core.Artifacts, error) {
		return f.CreateArtifacts()
	}); err != nil {
		return err
	}

	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	return container.Provide(func(f *factory.TextProcessorFactory) (core.Normalizer, error) {
		n, err := f.CreateNormalizer()
		if err != nil {
			return nil, err
		}
		return n, nil
	})
}
