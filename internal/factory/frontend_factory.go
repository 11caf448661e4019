package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/adapters/frontend"
	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"github.com/mikey/sms-spam-detector/internal/whitelist"
)

// FrontendFactory creates long-running front ends based on configuration
type FrontendFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	service   *core.SpamDetectorService
	whitelist *whitelist.Checker
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.SpamDetectorService,
	checker *whitelist.Checker,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		whitelist: checker,
	}
}

// CreateFrontend creates the front end selected by server.frontend
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	sc, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	maxInput := f.cfg.GetText().MaxInputSize

	switch sc.Frontend {
	case "http":
		fe, err := frontend.NewHTTPFrontend(f.service, f.logger, frontend.HTTPOptions{
			ListenAddress:   sc.ListenAddress,
			Mode:            sc.Mode,
			ReadTimeout:     sc.ReadTimeout,
			WriteTimeout:    sc.WriteTimeout,
			ShutdownTimeout: sc.ShutdownTimeout,
			MaxInputSize:    maxInput,
		})
		if err != nil {
			return nil, err
		}
		return fe, nil
	case "smtp":
		smtp := f.cfg.GetSMTP()
		return frontend.NewSMTPFilter(f.service, f.logger, f.whitelist, frontend.SMTPOptions{
			ListenAddress:   smtp.ListenAddress,
			Domain:          smtp.Domain,
			RelayAddress:    smtp.RelayAddress,
			MaxMessageBytes: smtp.MaxMessageBytes,
			BlockSpam:       smtp.BlockSpam,
			SubjectPrefix:   smtp.SubjectPrefix,
			SpamHeader:      smtp.SpamHeader,
			ScoreHeader:     smtp.ScoreHeader,
			ReasonHeader:    smtp.ReasonHeader,
			MaxInputSize:    maxInput,
			Timeout:         sc.ReadTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported frontend: %s", sc.Frontend)
	}
}
