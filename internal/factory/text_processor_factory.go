package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/textproc"
)

// TextProcessorFactory creates text normalizers
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNormalizer creates a Normalizer with the configured tokenizer
func (f *TextProcessorFactory) CreateNormalizer() (*textproc.Normalizer, error) {
	var tokenizer textproc.Tokenizer
	switch name := f.cfg.GetText().Tokenizer; name {
	case "treebank", "":
		tokenizer = textproc.NewTreebankTokenizer()
	case "whitespace":
		tokenizer = textproc.WhitespaceTokenizer{}
	default:
		return nil, fmt.Errorf("unsupported tokenizer: %s", name)
	}
	return textproc.NewNormalizer(tokenizer, f.logger), nil
}
