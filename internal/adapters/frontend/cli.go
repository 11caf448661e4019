package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/textproc"
)

// CLIFrontend classifies a single message and prints the verdict
type CLIFrontend struct {
	service      *core.SpamDetectorService
	logger       *zap.Logger
	out          io.Writer
	verbose      bool
	jsonOutput   bool
	maxInputSize int
}

// NewCLIFrontend creates a new CLI front end writing to out
func NewCLIFrontend(service *core.SpamDetectorService, logger *zap.Logger, out io.Writer, verbose, jsonOutput bool, maxInputSize int) *CLIFrontend {
	return &CLIFrontend{
		service:      service,
		logger:       logger,
		out:          out,
		verbose:      verbose,
		jsonOutput:   jsonOutput,
		maxInputSize: maxInputSize,
	}
}

// ProcessMessage classifies a message and prints the result
func (f *CLIFrontend) ProcessMessage(ctx context.Context, msg *core.Message) (*core.Verdict, error) {
	msg.Text = textproc.TruncateText(msg.Text, f.maxInputSize)
	f.logger.Debug("Processing message", zap.String("source", msg.Source))

	if !f.jsonOutput {
		fmt.Fprintf(f.out, "\n=== Message Summary ===\n")
		fmt.Fprintf(f.out, "Source: %s\n", msg.Source)
		fmt.Fprintf(f.out, "Length: %d characters\n", len([]rune(msg.Content())))
		if f.verbose {
			fmt.Fprintf(f.out, "\nPreview:\n%s\n", textproc.TruncateText(msg.Content(), 500))
		}
	}

	startTime := time.Now()
	verdict, err := f.service.DetectMessage(ctx, msg)
	duration := time.Since(startTime)

	if err != nil {
		if f.jsonOutput {
			f.writeJSON(ErrorResponse{Error: core.UserMessageOf(err), Kind: string(core.KindOf(err))})
		} else {
			fmt.Fprintf(f.out, "\nError: %s\n", core.UserMessageOf(err))
		}
		return nil, err
	}

	if f.jsonOutput {
		f.writeJSON(newVerdictResponse(verdict))
		return verdict, nil
	}

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Label: %s\n", verdict.Label)
	fmt.Fprintf(f.out, "Confidence: %s\n", FormatConfidence(verdict.Confidence))
	if !verdict.HasConfidence {
		fmt.Fprintf(f.out, "(model provides no probability estimates)\n")
	}
	fmt.Fprintf(f.out, "Model used: %s\n", verdict.ModelUsed)
	if f.verbose {
		fmt.Fprintf(f.out, "Normalized: %s\n", verdict.NormalizedText)
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return verdict, nil
}

func (f *CLIFrontend) writeJSON(v any) {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.logger.Error("Failed to write JSON output", zap.Error(err))
	}
}

// Start is a no-op for the CLI front end
func (f *CLIFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI front end
func (f *CLIFrontend) Stop() error {
	return nil
}
