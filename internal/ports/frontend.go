package ports

import (
	"context"

	"github.com/mikey/sms-spam-detector/internal/core"
)

// Frontend defines the interface for the ways messages reach the detector
type Frontend interface {
	// ProcessMessage classifies a message and returns the verdict
	ProcessMessage(ctx context.Context, msg *core.Message) (*core.Verdict, error)

	// Start starts the front end service
	Start() error

	// Stop stops the front end service
	Stop() error
}
