package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/adapters/frontend"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/di"
)

func main() {
	flags, err := di.ParseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		// Classification errors were already printed by the front end
		var coreErr *core.Error
		if !errors.As(err, &coreErr) || coreErr.IsStartupFailure() {
			fmt.Fprintf(os.Stderr, "%s\n", core.UserMessageOf(dig.RootCause(err)))
		}
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, cli *frontend.CLIFrontend, logger *zap.Logger) error {
	defer logger.Sync()

	text, source, err := readInput(flags)
	if err != nil {
		logger.Error("Failed to read input", zap.Error(err))
		return err
	}

	_, err = cli.ProcessMessage(context.Background(), &core.Message{Text: text, Source: source})
	return err
}

// readInput returns the message from -message, -file or stdin, in that order
func readInput(flags *di.CLIFlags) (string, string, error) {
	if flags.Message != "" {
		return flags.Message, "flag", nil
	}

	if flags.InputFile != "" {
		data, err := os.ReadFile(flags.InputFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), flags.InputFile, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), "stdin", nil
}
