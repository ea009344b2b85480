// Package logging builds the zap loggers used for extraction diagnostics.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log formats.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// New returns a logger for the given format. Console output is human-readable with
// colored levels; json uses the production encoder. Both write to stderr.
func New(format string) (*zap.Logger, error) {
	var config zap.Config
	switch format {
	case "", ConsoleFormat:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		config.DisableStacktrace = true
	case JSONFormat:
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
