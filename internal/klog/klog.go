// Package klog builds the kernel's structured logger (called from
// cmd/octoreflex/main.go as klog.Build): level parsed from config,
// JSON (production) or console (development) encoding selected by
// format string.
package klog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build constructs a *zap.Logger for the given level ("debug", "info",
// "warn", "error") and format ("json" or "console"). An empty level
// defaults to "info"; an empty format defaults to "json", matching
// config.Defaults().Observability.
func Build(level, format string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "json"
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("klog.Build: invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}

// Noop returns a logger that discards everything, for tests and
// callers that don't care about kernel diagnostics.
func Noop() *zap.Logger {
	return zap.NewNop()
}
