// Package logging builds the zap logger used across PhotoBOM.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// New creates a logger from the log section of the app config.
// Unknown levels fall back to info; any format other than "json" is console.
func New(config model.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Sampling = nil
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// Reports go to stdout; keep diagnostics on stderr.
	zapConfig.OutputPaths = []string{"stderr"}

	return zapConfig.Build()
}

// Must is New that falls back to a no-op logger on error.
func Must(config model.LogConfig) *zap.Logger {
	logger, err := New(config)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
