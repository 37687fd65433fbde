// Package logging configures the process-wide zap logger per the
// --verbose levels of spec.md §6: silent, warnings, noisy.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is one of the three verbosity settings accepted by --verbose.
type Level string

const (
	Silent   Level = "silent"
	Warnings Level = "warnings"
	Noisy    Level = "noisy"
)

// New builds a zap.Logger writing to stderr, at the zapcore level Level
// maps to: Silent logs only Fatal (nothing below it is ever emitted in
// normal operation), Warnings logs Warn and above, Noisy logs everything
// from Debug up. The encoder config mirrors zmux-server's cmd/zmux-server
// main.go: a capital, colorized level field and no timestamp key.
func New(level Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	switch level {
	case Silent:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.FatalLevel)
	case Noisy:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	return cfg.Build()
}
