// Package logging builds the zap logger used by every command.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// config returns a production config adjusted for level and format.
func config(level, format string) (zap.Config, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "", FormatConsole:
		cfg.Encoding = FormatConsole
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	case FormatJSON:
		cfg.Encoding = FormatJSON
	default:
		return zap.Config{}, fmt.Errorf("invalid log format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}
	return cfg, nil
}

// New returns a logger writing to stderr.
func New(level, format string) (*zap.Logger, error) {
	cfg, err := config(level, format)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewTo returns a logger writing to w.
func NewTo(w io.Writer, level, format string) (*zap.Logger, error) {
	cfg, err := config(level, format)
	if err != nil {
		return nil, err
	}
	var enc zapcore.Encoder
	if cfg.Encoding == FormatJSON {
		enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), cfg.Level)
	return zap.New(core), nil
}
