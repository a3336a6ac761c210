// Package common holds helpers shared by the daemon and the CLI.
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/berrythewa/clipman/internal/config"
)

// LoggerOptions adjust the configured logger for one invocation.
type LoggerOptions struct {
	Verbose bool // development config at debug level
	Quiet   bool // warnings and above only
	// LogFile, when set, receives a copy of every entry. It is normally
	// derived from the log directory when file logging is enabled.
	LogFile string
}

// NewLogger creates a new logger instance
func NewLogger(cfg config.LogConfig, opts LoggerOptions) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if opts.Verbose {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if opts.Quiet {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	if cfg.Format == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zcfg.EncoderConfig.TimeKey = "time"

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zcfg.OutputPaths = append(zcfg.OutputPaths, opts.LogFile)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// DaemonLogFile returns the daemon log location when file logging is on.
func DaemonLogFile(cfg *config.Config) string {
	if !cfg.Log.EnableFileLogging || cfg.SystemPaths.LogDir == "" {
		return ""
	}
	return filepath.Join(cfg.SystemPaths.LogDir, "clipman.log")
}
