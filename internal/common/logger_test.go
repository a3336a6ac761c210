package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/berrythewa/clipman/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
		opts LoggerOptions
		want zapcore.Level
	}{
		{"configured", config.LogConfig{Level: "warn"}, LoggerOptions{}, zapcore.WarnLevel},
		{"invalid falls back to info", config.LogConfig{Level: "loud"}, LoggerOptions{}, zapcore.InfoLevel},
		{"verbose", config.LogConfig{Level: "error"}, LoggerOptions{Verbose: true}, zapcore.DebugLevel},
		{"quiet", config.LogConfig{Level: "debug", Format: "console"}, LoggerOptions{Quiet: true}, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg, tt.opts)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clipman.log")
	logger, err := NewLogger(config.LogConfig{Level: "info", Format: "json"}, LoggerOptions{LogFile: path})
	require.NoError(t, err)

	logger.Info("History restored")
	logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"History restored"`), string(data))
}

func TestDaemonLogFile(t *testing.T) {
	cfg := &config.Config{SystemPaths: config.ConfigPaths{LogDir: "/var/log/clipman"}}
	assert.Empty(t, DaemonLogFile(cfg))
	cfg.Log.EnableFileLogging = true
	assert.Equal(t, "/var/log/clipman/clipman.log", DaemonLogFile(cfg))
}
