// Package config loads the clipman configuration from YAML, applying
// platform defaults and CLIPMAN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	Monitor MonitorConfig `yaml:"monitor"`
	Storage StorageConfig `yaml:"storage"`
	IPC     IPCConfig     `yaml:"ipc"`

	// System paths are resolved at load time and never written out.
	SystemPaths ConfigPaths `yaml:"-"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level             string `yaml:"level"`
	Format            string `yaml:"format"` // "json" or "console"
	EnableFileLogging bool   `yaml:"enable_file_logging"`
}

// HistoryConfig bounds the in-memory history.
type HistoryConfig struct {
	Capacity       int   `yaml:"capacity"`
	MaxMemoryBytes int64 `yaml:"max_memory_bytes"`
}

// MonitorConfig controls clipboard polling.
type MonitorConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	MaxContentSize   int64         `yaml:"max_content_size"`
	IgnoreWhitespace bool          `yaml:"ignore_whitespace"`
	ExcludePatterns  []string      `yaml:"exclude_patterns,omitempty"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Backend      string        `yaml:"backend"` // "file", "bolt" or "sqlite"
	Path         string        `yaml:"path,omitempty"`
	MaxItemBytes int64         `yaml:"max_item_bytes"`
	SaveDebounce time.Duration `yaml:"save_debounce"`
}

// IPCConfig configures the control socket.
type IPCConfig struct {
	SocketPath string `yaml:"socket_path,omitempty"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	cfg := &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		History: HistoryConfig{
			Capacity:       50,
			MaxMemoryBytes: 64 * 1024 * 1024,
		},
		Storage: StorageConfig{
			Backend:      "file",
			MaxItemBytes: 2 * 1024 * 1024,
			SaveDebounce: 2 * time.Second,
		},
	}
	ApplyPlatformDefaults(cfg)
	if paths, err := GetConfigPaths(); err == nil {
		cfg.SystemPaths = *paths
	}
	return cfg
}

// Load loads the configuration from the specified file, creating it with
// defaults if it does not exist. Values missing from the file keep their
// defaults; CLIPMAN_* environment variables override both.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		var err error
		configPath, err = GetActiveConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	paths, err := GetConfigPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data paths: %w", err)
	}

	cfg := DefaultConfig()
	cfg.SystemPaths = *paths

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}
	ApplyPlatformDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the specified file
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the daemon cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.History.Capacity < 0 {
		errs = append(errs, fmt.Errorf("history.capacity must not be negative, got %d", c.History.Capacity))
	}
	if c.History.MaxMemoryBytes < 0 {
		errs = append(errs, fmt.Errorf("history.max_memory_bytes must not be negative, got %d", c.History.MaxMemoryBytes))
	}
	if c.Monitor.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("monitor.poll_interval must be positive, got %s", c.Monitor.PollInterval))
	}
	if c.Storage.SaveDebounce <= 0 {
		errs = append(errs, fmt.Errorf("storage.save_debounce must be positive, got %s", c.Storage.SaveDebounce))
	}
	switch c.Storage.Backend {
	case "file", "bolt", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be one of file, bolt, sqlite, got %q", c.Storage.Backend))
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"console\", got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// StoragePath returns the configured storage location, or the default for
// the configured backend.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case "bolt":
		return c.SystemPaths.DBFile
	case "sqlite":
		return c.SystemPaths.SQLiteFile
	}
	return c.SystemPaths.HistoryFile
}

// SocketPath returns the configured IPC socket, or the default one.
func (c *Config) SocketPath() string {
	if c.IPC.SocketPath != "" {
		return c.IPC.SocketPath
	}
	return c.SystemPaths.SocketPath
}

// overrideFromEnv overrides configuration values from environment variables
func overrideFromEnv(cfg *Config) error {
	if val := os.Getenv("CLIPMAN_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("CLIPMAN_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv("CLIPMAN_HISTORY_CAPACITY"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("CLIPMAN_HISTORY_CAPACITY: %w", err)
		}
		cfg.History.Capacity = n
	}
	if val := os.Getenv("CLIPMAN_POLL_INTERVAL"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("CLIPMAN_POLL_INTERVAL: %w", err)
		}
		cfg.Monitor.PollInterval = d
	}
	if val := os.Getenv("CLIPMAN_IGNORE_WHITESPACE"); val != "" {
		cfg.Monitor.IgnoreWhitespace = val == "true" || val == "1"
	}
	if val := os.Getenv("CLIPMAN_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("CLIPMAN_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv("CLIPMAN_SOCKET"); val != "" {
		cfg.IPC.SocketPath = val
	}
	return nil
}
