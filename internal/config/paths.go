package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Hooks replaced in tests.
var (
	getBaseDir        = defaultBaseDir
	getDefaultDataDir = defaultDataDir
	getRuntimeDir     = defaultRuntimeDir
)

// ConfigPaths holds all relevant paths for the application
type ConfigPaths struct {
	BaseDir      string // Base directory for all config files
	ActiveDir    string // Directory containing active configuration
	ActiveConfig string // Path to active config file
	DataDir      string // Directory for application data
	HistoryFile  string // JSON Lines history file
	DBFile       string // Path to database file
	SQLiteFile   string // SQLite history database
	LogDir       string // Directory for log files
	LockFile     string // Single instance lock
	SocketPath   string // IPC socket
}

// GetConfigPaths returns the platform-specific configuration paths.
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}
	dataDir, err := getDefaultDataDir()
	if err != nil {
		return nil, err
	}
	return buildPaths(baseDir, dataDir), nil
}

func buildPaths(baseDir, dataDir string) *ConfigPaths {
	runDir := getRuntimeDir()
	if runDir == "" {
		runDir = dataDir
	}
	return &ConfigPaths{
		BaseDir:      baseDir,
		ActiveDir:    filepath.Join(baseDir, "active"),
		ActiveConfig: filepath.Join(baseDir, "active", "config.yaml"),
		DataDir:      dataDir,
		HistoryFile:  filepath.Join(dataDir, "history.jsonl"),
		DBFile:       filepath.Join(dataDir, "clipman.db"),
		SQLiteFile:   filepath.Join(dataDir, "clipman.sqlite"),
		LogDir:       filepath.Join(dataDir, "logs"),
		LockFile:     filepath.Join(dataDir, "clipman.lock"),
		SocketPath:   filepath.Join(runDir, "clipman.sock"),
	}
}

// Ensure creates the data and log directories.
func (p *ConfigPaths) Ensure() error {
	for _, dir := range []string{p.DataDir, p.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// GetActiveConfigPath returns the path to the currently active config
func GetActiveConfigPath() (string, error) {
	paths, err := GetConfigPaths()
	if err != nil {
		return "", err
	}
	return paths.ActiveConfig, nil
}

func defaultBaseDir() (string, error) {
	if dir := os.Getenv("CLIPMAN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(configDir, "Clipman"), nil
	case "darwin":
		return filepath.Join(configDir, "com.berrythewa.clipman"), nil
	default: // Linux and others
		return filepath.Join(configDir, "clipman"), nil
	}
}

func defaultDataDir() (string, error) {
	if dir := os.Getenv("CLIPMAN_DATA_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "windows":
		if appData, err := os.UserConfigDir(); err == nil {
			return filepath.Join(appData, "Clipman", "Data"), nil
		}
		return filepath.Join(homeDir, "AppData", "Local", "Clipman"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Clipman"), nil
	default: // Linux and others
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "clipman"), nil
		}
		return filepath.Join(homeDir, ".clipman"), nil
	}
}

func defaultRuntimeDir() string {
	if runtime.GOOS == "linux" {
		return os.Getenv("XDG_RUNTIME_DIR")
	}
	return ""
}
