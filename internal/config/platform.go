package config

import (
	"runtime"
	"time"
)

// PlatformDefaults holds platform-specific default values
type PlatformDefaults struct {
	PollInterval   time.Duration `yaml:"poll_interval"`
	MaxContentSize int64         `yaml:"max_content_size"`
	ServiceName    string        `yaml:"service_name"`
}

// GetPlatformDefaults returns platform-optimized default values
func GetPlatformDefaults() PlatformDefaults {
	switch runtime.GOOS {
	case "windows":
		return PlatformDefaults{
			PollInterval:   250 * time.Millisecond,
			MaxContentSize: 50 * 1024 * 1024,
			ServiceName:    "Clipman Service",
		}
	case "darwin":
		return PlatformDefaults{
			// changeCount reads are cheap but pasteboard access is not
			PollInterval:   500 * time.Millisecond,
			MaxContentSize: 30 * 1024 * 1024,
			ServiceName:    "com.berrythewa.clipman",
		}
	default: // Linux and other Unix-like systems
		return PlatformDefaults{
			PollInterval:   250 * time.Millisecond,
			MaxContentSize: 32 * 1024 * 1024,
			ServiceName:    "clipman",
		}
	}
}

// ApplyPlatformDefaults fills unset monitor values with platform defaults.
func ApplyPlatformDefaults(cfg *Config) {
	defaults := GetPlatformDefaults()
	if cfg.Monitor.PollInterval == 0 {
		cfg.Monitor.PollInterval = defaults.PollInterval
	}
	if cfg.Monitor.MaxContentSize == 0 {
		cfg.Monitor.MaxContentSize = defaults.MaxContentSize
	}
}
