package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/config"
)

// EnvDaemon is set in the environment of a detached daemon process.
const EnvDaemon = "CLIPMAN_DAEMON"

// IsDetached reports whether this process was started by Detach.
func IsDetached() bool {
	return os.Getenv(EnvDaemon) == "1"
}

// Detach re-executes the current binary in the background with args,
// stripped of --detach, and returns the child pid. The child's stdout and
// stderr go to logPath.
func Detach(args []string, logPath string, logger *zap.Logger) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}
	logF, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "--detach" && arg != "-d" {
			filtered = append(filtered, arg)
		}
	}

	cmd := exec.Command(executable, filtered...)
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(), EnvDaemon+"=1")
	cmd.SysProcAttr = detachAttrs()

	logger.Debug("Starting detached daemon", zap.String("executable", executable), zap.Strings("args", filtered))
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release daemon process: %w", err)
	}
	logger.Info("Daemon started in background", zap.Int("pid", pid), zap.String("log", logPath))
	return pid, nil
}

// RunningPID returns the pid recorded in the lock file of a running daemon.
func RunningPID(cfg *config.Config) (int, error) {
	data, err := os.ReadFile(cfg.SystemPaths.LockFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s: %q", cfg.SystemPaths.LockFile, data)
	}
	return pid, nil
}

// Stop asks the running daemon to shut down and waits up to timeout for
// its lock file to disappear.
func Stop(cfg *config.Config, timeout time.Duration) error {
	pid, err := RunningPID(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	if err := terminate(pid); err != nil {
		return fmt.Errorf("failed to stop daemon (pid %d): %w", pid, err)
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(cfg.SystemPaths.LockFile); os.IsNotExist(err) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit within %s", pid, timeout)
}
