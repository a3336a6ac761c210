package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/config"
	"github.com/berrythewa/clipman/internal/ipc"
)

// Shared variables across all commands
var (
	configFile string
	verbose    bool
	quiet      bool
	useJSON    bool

	cfg    *config.Config
	logger *zap.Logger
)

// requestTimeout bounds every round trip to the daemon.
const requestTimeout = 10 * time.Second

func resetGlobals() {
	configFile = ""
	verbose, quiet, useJSON = false, false, false
	cfg, logger = nil, nil
}

func newClient() *ipc.Client {
	return ipc.NewClient(cfg.SocketPath())
}

func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, requestTimeout)
}

// daemonError adds a hint when the daemon is not running.
func daemonError(err error) error {
	if errors.Is(err, ipc.ErrDaemonUnavailable) {
		return fmt.Errorf("%w (start it with 'clipman daemon start')", ipc.ErrDaemonUnavailable)
	}
	return err
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid entry id %q", arg)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
