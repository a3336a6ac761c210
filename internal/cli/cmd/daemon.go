package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/common"
	"github.com/berrythewa/clipman/internal/daemon"
	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/pkg/format"
)

// newDaemonCmd creates the daemon command
func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the Clipman daemon",
		Long: `Manage the Clipman daemon process that watches the clipboard and
keeps the history.

The daemon can be:
  • Started in the foreground or background
  • Stopped gracefully
  • Checked for status`,
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the Clipman daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if detach && !daemon.IsDetached() {
				logPath := filepath.Join(cfg.SystemPaths.LogDir, "clipman_daemon.log")
				pid, err := daemon.Detach(os.Args[1:], logPath, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Clipman daemon started in background (PID: %d)\n", pid)
				return nil
			}

			dlog, err := common.NewLogger(cfg.Log, common.LoggerOptions{
				Verbose: verbose,
				Quiet:   quiet,
				LogFile: common.DaemonLogFile(cfg),
			})
			if err != nil {
				return err
			}
			defer dlog.Sync()

			d, err := daemon.New(cfg, dlog, daemon.Options{})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := d.Run(ctx); err != nil {
				dlog.Error("Daemon exited with error", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "run in background")
	return cmd
}

func newDaemonStopCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the Clipman daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := daemon.Stop(cfg, timeout)
			if errors.Is(err, daemon.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Clipman daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Clipman daemon stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the daemon to save and exit")
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()

			st, err := newClient().Status(ctx)
			if errors.Is(err, ipc.ErrDaemonUnavailable) {
				if useJSON {
					return printJSON(cmd.OutOrStdout(), map[string]bool{"running": false})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Clipman daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}

			if useJSON {
				return printJSON(cmd.OutOrStdout(), st)
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.FormatStatus(st, outputOptions(cmd)))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}
