// Command clipmand runs the clipman daemon in the foreground, for service
// managers that supervise the process themselves.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/common"
	"github.com/berrythewa/clipman/internal/config"
	"github.com/berrythewa/clipman/internal/daemon"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:          "clipmand",
		Short:        "Run the clipman daemon in the foreground",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := common.NewLogger(cfg.Log, common.LoggerOptions{
				Verbose: verbose,
				LogFile: common.DaemonLogFile(cfg),
			})
			if err != nil {
				return err
			}
			defer logger.Sync()

			d, err := daemon.New(cfg, logger, daemon.Options{})
			if err != nil {
				logger.Error("Failed to start daemon", zap.Error(err))
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := d.Run(ctx); err != nil {
				logger.Error("Daemon exited with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
