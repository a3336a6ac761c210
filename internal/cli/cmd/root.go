// Package cmd implements the clipman command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/common"
	"github.com/berrythewa/clipman/internal/config"
)

// newRootCmd builds the command tree. Every invocation gets fresh flag
// state, which keeps tests independent.
func newRootCmd() *cobra.Command {
	resetGlobals()

	rootCmd := &cobra.Command{
		Use:   "clipman",
		Short: "A clipboard manager with searchable, persistent history",
		Long: `Clipman records everything you copy and keeps it searchable:
  • Text, images and copied file lists
  • Duplicates collapse into one entry moved to the top
  • Pinned entries survive the history limit
  • History is saved across restarts`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is the active config in the clipman config directory)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimize output")
	rootCmd.PersistentFlags().BoolVar(&useJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newPinCmd(),
		newUnpinCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newCopyCmd(),
		newStatusCmd(),
		newFlushCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the CLI logger.
func setup() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err = common.NewLogger(cfg.Log, common.LoggerOptions{
		Verbose: verbose,
		Quiet:   quiet || !verbose,
	})
	if err != nil {
		return err
	}
	logger.Debug("Configuration loaded",
		zap.String("config", configFile),
		zap.String("data_dir", cfg.SystemPaths.DataDir),
		zap.String("socket", cfg.SocketPath()))
	return nil
}
