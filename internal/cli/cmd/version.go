package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, set by main.
var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

// SetVersionInfo allows setting version info from outside
func SetVersionInfo(v, bt, c string) {
	version = v
	buildTime = bt
	commit = c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if useJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":    version,
					"build_time": buildTime,
					"commit":     commit,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Clipman\n")
			fmt.Fprintf(cmd.OutOrStdout(), "Version:    %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Time: %s\n", buildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit:     %s\n", commit)
			return nil
		},
	}
}
