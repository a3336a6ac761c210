package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Save the clipboard history to disk now",
		Long: `Ask the daemon to write its history to disk immediately instead of
waiting for the save debounce to expire.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			if err := newClient().Flush(ctx); err != nil {
				return daemonError(err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "History saved to %s\n", cfg.StoragePath())
			}
			return nil
		},
	}
}
