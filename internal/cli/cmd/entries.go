package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newIDCmd builds a command acting on one history entry.
func newIDCmd(use, short, done string, op func(ctx context.Context, id uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			if err := op(ctx, id); err != nil {
				return daemonError(err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), done+"\n", id)
			}
			return nil
		},
	}
}

func newPinCmd() *cobra.Command {
	return newIDCmd("pin", "Pin an entry so it is never evicted", "Pinned entry %d",
		func(ctx context.Context, id uint64) error { return newClient().Pin(ctx, id) })
}

func newUnpinCmd() *cobra.Command {
	return newIDCmd("unpin", "Unpin an entry", "Unpinned entry %d",
		func(ctx context.Context, id uint64) error { return newClient().Unpin(ctx, id) })
}

func newDeleteCmd() *cobra.Command {
	cmd := newIDCmd("delete", "Delete an entry, pinned or not", "Deleted entry %d",
		func(ctx context.Context, id uint64) error { return newClient().Delete(ctx, id) })
	cmd.Aliases = []string{"rm"}
	return cmd
}

func newCopyCmd() *cobra.Command {
	return newIDCmd("copy", "Put an entry back on the clipboard", "Copied entry %d to the clipboard",
		func(ctx context.Context, id uint64) error { return newClient().Copy(ctx, id) })
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every unpinned entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			n, err := newClient().Clear(ctx)
			if err != nil {
				return daemonError(err)
			}
			if useJSON {
				return printJSON(cmd.OutOrStdout(), map[string]int{"removed": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}
}
