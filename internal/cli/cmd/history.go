package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/internal/types"
	"github.com/berrythewa/clipman/pkg/format"
)

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		typeFilter string
		query      string
		regex      string
		pinned     bool
		compact    bool
		maxLines   int
		maxWidth   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List clipboard history",
		Long: `List clipboard history entries, most recently used first.

Examples:
  clipman history                    # Show last 20 entries
  clipman history -n 50              # Show last 50 entries
  clipman history --type text        # Show only text entries
  clipman history -q invoice         # Search text and file paths
  clipman history --pinned           # Show pinned entries
  clipman history --compact          # Compact single-line format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hargs := ipc.HistoryArgs{
				Limit:  limit,
				Query:  query,
				Regex:  regex,
				Pinned: pinned,
			}
			if typeFilter != "" {
				kind, err := types.ParseKind(typeFilter)
				if err != nil {
					return err
				}
				hargs.Kind = kind
			}

			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			entries, err := newClient().History(ctx, hargs)
			if err != nil {
				return daemonError(err)
			}

			if useJSON {
				if entries == nil {
					entries = []ipc.HistoryEntry{}
				}
				return printJSON(cmd.OutOrStdout(), entries)
			}

			opts := outputOptions(cmd)
			if compact {
				opts.Compact = true
				opts.ShowMetadata = false
			}
			opts.MaxLines = maxLines
			opts.MaxWidth = maxWidth
			fmt.Fprintln(cmd.OutOrStdout(), format.FormatEntryList(entries, opts))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries to show (0 = all)")
	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "filter by content kind (text, image, files)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive substring of text or file paths")
	cmd.Flags().StringVar(&regex, "regex", "", "regular expression matched against text or file paths")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "show only pinned entries")

	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "use compact single-line format")
	cmd.Flags().IntVar(&maxLines, "max-lines", 10, "maximum lines to show per entry (0 = no limit)")
	cmd.Flags().IntVar(&maxWidth, "max-width", 80, "maximum width per line (0 = no limit)")
	addOutputFlags(cmd)

	return cmd
}

// addOutputFlags registers the color and icon switches.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-colors", false, "disable colored output")
	cmd.Flags().Bool("no-icons", false, "disable icons in output")
}

// outputOptions turns colors off when output is not a terminal.
func outputOptions(cmd *cobra.Command) format.Options {
	opts := format.DefaultOptions()
	if !isTTY(cmd.OutOrStdout()) {
		opts.UseColors = false
	}
	if v, err := cmd.Flags().GetBool("no-colors"); err == nil && v {
		opts.UseColors = false
	}
	if v, err := cmd.Flags().GetBool("no-icons"); err == nil && v {
		opts.UseIcons = false
	}
	return opts
}

func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
