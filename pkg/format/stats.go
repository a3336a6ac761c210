package format

import (
	"fmt"
	"strings"

	"github.com/berrythewa/clipman/internal/ipc"
)

// FormatStatus formats the daemon status for display
func FormatStatus(st *ipc.StatusInfo, opts Options) string {
	if st == nil {
		return ColorizeIf("Daemon status unavailable", MutedColor, opts.UseColors)
	}

	var parts []string

	title := "📊 Clipman Daemon"
	if !opts.UseIcons {
		title = "Clipman Daemon"
	}
	parts = append(parts, ColorizeIf(title, TitleColor, opts.UseColors))
	parts = append(parts, "")

	parts = append(parts, formatStatLine("PID", fmt.Sprintf("%d", st.PID), opts))
	if !st.StartedAt.IsZero() {
		parts = append(parts, formatStatLine("Started", FormatRelativeTime(st.StartedAt), opts))
	}
	parts = append(parts, formatStatLine("Clipboard", st.Clipboard, opts))
	parts = append(parts, formatStatLine("Storage", fmt.Sprintf("%s (%s)", st.StorageBackend, st.StoragePath), opts))

	parts = append(parts, "")
	parts = append(parts, formatSubHeader("History", opts))
	parts = append(parts, formatStatLine("Entries", fmt.Sprintf("%d", st.Entries), opts))
	parts = append(parts, formatStatLine("Pinned", fmt.Sprintf("%d", st.Pinned), opts))
	parts = append(parts, formatStatLine("Capacity", fmt.Sprintf("%d", st.Capacity), opts))
	parts = append(parts, formatStatLine("Unpinned size", FormatSize(st.UnpinnedBytes), opts))

	return strings.Join(parts, "\n")
}

// formatStatLine formats a statistics line with label and value
func formatStatLine(label, value string, opts Options) string {
	return fmt.Sprintf("  %s %s", ColorizeIf(label+":", LabelColor, opts.UseColors), value)
}

// formatSubHeader formats a section subheader
func formatSubHeader(title string, opts Options) string {
	return ColorizeIf(title, TitleColor, opts.UseColors)
}
