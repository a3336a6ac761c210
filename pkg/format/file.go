package format

import (
	"fmt"
	"strings"
)

const maxFilesShown = 3

// FormatFile formats a file list for display
func FormatFile(files []string, opts Options) string {
	if len(files) == 0 {
		return "[Empty file list]"
	}

	shown := files
	if len(files) > maxFilesShown {
		shown = files[:maxFilesShown]
	}
	lines := make([]string, len(shown))
	for i, f := range shown {
		lines[i] = TruncateText(f, opts.MaxWidth)
	}

	out := strings.Join(lines, "\n")
	if remaining := len(files) - len(shown); remaining > 0 {
		out += fmt.Sprintf("\n... and %d more files", remaining)
	}
	return out
}

// FormatFilePreview creates a short preview of a file list
func FormatFilePreview(files []string, maxLen int) string {
	switch len(files) {
	case 0:
		return "[Empty file list]"
	case 1:
		return TruncateText(files[0], maxLen)
	}
	return fmt.Sprintf("[%d files] %s", len(files), TruncateText(files[0], maxLen))
}
