package format

import (
	"fmt"

	"github.com/berrythewa/clipman/internal/ipc"
)

// FormatImage formats image metadata for display
func FormatImage(info *ipc.ImageInfo, size int64) string {
	if info == nil {
		return fmt.Sprintf("[Image - %s]", FormatSize(size))
	}
	return fmt.Sprintf("[%s image %dx%d - %s]", info.Format, info.Width, info.Height, FormatSize(size))
}

// FormatImagePreview creates a short preview of an image entry
func FormatImagePreview(info *ipc.ImageInfo, size int64) string {
	if info == nil {
		return fmt.Sprintf("[Image %s]", FormatSize(size))
	}
	return fmt.Sprintf("[Image %dx%d %s]", info.Width, info.Height, FormatSize(size))
}
