package format

import "github.com/berrythewa/clipman/internal/types"

// Options controls formatting behavior
type Options struct {
	UseColors    bool
	UseIcons     bool
	MaxWidth     int  // Max content width (0 = no limit)
	MaxLines     int  // Max content lines (0 = no limit)
	ShowMetadata bool // Show hash, timestamps, etc.
	Compact      bool // Use compact single-line format
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		UseColors:    true,
		UseIcons:     true,
		MaxWidth:     80,
		MaxLines:     10,
		ShowMetadata: true,
		Compact:      false,
	}
}

// CompactOptions returns options for compact single-line display
func CompactOptions() Options {
	opts := DefaultOptions()
	opts.Compact = true
	opts.ShowMetadata = false
	opts.MaxLines = 1
	return opts
}

// PlainOptions disables colors and icons, for pipes and tests.
func PlainOptions() Options {
	opts := DefaultOptions()
	opts.UseColors = false
	opts.UseIcons = false
	return opts
}

// ContentIcons maps content kinds to Unicode icons
var ContentIcons = map[types.Kind]string{
	types.KindText:  "📝",
	types.KindImage: "🖼️",
	types.KindFiles: "📁",
}

// ContentColors maps content kinds to colors
var ContentColors = map[types.Kind]string{
	types.KindText:  Cyan,
	types.KindImage: Magenta,
	types.KindFiles: Yellow,
}
