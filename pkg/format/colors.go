package format

// ANSI escape sequences.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Cyan    = "\033[36m"
	Magenta = "\033[35m"
	Yellow  = "\033[33m"
	Gray    = "\033[37m"
)

// Colors by role in the rendered output.
const (
	TitleColor = "\033[94m" // list and status titles
	LabelColor = "\033[96m" // status labels
	PinColor   = "\033[93m" // pinned marker
	MutedColor = Gray       // placeholders for empty output
)

// ColorizeIf wraps text in color when useColors is set. Empty text and an
// empty color are returned unchanged so no stray escapes are emitted.
func ColorizeIf(text, color string, useColors bool) string {
	if !useColors || color == "" || text == "" {
		return text
	}
	return color + text + Reset
}

// BoldIf is ColorizeIf with bold.
func BoldIf(text string, useColors bool) string {
	return ColorizeIf(text, Bold, useColors)
}

// DimIf is ColorizeIf with dim.
func DimIf(text string, useColors bool) string {
	return ColorizeIf(text, Dim, useColors)
}
