// Package format renders history entries and daemon status for the terminal.
package format

import (
	"fmt"
	"strings"

	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/internal/types"
)

// Formatter is the main formatting orchestrator that delegates to specialized formatters
type Formatter struct {
	options Options
}

// New creates a new formatter with the given options
func New(opts Options) *Formatter {
	return &Formatter{
		options: opts,
	}
}

// NewDefault creates a new formatter with default options
func NewDefault() *Formatter {
	return New(DefaultOptions())
}

// FormatEntry formats a single history entry using the appropriate specialized formatter
func (f *Formatter) FormatEntry(e *ipc.HistoryEntry) string {
	if e == nil {
		return ColorizeIf("No content", MutedColor, f.options.UseColors)
	}

	var parts []string
	parts = append(parts, f.formatHeader(e))

	if f.options.Compact {
		preview := f.formatPreview(e, 50)
		parts = append(parts, " "+DimIf(preview, f.options.UseColors))
		return strings.Join(parts, "")
	}

	if f.options.ShowMetadata {
		parts = append(parts, f.formatMetadata(e))
	}

	if body := f.formatData(e); body != "" {
		parts = append(parts, CreateBox("Content", body, f.options))
	}

	return strings.Join(parts, "\n")
}

// FormatEntryList formats multiple entries, most recently used first
func (f *Formatter) FormatEntryList(entries []ipc.HistoryEntry) string {
	if len(entries) == 0 {
		return ColorizeIf("No clipboard history", MutedColor, f.options.UseColors)
	}

	var parts []string
	parts = append(parts, f.formatListHeader(len(entries)))
	parts = append(parts, "")

	for i := range entries {
		if f.options.Compact {
			parts = append(parts, f.FormatEntry(&entries[i]))
			continue
		}
		parts = append(parts, f.FormatEntry(&entries[i]))
		if i < len(entries)-1 {
			parts = append(parts, CreateSeparator(f.options))
		}
	}

	return strings.Join(parts, "\n")
}

// FormatStatus formats the daemon status
func (f *Formatter) FormatStatus(st *ipc.StatusInfo) string {
	return FormatStatus(st, f.options)
}

// formatHeader creates the header with id, icon, kind and pin marker
func (f *Formatter) formatHeader(e *ipc.HistoryEntry) string {
	var parts []string

	parts = append(parts, BoldIf(fmt.Sprintf("#%d", e.ID), f.options.UseColors))

	if f.options.UseIcons {
		if icon, ok := ContentIcons[e.Kind]; ok {
			parts = append(parts, icon)
		}
	}

	kind := string(e.Kind)
	if color, ok := ContentColors[e.Kind]; ok {
		kind = ColorizeIf(kind, color, f.options.UseColors)
	}
	parts = append(parts, kind)

	if e.Pinned {
		pin := "[pinned]"
		if f.options.UseIcons {
			pin = "📌"
		}
		parts = append(parts, ColorizeIf(pin, PinColor, f.options.UseColors))
	}

	return strings.Join(parts, " ")
}

// formatMetadata creates the dimmed metadata line
func (f *Formatter) formatMetadata(e *ipc.HistoryEntry) string {
	var parts []string

	parts = append(parts, "Created: "+FormatRelativeTime(e.CreatedAt))
	if !e.LastSeenAt.Equal(e.CreatedAt) {
		parts = append(parts, "Last seen: "+FormatRelativeTime(e.LastSeenAt))
	}
	parts = append(parts, "Size: "+FormatSize(e.Size))
	if e.Hash != "" {
		parts = append(parts, "Hash: "+shortHash(e.Hash))
	}

	return DimIf(strings.Join(parts, " • "), f.options.UseColors)
}

// formatData delegates to specialized formatters based on the entry kind
func (f *Formatter) formatData(e *ipc.HistoryEntry) string {
	switch e.Kind {
	case types.KindText:
		return FormatText(e.Text, f.options)
	case types.KindImage:
		return FormatImage(e.Image, e.Size)
	case types.KindFiles:
		return FormatFile(e.Files, f.options)
	}
	return ""
}

// formatPreview creates a brief single-line preview
func (f *Formatter) formatPreview(e *ipc.HistoryEntry, maxLen int) string {
	switch e.Kind {
	case types.KindText:
		if e.Text == "" {
			return "(empty)"
		}
		return FormatTextPreview(e.Text, maxLen)
	case types.KindImage:
		return FormatImagePreview(e.Image, e.Size)
	case types.KindFiles:
		return FormatFilePreview(e.Files, maxLen)
	}
	return ""
}

func (f *Formatter) formatListHeader(count int) string {
	title := fmt.Sprintf("Clipboard History (%d entries)", count)
	if f.options.UseIcons {
		title = "📋 " + title
	}
	return ColorizeIf(title, TitleColor, f.options.UseColors)
}

// shortHash mirrors types.Hash.Short on the wire form.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[len(h)-12:]
}

// FormatEntryList formats entries with the given options
func FormatEntryList(entries []ipc.HistoryEntry, opts Options) string {
	return New(opts).FormatEntryList(entries)
}
