package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/internal/types"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func withFixedNow(t *testing.T) {
	t.Helper()
	old := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = old })
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KB",
		1536:    "1.5 KB",
		1 << 20: "1.0 MB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatSize(in))
	}
}

func TestFormatRelativeTime(t *testing.T) {
	withFixedNow(t)
	assert.Equal(t, "just now", FormatRelativeTime(fixedNow.Add(-10*time.Second)))
	assert.Equal(t, "5 minutes ago", FormatRelativeTime(fixedNow.Add(-5*time.Minute)))
	assert.Equal(t, "3 hours ago", FormatRelativeTime(fixedNow.Add(-3*time.Hour)))
	assert.Equal(t, "2 days ago", FormatRelativeTime(fixedNow.Add(-48*time.Hour)))
	assert.Equal(t, "Apr 1, 2024", FormatRelativeTime(fixedNow.AddDate(0, -1, 0)))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "hello", TruncateText("hello", 10))
	assert.Equal(t, "hel...", TruncateText("hello world", 6))
	assert.Equal(t, "hé", TruncateText("héllo", 2))
	assert.Equal(t, "anything", TruncateText("anything", 0))
	assert.Equal(t, "日本...", TruncateText("日本語テキスト", 7))
}

func TestTruncateLines(t *testing.T) {
	assert.Equal(t, "a\nb\n... (2 more lines)", TruncateLines("a\nb\nc\nd", 2))
	assert.Equal(t, "a\nb", TruncateLines("a\nb", 2))
}

func TestFormatTextPreview(t *testing.T) {
	assert.Equal(t, "line one line two", FormatTextPreview("line one\r\nline two", 40))
	assert.Equal(t, "", FormatTextPreview("", 40))
}

func TestFormatFile(t *testing.T) {
	opts := PlainOptions()
	assert.Equal(t, "[Empty file list]", FormatFile(nil, opts))
	assert.Equal(t, "/a\n/b\n/c\n... and 2 more files", FormatFile([]string{"/a", "/b", "/c", "/d", "/e"}, opts))
	assert.Equal(t, "[2 files] /a", FormatFilePreview([]string{"/a", "/b"}, 20))
	assert.Equal(t, "/only", FormatFilePreview([]string{"/only"}, 20))
}

func TestFormatImage(t *testing.T) {
	info := &ipc.ImageInfo{Format: "png", Width: 640, Height: 480}
	assert.Equal(t, "[png image 640x480 - 2.0 KB]", FormatImage(info, 2048))
	assert.Equal(t, "[Image 640x480 2.0 KB]", FormatImagePreview(info, 2048))
	assert.Equal(t, "[Image 10 B]", FormatImagePreview(nil, 10))
}

func TestFormatter_Entry(t *testing.T) {
	withFixedNow(t)
	e := &ipc.HistoryEntry{
		ID:         42,
		Kind:       types.KindText,
		Hash:       "zQmabcdefghijklmnopqrstuvwxyz",
		Size:       11,
		Pinned:     true,
		CreatedAt:  fixedNow.Add(-2 * time.Hour),
		LastSeenAt: fixedNow.Add(-5 * time.Minute),
		Text:       "hello\nworld",
	}

	out := New(PlainOptions()).FormatEntry(e)
	assert.Equal(t, strings.Join([]string{
		"#42 text [pinned]",
		"Created: 2 hours ago • Last seen: 5 minutes ago • Size: 11 B • Hash: opqrstuvwxyz",
		"▼ Content",
		"  hello",
		"  world",
	}, "\n"), out)

	compact := PlainOptions()
	compact.Compact = true
	assert.Equal(t, "#42 text [pinned] hello world", New(compact).FormatEntry(e))
}

func TestFormatter_EntryList(t *testing.T) {
	withFixedNow(t)
	opts := PlainOptions()
	opts.Compact = true
	entries := []ipc.HistoryEntry{
		{ID: 2, Kind: types.KindFiles, Files: []string{"/a", "/b"}, CreatedAt: fixedNow, LastSeenAt: fixedNow},
		{ID: 1, Kind: types.KindImage, Size: 100, Image: &ipc.ImageInfo{Format: "png", Width: 1, Height: 2}},
	}
	assert.Equal(t, strings.Join([]string{
		"Clipboard History (2 entries)",
		"",
		"#2 files [2 files] /a",
		"#1 image [Image 1x2 100 B]",
	}, "\n"), FormatEntryList(entries, opts))

	assert.Equal(t, "No clipboard history", FormatEntryList(nil, opts))
}

func TestFormatStatus(t *testing.T) {
	withFixedNow(t)
	out := FormatStatus(&ipc.StatusInfo{
		PID:            123,
		StartedAt:      fixedNow.Add(-time.Minute * 3),
		Clipboard:      "golang.design",
		StorageBackend: "file",
		StoragePath:    "/tmp/history.jsonl",
		Entries:        5,
		Pinned:         1,
		Capacity:       50,
		UnpinnedBytes:  2048,
	}, PlainOptions())

	assert.Contains(t, out, "Clipman Daemon")
	assert.Contains(t, out, "  PID: 123")
	assert.Contains(t, out, "  Started: 3 minutes ago")
	assert.Contains(t, out, "  Storage: file (/tmp/history.jsonl)")
	assert.Contains(t, out, "  Unpinned size: 2.0 KB")
	assert.NotContains(t, out, "\033[")
}

func TestColorizeIf(t *testing.T) {
	assert.Equal(t, "x", ColorizeIf("x", PinColor, false))
	assert.Equal(t, PinColor+"x"+Reset, ColorizeIf("x", PinColor, true))
	assert.Equal(t, "", ColorizeIf("", PinColor, true))
	assert.Equal(t, "x", ColorizeIf("x", "", true))
	assert.Equal(t, Bold+"x"+Reset, BoldIf("x", true))
	assert.Equal(t, "x", DimIf("x", false))
}

func TestFormatStatLine_LabelColor(t *testing.T) {
	opts := DefaultOptions()
	opts.UseColors = true
	assert.Equal(t, "  "+LabelColor+"PID:"+Reset+" 1", formatStatLine("PID", "1", opts))
	opts.UseColors = false
	assert.Equal(t, "  PID: 1", formatStatLine("PID", "1", opts))
}
