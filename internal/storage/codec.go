package storage

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/berrythewa/clipman/internal/types"
	"github.com/berrythewa/clipman/pkg/compression"
)

var (
	errHashMismatch  = errors.New("content hash mismatch")
	errReferenceOnly = errors.New("payload not stored inline")
)

// header is the first line of a history file and the meta record of the
// database backends.
type header struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	Count         int       `json:"count"`
}

func (h header) check() error {
	if h.SchemaVersion < 1 || h.SchemaVersion > SchemaVersion {
		return fmt.Errorf("%w: %d (supported %d)", ErrIncompatibleSchema, h.SchemaVersion, SchemaVersion)
	}
	return nil
}

type imageMeta struct {
	Format string `json:"format,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// record is the persisted form of one history entry. Hash is the base58
// digest of the persisted payload, which differs from the live entry when the
// payload was truncated.
type record struct {
	ID         uint64     `json:"id"`
	Kind       types.Kind `json:"kind"`
	Data       []byte     `json:"data,omitempty"`
	Compressed bool       `json:"compressed,omitempty"`
	Hash       string     `json:"hash"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	Pinned     bool       `json:"pinned,omitempty"`
	Truncated  bool       `json:"truncated,omitempty"`
	Ref        string     `json:"ref,omitempty"`
	Size       int64      `json:"size"`
	Image      *imageMeta `json:"image,omitempty"`
}

// encodeRecord converts an entry to its persisted form, applying the size cap:
// text is cut at a rune boundary, file lists keep the whole paths that fit and
// images are stored as a CID reference without bytes.
func encodeRecord(it types.ClipboardItem, maxBytes int64) (record, error) {
	content := it.Content
	rec := record{
		ID:         uint64(it.ID),
		Kind:       content.Kind(),
		CreatedAt:  it.CreatedAt.UTC(),
		LastSeenAt: it.LastSeenAt.UTC(),
		Pinned:     it.Pinned,
		Size:       content.Size(),
	}

	// Pinned images are kept inline whatever their size: a reference-only
	// record cannot be loaded back.
	oversized := int64(len(content.Data())) > maxBytes
	if oversized && !(it.Pinned && content.Kind() == types.KindImage) {
		switch content.Kind() {
		case types.KindText:
			content = types.NewText(truncateText(content.Text(), maxBytes))
		case types.KindFiles:
			content = types.NewFiles(truncateFiles(content.Files(), maxBytes))
		case types.KindImage:
			img, _ := content.Image()
			rec.Hash = types.HashOf(content).String()
			rec.Ref = types.HashOf(content).CID().String()
			rec.Image = &imageMeta{Format: img.Format, Width: img.Width, Height: img.Height}
			return rec, nil
		}
		rec.Truncated = true
	}

	if img, ok := content.Image(); ok {
		rec.Image = &imageMeta{Format: img.Format, Width: img.Width, Height: img.Height}
	}
	data, compressed, err := compression.Compress(content.Data())
	if err != nil {
		return record{}, fmt.Errorf("failed to compress entry %d: %w", it.ID, err)
	}
	rec.Data = data
	rec.Compressed = compressed
	rec.Hash = types.HashOf(content).String()
	return rec, nil
}

// decodeRecord rebuilds an entry and verifies its digest.
func decodeRecord(rec record) (types.ClipboardItem, error) {
	if rec.Ref != "" {
		return types.ClipboardItem{}, fmt.Errorf("%w: %s", errReferenceOnly, rec.Ref)
	}
	data := rec.Data
	if rec.Compressed {
		var err error
		if data, err = compression.Decompress(data); err != nil {
			return types.ClipboardItem{}, fmt.Errorf("failed to decompress: %w", err)
		}
	}

	var content types.ClipboardContent
	var err error
	if rec.Kind == types.KindImage && rec.Image != nil {
		content = types.NewImageWithMeta(data, rec.Image.Width, rec.Image.Height, rec.Image.Format)
	} else if content, err = types.FromData(rec.Kind, data); err != nil {
		return types.ClipboardItem{}, err
	}

	want, err := types.ParseHash(rec.Hash)
	if err != nil {
		return types.ClipboardItem{}, fmt.Errorf("invalid hash %q: %w", rec.Hash, err)
	}
	if got := types.HashOf(content); got != want {
		return types.ClipboardItem{}, fmt.Errorf("%w: stored %s, computed %s", errHashMismatch, want.Short(), got.Short())
	}

	return types.ClipboardItem{
		ID:         types.ItemID(rec.ID),
		Content:    content,
		Hash:       want,
		CreatedAt:  rec.CreatedAt,
		LastSeenAt: rec.LastSeenAt,
		Pinned:     rec.Pinned,
	}, nil
}

func truncateText(s string, maxBytes int64) string {
	if int64(len(s)) <= maxBytes {
		return s
	}
	n := int(maxBytes)
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// truncateFiles keeps the whole paths that fit in maxBytes. When not even
// the first one fits it is cut short, so the entry never ends up empty.
func truncateFiles(paths []string, maxBytes int64) []string {
	var used int64
	for i, p := range paths {
		need := int64(len(p))
		if i > 0 {
			need++
		}
		if used+need > maxBytes {
			if i == 0 {
				if cut := truncateText(p, maxBytes); cut != "" {
					return []string{cut}
				}
				return paths[:1]
			}
			return paths[:i]
		}
		used += need
	}
	return paths
}

