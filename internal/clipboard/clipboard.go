// Package clipboard bridges the OS clipboard into the history store: it
// polls a Reader, classifies what it finds and records changes.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/types"
)

// MIME types of the representations a Reader may return.
const (
	MIMEText        = "text/plain"
	MIMEPNG         = "image/png"
	MIMEURIList     = "text/uri-list"
	MIMEGnomeFiles  = "x-special/gnome-copied-files"
	mimeImagePrefix = "image/"
	mimeTextPrefix  = "text/"
)

// ErrUnsupportedPayload is returned when a payload carries no representation
// that maps to a content variant, or when a writer cannot place a variant on
// the clipboard.
var ErrUnsupportedPayload = errors.New("unsupported clipboard payload")

// Representation is one format offered by the clipboard owner.
type Representation struct {
	MIME string
	Data []byte
}

// RawPayload is everything read from the clipboard in one tick. The same
// copy may be offered in several formats at once.
type RawPayload struct {
	Representations []Representation
}

// Add appends a representation when data is non-empty.
func (p *RawPayload) Add(mime string, data []byte) {
	if len(data) == 0 {
		return
	}
	p.Representations = append(p.Representations, Representation{MIME: mime, Data: data})
}

// Empty reports whether p carries nothing.
func (p *RawPayload) Empty() bool {
	return p == nil || len(p.Representations) == 0
}

// Reader reads the OS clipboard.
type Reader interface {
	// Name identifies the backend in logs.
	Name() string
	// ReadCurrent returns the current clipboard contents, or nil when the
	// clipboard is empty.
	ReadCurrent(ctx context.Context) (*RawPayload, error)
}

// Writer places content on the OS clipboard.
type Writer interface {
	Write(ctx context.Context, content types.ClipboardContent) error
}

// Clipboard is a backend that can both read and write.
type Clipboard interface {
	Reader
	Writer
}

// NewSystemClipboard returns the best clipboard backend available: the
// display clipboard when it initialises, the text-only fallback otherwise.
// On Linux file lists are read through the uri-list helper tools.
func NewSystemClipboard(logger *zap.Logger) Clipboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	files := NewURIListReader()
	design, err := NewDesignClipboard(files)
	if err != nil {
		logger.Warn("Display clipboard unavailable, falling back to text-only backend", zap.Error(err))
		return NewAtottoClipboard(files)
	}
	return design
}

// ClipboardForm returns content the way it reads back after a write. File
// lists are written as newline separated text and images are re-encoded as
// PNG. Text and PNG images are returned unchanged.
func ClipboardForm(content types.ClipboardContent) (types.ClipboardContent, error) {
	switch content.Kind() {
	case types.KindText:
		return content, nil
	case types.KindFiles:
		return types.NewText(strings.Join(content.Files(), "\n")), nil
	case types.KindImage:
		img, _ := content.Image()
		if img.Format == "png" {
			return content, nil
		}
		data, err := toPNG(img)
		if err != nil {
			return types.ClipboardContent{}, err
		}
		return types.NewImageWithMeta(data, img.Width, img.Height, "png"), nil
	}
	return types.ClipboardContent{}, ErrUnsupportedPayload
}

func toPNG(img types.Image) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
