// Package types defines the clipboard content model shared by the history
// store, the clipboard monitor and the persistence layer.
package types

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	// Image decoders registered for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Kind identifies the active variant of a ClipboardContent.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFiles Kind = "files"
)

// ErrUnknownKind is returned when a kind name cannot be parsed.
var ErrUnknownKind = errors.New("unknown content kind")

// ErrUndecodableImage is returned when image bytes carry no recognizable format.
var ErrUndecodableImage = errors.New("undecodable image data")

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, nil
	case KindImage:
		return KindImage, nil
	case KindFiles, "file":
		return KindFiles, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// tag is the variant discriminator mixed into the content digest.
func (k Kind) tag() byte {
	switch k {
	case KindText:
		return 'T'
	case KindImage:
		return 'I'
	case KindFiles:
		return 'F'
	}
	return 0
}

// filesSep separates paths in the canonical byte form of a file list.
// NUL cannot appear in a path on any supported platform.
const filesSep = "\x00"

// Image is the read-only view of an image payload.
type Image struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// ClipboardContent is an immutable clipboard payload. Exactly one of the
// text, image or file-list variants is active. Constructors copy their input
// and compute the content hash once.
type ClipboardContent struct {
	kind  Kind
	text  string
	img   Image
	files []string
	hash  Hash
}

// NewText returns a text content.
func NewText(s string) ClipboardContent {
	c := ClipboardContent{kind: KindText, text: s}
	c.hash = computeHash(c)
	return c
}

// NewImage returns an image content, decoding width, height and format from
// the encoded bytes.
func NewImage(data []byte) (ClipboardContent, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ClipboardContent{}, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	return NewImageWithMeta(data, cfg.Width, cfg.Height, format), nil
}

// NewImageWithMeta returns an image content with caller supplied metadata.
func NewImageWithMeta(data []byte, width, height int, format string) ClipboardContent {
	c := ClipboardContent{
		kind: KindImage,
		img: Image{
			Data:   bytes.Clone(data),
			Width:  width,
			Height: height,
			Format: format,
		},
	}
	c.hash = computeHash(c)
	return c
}

// NewFiles returns a file-list content. The order of paths is significant.
func NewFiles(paths []string) ClipboardContent {
	c := ClipboardContent{kind: KindFiles, files: append([]string(nil), paths...)}
	c.hash = computeHash(c)
	return c
}

// FromData rebuilds a content from its kind and canonical bytes, the inverse
// of Data.
func FromData(kind Kind, data []byte) (ClipboardContent, error) {
	switch kind {
	case KindText:
		return NewText(string(data)), nil
	case KindImage:
		return NewImage(data)
	case KindFiles:
		if len(data) == 0 {
			return NewFiles(nil), nil
		}
		return NewFiles(strings.Split(string(data), filesSep)), nil
	}
	return ClipboardContent{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Kind returns the active variant.
func (c ClipboardContent) Kind() Kind { return c.kind }

// IsZero reports whether c was never constructed.
func (c ClipboardContent) IsZero() bool { return c.kind == "" }

// Hash returns the content digest.
func (c ClipboardContent) Hash() Hash { return c.hash }

// Text returns the text payload, or "" for other variants.
func (c ClipboardContent) Text() string { return c.text }

// Image returns the image payload. Data must not be modified.
func (c ClipboardContent) Image() (Image, bool) {
	return c.img, c.kind == KindImage
}

// Files returns a copy of the file list.
func (c ClipboardContent) Files() []string {
	if c.kind != KindFiles {
		return nil
	}
	return append([]string(nil), c.files...)
}

// Data returns the canonical byte form of the payload: UTF-8 text, encoded
// image bytes, or NUL separated paths.
func (c ClipboardContent) Data() []byte {
	switch c.kind {
	case KindText:
		return []byte(c.text)
	case KindImage:
		return bytes.Clone(c.img.Data)
	case KindFiles:
		return []byte(strings.Join(c.files, filesSep))
	}
	return nil
}

// Size returns the approximate number of bytes held by the payload.
func (c ClipboardContent) Size() int64 {
	switch c.kind {
	case KindText:
		return int64(len(c.text))
	case KindImage:
		return int64(len(c.img.Data))
	case KindFiles:
		var n int64
		for _, p := range c.files {
			n += int64(len(p)) + 1
		}
		return n
	}
	return 0
}

// Equal compares two contents by digest.
func (c ClipboardContent) Equal(o ClipboardContent) bool {
	return c.hash == o.hash
}

// String implements fmt.Stringer with a short description, never the payload.
func (c ClipboardContent) String() string {
	switch c.kind {
	case KindText:
		return fmt.Sprintf("text(%d bytes)", len(c.text))
	case KindImage:
		return fmt.Sprintf("image(%s %dx%d, %d bytes)", c.img.Format, c.img.Width, c.img.Height, len(c.img.Data))
	case KindFiles:
		return fmt.Sprintf("files(%d)", len(c.files))
	}
	return "empty"
}
