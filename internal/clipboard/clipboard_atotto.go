package clipboard

import (
	"context"
	"fmt"

	atottoClip "github.com/atotto/clipboard"

	"github.com/berrythewa/clipman/internal/types"
)

// AtottoClipboard is a fallback clipboard implementation using the
// atotto/clipboard library. It only supports text content.
type AtottoClipboard struct {
	files *URIListReader
}

// NewAtottoClipboard returns a text-only clipboard. files may be nil.
func NewAtottoClipboard(files *URIListReader) *AtottoClipboard {
	return &AtottoClipboard{files: files}
}

func (c *AtottoClipboard) Name() string { return "atotto clipboard" }

func (c *AtottoClipboard) ReadCurrent(ctx context.Context) (*RawPayload, error) {
	if atottoClip.Unsupported {
		return nil, fmt.Errorf("%w: no clipboard utility available", ErrUnsupportedPayload)
	}
	p := &RawPayload{}
	if c.files != nil {
		uris, err := c.files.ReadURIList(ctx)
		if err != nil {
			return nil, err
		}
		p.Add(MIMEURIList, uris)
	}
	text, err := atottoClip.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	p.Add(MIMEText, []byte(text))
	if p.Empty() {
		return nil, nil
	}
	return p, nil
}

func (c *AtottoClipboard) Write(_ context.Context, content types.ClipboardContent) error {
	if content.Kind() == types.KindImage {
		return fmt.Errorf("%w: only text content is supported for writing", ErrUnsupportedPayload)
	}
	placed, err := ClipboardForm(content)
	if err != nil {
		return err
	}
	return atottoClip.WriteAll(placed.Text())
}
