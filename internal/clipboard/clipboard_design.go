package clipboard

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/berrythewa/clipman/internal/types"
)

var (
	initOnce sync.Once
	initErr  error
)

// DesignClipboard reads and writes text and PNG images through the display
// server clipboard.
type DesignClipboard struct {
	files *URIListReader
}

// NewDesignClipboard initialises the display clipboard. files may be nil.
func NewDesignClipboard(files *URIListReader) (*DesignClipboard, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialise clipboard: %w", initErr)
	}
	return &DesignClipboard{files: files}, nil
}

func (c *DesignClipboard) Name() string { return "display clipboard" }

func (c *DesignClipboard) ReadCurrent(ctx context.Context) (*RawPayload, error) {
	p := &RawPayload{}
	if c.files != nil {
		uris, err := c.files.ReadURIList(ctx)
		if err != nil {
			return nil, err
		}
		p.Add(MIMEURIList, uris)
	}
	p.Add(MIMEPNG, clipboard.Read(clipboard.FmtImage))
	p.Add(MIMEText, clipboard.Read(clipboard.FmtText))
	if p.Empty() {
		return nil, nil
	}
	return p, nil
}

// Write places content on the clipboard in its ClipboardForm.
func (c *DesignClipboard) Write(_ context.Context, content types.ClipboardContent) error {
	placed, err := ClipboardForm(content)
	if err != nil {
		return err
	}
	switch placed.Kind() {
	case types.KindText:
		clipboard.Write(clipboard.FmtText, []byte(placed.Text()))
	case types.KindImage:
		img, _ := placed.Image()
		clipboard.Write(clipboard.FmtImage, img.Data)
	default:
		return ErrUnsupportedPayload
	}
	return nil
}
