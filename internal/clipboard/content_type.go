package clipboard

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/berrythewa/clipman/internal/types"
)

// Classify converts a raw payload into content. When several
// representations are offered, a file list wins over an image, and an image
// wins over text.
func Classify(p *RawPayload) (types.ClipboardContent, error) {
	if p.Empty() {
		return types.ClipboardContent{}, ErrUnsupportedPayload
	}

	for _, r := range p.Representations {
		switch r.MIME {
		case MIMEURIList, MIMEGnomeFiles:
			if paths := parseURIList(r.Data); len(paths) > 0 {
				return types.NewFiles(paths), nil
			}
		}
	}

	var imgErr error
	for _, r := range p.Representations {
		if strings.HasPrefix(r.MIME, mimeImagePrefix) {
			c, err := types.NewImage(r.Data)
			if err == nil {
				return c, nil
			}
			imgErr = err
		}
	}

	for _, r := range p.Representations {
		if strings.HasPrefix(r.MIME, mimeTextPrefix) && r.MIME != MIMEURIList && utf8.Valid(r.Data) {
			return types.NewText(string(r.Data)), nil
		}
	}

	if imgErr != nil {
		return types.ClipboardContent{}, fmt.Errorf("%w: %v", ErrUnsupportedPayload, imgErr)
	}
	return types.ClipboardContent{}, ErrUnsupportedPayload
}

// parseURIList extracts local paths from a text/uri-list or GNOME copied
// files payload. Comment lines and non-file URIs are ignored.
func parseURIList(data []byte) []string {
	s := string(data)
	for _, prefix := range []string{"copy\n", "cut\n"} {
		s = strings.TrimPrefix(s, prefix)
	}

	var files []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "file://") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || (u.Host != "" && u.Host != "localhost") {
			continue
		}
		if u.Path != "" {
			files = append(files, u.Path)
		}
	}
	return files
}
