package clipboard

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
)

// URIListReader reads copied file lists on Linux through wl-paste or xclip,
// which the display clipboard library does not expose.
type URIListReader struct {
	command []string
}

// NewURIListReader picks wl-paste on Wayland and xclip on X11. It returns
// nil when neither is usable.
func NewURIListReader() *URIListReader {
	if runtime.GOOS != "linux" {
		return nil
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" && hasCommand("wl-paste") {
		return &URIListReader{command: []string{"wl-paste", "--no-newline", "--type", MIMEURIList}}
	}
	if os.Getenv("DISPLAY") != "" && hasCommand("xclip") {
		return &URIListReader{command: []string{"xclip", "-selection", "clipboard", "-t", MIMEURIList, "-o"}}
	}
	return nil
}

// ReadURIList returns the raw uri-list, or nil when the clipboard offers
// none. A non-zero exit means the target is absent and is not an error.
func (r *URIListReader) ReadURIList(ctx context.Context) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	out, err := exec.CommandContext(ctx, r.command[0], r.command[1:]...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func hasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
