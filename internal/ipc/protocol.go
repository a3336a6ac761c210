package ipc

import (
	"encoding/json"
	"time"

	"github.com/berrythewa/clipman/internal/types"
)

// Commands understood by the daemon.
const (
	CmdHistory = "history"
	CmdPin     = "pin"
	CmdUnpin   = "unpin"
	CmdDelete  = "delete"
	CmdClear   = "clear"
	CmdCopy    = "copy"
	CmdStatus  = "status"
	CmdFlush   = "flush"
)

// Response statuses.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// Request represents a command sent from the CLI to the daemon.
type Request struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"` // Command-specific arguments
}

// Response represents a reply from the daemon to the CLI.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"` // Human-readable message or error
	Data    json.RawMessage `json:"data,omitempty"`    // Command-specific data
}

// HistoryArgs filters a history listing. Zero values mean no filtering.
type HistoryArgs struct {
	Limit  int        `json:"limit,omitempty"`
	Kind   types.Kind `json:"kind,omitempty"`
	Query  string     `json:"query,omitempty"`
	Regex  string     `json:"regex,omitempty"`
	Pinned bool       `json:"pinned,omitempty"`
}

// IDArgs addresses a single entry.
type IDArgs struct {
	ID uint64 `json:"id"`
}

// ImageInfo describes an image entry without its bytes.
type ImageInfo struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// HistoryEntry is one entry of a history listing. Image bytes are never
// sent over the socket.
type HistoryEntry struct {
	ID         uint64     `json:"id"`
	Kind       types.Kind `json:"kind"`
	Hash       string     `json:"hash"`
	Size       int64      `json:"size"`
	Pinned     bool       `json:"pinned"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	Text       string     `json:"text,omitempty"`
	Files      []string   `json:"files,omitempty"`
	Image      *ImageInfo `json:"image,omitempty"`
}

// ClearResult reports how many entries a clear removed.
type ClearResult struct {
	Removed int `json:"removed"`
}

// StatusInfo describes the running daemon.
type StatusInfo struct {
	PID            int       `json:"pid"`
	StartedAt      time.Time `json:"started_at"`
	Clipboard      string    `json:"clipboard"`
	StorageBackend string    `json:"storage_backend"`
	StoragePath    string    `json:"storage_path"`
	Entries        int       `json:"entries"`
	Pinned         int       `json:"pinned"`
	Capacity       int       `json:"capacity"`
	UnpinnedBytes  int64     `json:"unpinned_bytes"`
}

// NewRequest builds a request, encoding args when non-nil.
func NewRequest(command string, args any) (*Request, error) {
	req := &Request{Command: command}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		req.Args = raw
	}
	return req, nil
}

// OK builds a successful response carrying data.
func OK(data any) *Response {
	resp := &Response{Status: StatusOK}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Error(err)
		}
		resp.Data = raw
	}
	return resp
}

// Error builds an error response.
func Error(err error) *Response {
	return &Response{Status: StatusError, Message: err.Error()}
}

// NotFound builds a not_found response.
func NotFound(msg string) *Response {
	return &Response{Status: StatusNotFound, Message: msg}
}

// EntryFromItem converts a history item to its wire form.
func EntryFromItem(it types.ClipboardItem) HistoryEntry {
	e := HistoryEntry{
		ID:         uint64(it.ID),
		Kind:       it.Kind(),
		Hash:       it.Hash.String(),
		Size:       it.Content.Size(),
		Pinned:     it.Pinned,
		CreatedAt:  it.CreatedAt,
		LastSeenAt: it.LastSeenAt,
	}
	switch it.Kind() {
	case types.KindText:
		e.Text = it.Content.Text()
	case types.KindFiles:
		e.Files = it.Content.Files()
	case types.KindImage:
		if img, ok := it.Content.Image(); ok {
			e.Image = &ImageInfo{Format: img.Format, Width: img.Width, Height: img.Height}
		}
	}
	return e
}
