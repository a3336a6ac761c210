// Package storage persists the clipboard history between runs. Persistence is
// best-effort: loading never fails startup and saving never blocks the store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/types"
)

const (
	// SchemaVersion is the on-disk format version written by this package.
	// Files carrying a newer version are treated as incompatible.
	SchemaVersion = 1

	// DefaultMaxItemBytes caps the persisted payload of a single entry.
	DefaultMaxItemBytes int64 = 2 << 20
)

var (
	// ErrIncompatibleSchema is returned when the stored schema version is not
	// supported.
	ErrIncompatibleSchema = errors.New("incompatible schema version")
	// ErrCorruptHeader is returned when the stored header cannot be parsed.
	ErrCorruptHeader = errors.New("corrupt history header")
	// ErrUnknownBackend is returned by NewBackend for an unknown backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Backend reads and writes the whole history at once.
type Backend interface {
	// Load returns the persisted entries. A missing store yields no entries
	// and no error. Individual corrupt records are skipped.
	Load(ctx context.Context) ([]types.ClipboardItem, error)
	// Save atomically replaces the persisted history with items.
	Save(ctx context.Context, items []types.ClipboardItem) error
	Close() error
}

// Backend names accepted by NewBackend.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Options configures a Backend.
type Options struct {
	// MaxItemBytes caps each persisted payload. Non-positive values select
	// DefaultMaxItemBytes.
	MaxItemBytes int64
	Logger       *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxItemBytes <= 0 {
		o.MaxItemBytes = DefaultMaxItemBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// NewBackend opens the backend named kind at path.
func NewBackend(kind, path string, opts Options) (Backend, error) {
	switch strings.ToLower(kind) {
	case "", BackendFile:
		return NewFileBackend(path, opts), nil
	case BackendBolt:
		return NewBoltBackend(path, opts)
	case BackendSQLite:
		return NewSQLiteBackend(path, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
}

// LoadHistory loads the persisted history, returning an empty history on any
// backend failure.
func LoadHistory(ctx context.Context, b Backend, logger *zap.Logger) []types.ClipboardItem {
	if logger == nil {
		logger = zap.NewNop()
	}
	items, err := b.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load clipboard history, starting empty", zap.Error(err))
		return nil
	}
	logger.Info("Loaded clipboard history", zap.Int("entries", len(items)))
	return items
}
