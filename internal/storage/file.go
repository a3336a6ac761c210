package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/types"
	"github.com/berrythewa/clipman/pkg/utils"
)

// FileBackend stores the history as JSON Lines: a header line followed by
// one record per line. A torn write can only damage the last line.
type FileBackend struct {
	path     string
	maxBytes int64
	logger   *zap.Logger
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string, opts Options) *FileBackend {
	opts = opts.withDefaults()
	return &FileBackend{
		path:     path,
		maxBytes: opts.MaxItemBytes,
		logger:   opts.Logger,
	}
}

// Path returns the history file location.
func (b *FileBackend) Path() string { return b.path }

// Load reads the history file.
func (b *FileBackend) Load(ctx context.Context) ([]types.ClipboardItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		b.logger.Debug("No history file", zap.String("path", b.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	line, err := readLine(r)
	if err != nil && len(line) == 0 {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history header: %w", err)
	}
	var hdr header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	if err := hdr.check(); err != nil {
		return nil, err
	}

	items := make([]types.ClipboardItem, 0, min(max(hdr.Count, 0), 1024))
	var skipped int
	for lineNo := 2; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, readErr := readLine(r)
		if len(line) > 0 {
			it, err := decodeLine(line)
			if err != nil {
				skipped++
				b.logger.Warn("Skipping history record",
					zap.String("path", b.path),
					zap.Int("line", lineNo),
					zap.Error(err))
			} else {
				items = append(items, it)
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return items, fmt.Errorf("failed to read history file: %w", readErr)
			}
			break
		}
	}

	b.logger.Debug("History file loaded",
		zap.String("path", b.path),
		zap.Int("records", len(items)),
		zap.Int("skipped", skipped))
	return items, nil
}

// Save atomically replaces the history file.
func (b *FileBackend) Save(ctx context.Context, items []types.ClipboardItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := encodeAll(items, b.maxBytes, b.logger)

	err := utils.WriteFileAtomic(b.path, 0o600, func(f *os.File) error {
		w := bufio.NewWriter(f)
		enc := json.NewEncoder(w)
		hdr := header{SchemaVersion: SchemaVersion, SavedAt: time.Now().UTC(), Count: len(records)}
		if err := enc.Encode(hdr); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("failed to write record %d: %w", rec.ID, err)
			}
		}
		return w.Flush()
	})
	if err != nil {
		return fmt.Errorf("failed to save history to %s: %w", b.path, err)
	}

	b.logger.Debug("History saved", zap.String("path", b.path), zap.Int("records", len(records)))
	return nil
}

// Close removes temp files left by an interrupted save.
func (b *FileBackend) Close() error {
	return utils.RemoveAllTempFiles(filepath.Dir(b.path), "."+filepath.Base(b.path), ".tmp")
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	return bytes.TrimSpace(line), err
}

func decodeLine(line []byte) (types.ClipboardItem, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return types.ClipboardItem{}, fmt.Errorf("corrupt record: %w", err)
	}
	return decodeRecord(rec)
}

// encodeAll converts items to records, dropping any that fail to encode.
func encodeAll(items []types.ClipboardItem, maxBytes int64, logger *zap.Logger) []record {
	records := make([]record, 0, len(items))
	for _, it := range items {
		rec, err := encodeRecord(it, maxBytes)
		if err != nil {
			logger.Warn("Dropping entry from save", zap.Uint64("id", uint64(it.ID)), zap.Error(err))
			continue
		}
		if rec.Truncated || rec.Ref != "" {
			logger.Debug("Entry exceeds persisted size cap",
				zap.Uint64("id", uint64(it.ID)),
				zap.String("kind", string(rec.Kind)),
				zap.Int64("size", rec.Size),
				zap.Bool("reference_only", rec.Ref != ""))
		}
		records = append(records, rec)
	}
	return records
}
