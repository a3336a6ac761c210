package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/types"
)

var (
	metaBucket    = []byte("meta")
	historyBucket = []byte("history")
	headerKey     = []byte("header")
)

// BoltBackend stores the history in a bbolt database. The meta bucket holds
// the header; the history bucket holds one record per entry keyed by its
// position, most recently used first.
type BoltBackend struct {
	db       *bbolt.DB
	path     string
	maxBytes int64
	logger   *zap.Logger
}

// NewBoltBackend opens or creates the database at path.
func NewBoltBackend(path string, opts Options) (*BoltBackend, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	opts.Logger.Debug("BoltBackend initialized", zap.String("db_path", path), zap.Int64("max_item_bytes", opts.MaxItemBytes))
	return &BoltBackend{
		db:       db,
		path:     path,
		maxBytes: opts.MaxItemBytes,
		logger:   opts.Logger,
	}, nil
}

// Load reads every record in position order.
func (b *BoltBackend) Load(ctx context.Context) ([]types.ClipboardItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []types.ClipboardItem
	var skipped int
	err := b.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil {
			return nil
		}
		var hdr header
		if err := json.Unmarshal(meta.Get(headerKey), &hdr); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptHeader, err)
		}
		if err := hdr.check(); err != nil {
			return err
		}

		hist := tx.Bucket(historyBucket)
		if hist == nil {
			return nil
		}
		items = make([]types.ClipboardItem, 0, min(max(hdr.Count, 0), 1024))
		return hist.ForEach(func(k, v []byte) error {
			var rec record
			err := json.Unmarshal(v, &rec)
			var it types.ClipboardItem
			if err == nil {
				it, err = decodeRecord(rec)
			}
			if err != nil {
				skipped++
				b.logger.Warn("Skipping history record", zap.Binary("key", k), zap.Error(err))
				return nil
			}
			items = append(items, it)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("History database loaded", zap.Int("records", len(items)), zap.Int("skipped", skipped))
	return items, nil
}

// Save replaces the history bucket in a single transaction.
func (b *BoltBackend) Save(ctx context.Context, items []types.ClipboardItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := encodeAll(items, b.maxBytes, b.logger)

	err := b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to reset history bucket: %w", err)
		}
		hist, err := tx.CreateBucket(historyBucket)
		if err != nil {
			return fmt.Errorf("failed to create history bucket: %w", err)
		}
		for i, rec := range records {
			encoded, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal record %d: %w", rec.ID, err)
			}
			if err := hist.Put(positionKey(i), encoded); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return fmt.Errorf("failed to create meta bucket: %w", err)
		}
		hdr, err := json.Marshal(header{SchemaVersion: SchemaVersion, SavedAt: time.Now().UTC(), Count: len(records)})
		if err != nil {
			return err
		}
		return meta.Put(headerKey, hdr)
	})
	if err != nil {
		return fmt.Errorf("failed to save history to %s: %w", b.path, err)
	}

	b.logger.Debug("History saved", zap.String("db_path", b.path), zap.Int("records", len(records)))
	return nil
}

// Close closes the database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

func positionKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}
