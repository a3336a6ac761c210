package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/berrythewa/clipman/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- One row per entry, most recently used first.
CREATE TABLE IF NOT EXISTS history (
    position INTEGER PRIMARY KEY,
    id       INTEGER NOT NULL,
    record   TEXT NOT NULL
);
`

// SQLiteBackend stores the history in a SQLite database. The meta table holds
// the header; the history table holds one JSON record per entry.
type SQLiteBackend struct {
	db       *sql.DB
	path     string
	maxBytes int64
	logger   *zap.Logger
}

// NewSQLiteBackend opens or creates the database at path.
func NewSQLiteBackend(path string, opts Options) (*SQLiteBackend, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(1000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	opts.Logger.Debug("SQLiteBackend initialized", zap.String("db_path", path), zap.Int64("max_item_bytes", opts.MaxItemBytes))
	return &SQLiteBackend{
		db:       db,
		path:     path,
		maxBytes: opts.MaxItemBytes,
		logger:   opts.Logger,
	}, nil
}

// Load reads every record in position order.
func (b *SQLiteBackend) Load(ctx context.Context) ([]types.ClipboardItem, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'header'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history header: %w", err)
	}
	var hdr header
	if err := json.Unmarshal([]byte(raw), &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	if err := hdr.check(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, `SELECT position, record FROM history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	items := make([]types.ClipboardItem, 0, min(max(hdr.Count, 0), 1024))
	var skipped int
	for rows.Next() {
		var (
			pos int64
			enc string
		)
		if err := rows.Scan(&pos, &enc); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		it, err := decodeLine([]byte(enc))
		if err != nil {
			skipped++
			b.logger.Warn("Skipping history record", zap.Int64("position", pos), zap.Error(err))
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	b.logger.Debug("History database loaded", zap.Int("records", len(items)), zap.Int("skipped", skipped))
	return items, nil
}

// Save replaces the history table in a single transaction.
func (b *SQLiteBackend) Save(ctx context.Context, items []types.ClipboardItem) (err error) {
	records := encodeAll(items, b.maxBytes, b.logger)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to reset history table: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history (position, id, record) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, rec := range records {
		var encoded []byte
		if encoded, err = json.Marshal(rec); err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", rec.ID, err)
		}
		if _, err = stmt.ExecContext(ctx, i, rec.ID, string(encoded)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", rec.ID, err)
		}
	}

	hdr, err := json.Marshal(header{SchemaVersion: SchemaVersion, SavedAt: time.Now().UTC(), Count: len(records)})
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('header', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		string(hdr)); err != nil {
		return fmt.Errorf("failed to write history header: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to save history to %s: %w", b.path, err)
	}

	b.logger.Debug("History saved", zap.String("db_path", b.path), zap.Int("records", len(records)))
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
