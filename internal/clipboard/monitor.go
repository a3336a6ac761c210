package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/history"
	"github.com/berrythewa/clipman/internal/types"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 250 * time.Millisecond

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	PollInterval time.Duration
	Processor    *ContentProcessor
	Clock        clock.Clock
	Logger       *zap.Logger
}

// Monitor polls the clipboard and records changes in the store.
type Monitor struct {
	store     *history.Store
	reader    Reader
	writer    Writer
	processor *ContentProcessor
	interval  time.Duration
	clock     clock.Clock
	logger    *zap.Logger

	mu       sync.Mutex
	lastHash types.Hash

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor returns a monitor reading from reader. writer may be nil, in
// which case Copy fails.
func NewMonitor(store *history.Store, reader Reader, writer Writer, cfg MonitorConfig) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Processor == nil {
		cfg.Processor = NewContentProcessor()
		cfg.Processor.SetLogger(cfg.Logger)
	}
	return &Monitor{
		store:     store,
		reader:    reader,
		writer:    writer,
		processor: cfg.Processor,
		interval:  cfg.PollInterval,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
}

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Starting clipboard monitor",
		zap.String("backend", m.reader.Name()),
		zap.Duration("interval", m.interval))

	ticker := m.clock.Ticker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Clipboard monitor stopped")
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			m.Poll(ctx)
		}
	}
}

// Start runs the monitor in the background.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return errors.New("monitor already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		m.Run(ctx)
	}(m.done)
	return nil
}

// Stop cancels a monitor started with Start and waits for it to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Poll performs one read of the clipboard. It reports whether a change was
// recorded. Read errors are transient and logged at debug level.
func (m *Monitor) Poll(ctx context.Context) bool {
	raw, err := m.reader.ReadCurrent(ctx)
	if err != nil {
		m.logger.Debug("Clipboard read failed", zap.String("backend", m.reader.Name()), zap.Error(err))
		return false
	}
	if raw.Empty() {
		return false
	}
	content, err := Classify(raw)
	if err != nil {
		m.logger.Debug("Unclassifiable clipboard payload", zap.Error(err))
		return false
	}

	hash := content.Hash()
	m.mu.Lock()
	if hash == m.lastHash {
		m.mu.Unlock()
		return false
	}
	m.lastHash = hash
	m.mu.Unlock()

	if !m.processor.Accept(content) {
		return false
	}

	id, created := m.store.InsertOrTouch(content)
	m.logger.Debug("New clipboard content detected",
		zap.Uint64("id", uint64(id)),
		zap.String("kind", string(content.Kind())),
		zap.Int64("size", content.Size()),
		zap.Bool("created", created))
	return true
}

// NoteSelfWrite marks content as already seen so that the monitor does not
// record it again when it appears on the clipboard. Call it before writing
// to the clipboard. The slot holds the ClipboardForm of content, which is
// what the next poll reads back.
func (m *Monitor) NoteSelfWrite(content types.ClipboardContent) {
	if placed, err := ClipboardForm(content); err == nil {
		content = placed
	}
	m.noteHash(content.Hash())
}

func (m *Monitor) noteHash(h types.Hash) {
	m.mu.Lock()
	m.lastHash = h
	m.mu.Unlock()
}

// Copy places a history entry back on the clipboard and moves it to the
// front of the history.
func (m *Monitor) Copy(ctx context.Context, id types.ItemID) error {
	if m.writer == nil {
		return fmt.Errorf("%w: clipboard is read-only", ErrUnsupportedPayload)
	}
	it, ok := m.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", history.ErrNotFound, id)
	}
	placed, err := ClipboardForm(it.Content)
	if err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	m.noteHash(placed.Hash())
	if err := m.writer.Write(ctx, placed); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	m.store.InsertOrTouch(it.Content)
	m.logger.Debug("Copied history entry to clipboard", zap.Uint64("id", uint64(id)))
	return nil
}
