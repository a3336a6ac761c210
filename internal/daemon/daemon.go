// Package daemon wires the clipboard monitor, the history store, its
// persistence and the control socket into one long running process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/clipboard"
	"github.com/berrythewa/clipman/internal/config"
	"github.com/berrythewa/clipman/internal/history"
	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/internal/storage"
	"github.com/berrythewa/clipman/pkg/utils"
)

// ErrAlreadyRunning is returned when another daemon holds the lock file.
var ErrAlreadyRunning = errors.New("clipman daemon is already running")

// ErrNotRunning is returned by Stop when no daemon is running.
var ErrNotRunning = errors.New("clipman daemon is not running")

// Options override the daemon's collaborators, mainly for tests.
type Options struct {
	// Clipboard replaces the system clipboard.
	Clipboard clipboard.Clipboard
	Clock     clock.Clock
}

// Daemon owns every long running component.
type Daemon struct {
	cfg       *config.Config
	logger    *zap.Logger
	clock     clock.Clock
	startedAt time.Time

	store   *history.Store
	backend storage.Backend
	saver   *storage.Saver
	clip    clipboard.Clipboard
	monitor *clipboard.Monitor
	server  *ipc.Server

	lock      *utils.FileLock
	closeOnce sync.Once
}

// New takes the single instance lock and builds the daemon from cfg.
// Nothing is started and no history is loaded until Run. Close releases
// what New acquired when Run is never called.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	processor, err := newProcessor(cfg.Monitor, logger.Named("monitor"))
	if err != nil {
		return nil, err
	}

	if err := cfg.SystemPaths.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %w", err)
	}
	lock, err := utils.LockFile(cfg.SystemPaths.LockFile)
	if errors.Is(err, utils.ErrLocked) {
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewBackend(cfg.Storage.Backend, cfg.StoragePath(), storage.Options{
		MaxItemBytes: cfg.Storage.MaxItemBytes,
		Logger:       logger.Named("storage"),
	})
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to open history storage: %w", err)
	}

	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.NewSystemClipboard(logger.Named("clipboard"))
	}

	store := history.New(history.Config{
		Capacity:       cfg.History.Capacity,
		MaxMemoryBytes: cfg.History.MaxMemoryBytes,
		Clock:          opts.Clock,
		Logger:         logger.Named("history"),
	})

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		clock:   opts.Clock,
		lock:    lock,
		store:   store,
		backend: backend,
		clip:    clip,
		saver: storage.NewSaver(store, backend, storage.SaverConfig{
			Debounce: cfg.Storage.SaveDebounce,
			Clock:    opts.Clock,
			Logger:   logger.Named("saver"),
		}),
		monitor: clipboard.NewMonitor(store, clip, clip, clipboard.MonitorConfig{
			PollInterval: cfg.Monitor.PollInterval,
			Processor:    processor,
			Clock:        opts.Clock,
			Logger:       logger.Named("monitor"),
		}),
	}
	d.server = ipc.NewServer(cfg.SocketPath(), d, logger.Named("ipc"))
	return d, nil
}

// Close releases the storage backend and the instance lock. It is safe to
// call more than once.
func (d *Daemon) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = errors.Join(d.backend.Close(), d.lock.Unlock())
	})
	return err
}

func newProcessor(cfg config.MonitorConfig, logger *zap.Logger) (*clipboard.ContentProcessor, error) {
	p := clipboard.NewContentProcessor()
	p.SetLogger(logger)
	p.IgnoreWhitespace = cfg.IgnoreWhitespace
	if cfg.MaxContentSize != 0 {
		p.SetMaxSize(cfg.MaxContentSize)
	}
	if len(cfg.ExcludePatterns) > 0 {
		f, err := clipboard.ExcludePatternFilter(cfg.ExcludePatterns...)
		if err != nil {
			return nil, fmt.Errorf("monitor.exclude_patterns: %w", err)
		}
		p.AddFilter(f)
	}
	return p, nil
}

// Store exposes the history, for tests and embedding.
func (d *Daemon) Store() *history.Store { return d.store }

// Run restores the history and serves until ctx is cancelled. Pending
// mutations are saved before it returns, then the daemon is closed.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.Close()

	d.restore(ctx)
	d.startedAt = d.clock.Now()

	d.logger.Info("Clipman daemon started",
		zap.Int("pid", os.Getpid()),
		zap.String("clipboard", d.clip.Name()),
		zap.String("storage", d.cfg.Storage.Backend),
		zap.String("storage_path", d.cfg.StoragePath()),
		zap.String("socket", d.cfg.SocketPath()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, 3)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				errc <- fmt.Errorf("%s: %w", name, err)
				cancel()
			}
		}()
	}
	run("saver", d.saver.Run)
	run("monitor", d.monitor.Run)
	run("ipc", d.server.Serve)

	<-ctx.Done()
	wg.Wait()
	close(errc)

	d.logger.Info("Clipman daemon stopped", zap.Int("entries", d.store.Len()))
	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// restore loads persisted history into the store. Load failures leave the
// history empty; the next save replaces the unreadable file.
func (d *Daemon) restore(ctx context.Context) {
	items := storage.LoadHistory(ctx, d.backend, d.logger)
	if len(items) == 0 {
		return
	}
	d.store.Restore(items)
}
