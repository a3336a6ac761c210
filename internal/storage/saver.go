package storage

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/history"
)

// DefaultSaveDebounce is the delay between the first unsaved mutation and
// the save it triggers.
const DefaultSaveDebounce = 2 * time.Second

// SaverConfig configures a Saver.
type SaverConfig struct {
	Debounce time.Duration
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Saver writes the store to a backend after mutations. The first mutation
// after a save arms a timer; when it fires the whole history is exported and
// saved. A failed save is logged and retried one window later.
type Saver struct {
	store    *history.Store
	backend  Backend
	debounce time.Duration
	clock    clock.Clock
	logger   *zap.Logger
	events   <-chan history.Event

	// flushMu orders export and save together, so an older snapshot never
	// overwrites a newer one.
	flushMu sync.Mutex
}

// NewSaver subscribes to store mutations. Mutations made before Run starts
// are not lost.
func NewSaver(store *history.Store, backend Backend, cfg SaverConfig) *Saver {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultSaveDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Saver{
		store:    store,
		backend:  backend,
		debounce: cfg.Debounce,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		events:   store.Subscribe(256),
	}
}

// Run saves until ctx is cancelled, then performs a final save of any
// pending mutations.
func (s *Saver) Run(ctx context.Context) error {
	defer s.store.Unsubscribe(s.events)

	var (
		timer *clock.Timer
		fire  <-chan time.Time
		dirty bool
	)
	arm := func() {
		timer = s.clock.Timer(s.debounce)
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if dirty {
				if err := s.Flush(context.WithoutCancel(ctx)); err != nil {
					s.logger.Error("Final history save failed", zap.Error(err))
				}
			}
			return nil

		case _, ok := <-s.events:
			if !ok {
				return nil
			}
			dirty = true
			if fire == nil {
				arm()
			}

		case <-fire:
			fire = nil
			if err := s.Flush(ctx); err != nil {
				s.logger.Warn("History save failed, retrying", zap.Error(err), zap.Duration("retry_in", s.debounce))
				arm()
				continue
			}
			dirty = false
		}
	}
}

// Flush saves the current store contents immediately. It is safe to call
// while Run is active.
func (s *Saver) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	items := s.store.Export()
	start := s.clock.Now()
	if err := s.backend.Save(ctx, items); err != nil {
		return err
	}
	s.logger.Debug("History flushed",
		zap.Int("entries", len(items)),
		zap.Duration("took", s.clock.Since(start)))
	return nil
}
