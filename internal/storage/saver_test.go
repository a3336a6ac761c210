package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/berrythewa/clipman/internal/history"
	"github.com/berrythewa/clipman/internal/types"
)

type memBackend struct {
	mu       sync.Mutex
	saves    [][]types.ClipboardItem
	failNext int
}

func (m *memBackend) Load(context.Context) ([]types.ClipboardItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil, nil
	}
	return m.saves[len(m.saves)-1], nil
}

func (m *memBackend) Save(_ context.Context, items []types.ClipboardItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return errors.New("disk full")
	}
	m.saves = append(m.saves, items)
	return nil
}

func (m *memBackend) Close() error { return nil }

func (m *memBackend) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *memBackend) last() []types.ClipboardItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[len(m.saves)-1]
}

func startSaver(t *testing.T, store *history.Store, backend Backend, mc *clock.Mock) (context.CancelFunc, <-chan error) {
	t.Helper()
	s := NewSaver(store, backend, SaverConfig{Debounce: 2 * time.Second, Clock: mc, Logger: zaptest.NewLogger(t)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return cancel, done
}

func TestSaver_DebouncesMutations(t *testing.T) {
	mc := clock.NewMock()
	store := history.New(history.Config{Capacity: 10, Clock: mc})
	backend := &memBackend{}
	cancel, done := startSaver(t, store, backend, mc)
	defer func() { cancel(); <-done }()

	store.InsertOrTouch(types.NewText("a"))
	store.InsertOrTouch(types.NewText("b"))
	store.InsertOrTouch(types.NewText("a"))

	require.Eventually(t, func() bool {
		mc.Add(500 * time.Millisecond)
		return backend.count() > 0
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, backend.count(), "a burst of mutations is saved once")
	last := backend.last()
	require.Len(t, last, 2)
	assert.Equal(t, "a", last[0].Content.Text())
}

func TestSaver_NoSaveWithoutMutation(t *testing.T) {
	mc := clock.NewMock()
	store := history.New(history.Config{Capacity: 10, Clock: mc})
	backend := &memBackend{}
	cancel, done := startSaver(t, store, backend, mc)

	for i := 0; i < 10; i++ {
		mc.Add(time.Second)
	}
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, backend.count())
}

func TestSaver_RetriesFailedSave(t *testing.T) {
	mc := clock.NewMock()
	store := history.New(history.Config{Capacity: 10, Clock: mc})
	backend := &memBackend{failNext: 2}
	cancel, done := startSaver(t, store, backend, mc)
	defer func() { cancel(); <-done }()

	store.InsertOrTouch(types.NewText("persist me"))

	require.Eventually(t, func() bool {
		mc.Add(time.Second)
		return backend.count() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "persist me", backend.last()[0].Content.Text())
}

func TestSaver_FinalFlushOnShutdown(t *testing.T) {
	mc := clock.NewMock()
	store := history.New(history.Config{Capacity: 10, Clock: mc})
	backend := &memBackend{}
	s := NewSaver(store, backend, SaverConfig{Debounce: time.Hour, Clock: mc})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	store.InsertOrTouch(types.NewText("unsaved"))
	// Give Run a chance to observe the mutation before shutdown.
	require.Eventually(t, func() bool {
		return len(s.events) == 0
	}, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Equal(t, 1, backend.count())
	assert.Equal(t, "unsaved", backend.last()[0].Content.Text())
}

// overlapBackend records whether two saves ever ran at once.
type overlapBackend struct {
	memBackend
	active  atomic.Int32
	overlap atomic.Bool
}

func (b *overlapBackend) Save(ctx context.Context, items []types.ClipboardItem) error {
	if b.active.Add(1) > 1 {
		b.overlap.Store(true)
	}
	defer b.active.Add(-1)
	time.Sleep(time.Millisecond)
	return b.memBackend.Save(ctx, items)
}

func TestSaver_ConcurrentFlushesAreSerialized(t *testing.T) {
	mc := clock.NewMock()
	store := history.New(history.Config{Capacity: 100, Clock: mc})
	backend := &overlapBackend{}
	s := NewSaver(store, backend, SaverConfig{Clock: mc, Logger: zaptest.NewLogger(t)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.InsertOrTouch(types.NewText(string(rune('a' + i))))
			assert.NoError(t, s.Flush(context.Background()))
		}()
	}
	wg.Wait()

	assert.False(t, backend.overlap.Load(), "saves overlapped")
	require.Equal(t, 8, backend.count())
	// The last save holds everything, never an older snapshot.
	assert.Len(t, backend.last(), 8)
}
