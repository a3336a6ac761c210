// Package history holds the authoritative clipboard history: an ordered,
// bounded, deduplicated list of entries with pinning and eviction.
package history

import (
	"container/list"
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/types"
)

const (
	// DefaultCapacity is the number of unpinned entries kept when no capacity
	// is configured.
	DefaultCapacity = 50
)

// ErrNotFound reports an operation on an id that is not in the history.
var ErrNotFound = errors.New("history entry not found")

// Config configures a Store.
type Config struct {
	// Capacity is the maximum number of unpinned entries. Negative values are
	// treated as zero.
	Capacity int
	// MaxMemoryBytes bounds the summed payload size of unpinned entries.
	// Zero disables the budget.
	MaxMemoryBytes int64
	Clock          clock.Clock
	Logger         *zap.Logger
}

// Stats summarizes the store contents.
type Stats struct {
	Entries       int    `json:"entries"`
	Pinned        int    `json:"pinned"`
	UnpinnedBytes int64  `json:"unpinned_bytes"`
	Capacity      int    `json:"capacity"`
	NextID        uint64 `json:"next_id"`
}

// Store is safe for concurrent use. Every operation runs in one short
// critical section; nothing blocks on I/O while holding the lock.
//
// entries is ordered most recently used first. index and byID point into
// entries and are updated together with it in every operation.
type Store struct {
	mu            sync.Mutex
	entries       *list.List
	index         map[types.Hash]*list.Element
	byID          map[types.ItemID]*list.Element
	capacity      int
	maxBytes      int64
	pinned        int
	unpinnedBytes int64
	nextID        types.ItemID

	clock  clock.Clock
	logger *zap.Logger

	subMu sync.Mutex
	subs  map[<-chan Event]chan Event
}

// New returns an empty Store.
func New(cfg Config) *Store {
	if cfg.Capacity < 0 {
		cfg.Capacity = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		entries:  list.New(),
		index:    make(map[types.Hash]*list.Element),
		byID:     make(map[types.ItemID]*list.Element),
		capacity: cfg.Capacity,
		maxBytes: cfg.MaxMemoryBytes,
		nextID:   1,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		subs:     make(map[<-chan Event]chan Event),
	}
}

func item(e *list.Element) *types.ClipboardItem {
	return e.Value.(*types.ClipboardItem)
}

// InsertOrTouch records an observation of content. If an entry with the same
// hash exists it is moved to the front, its LastSeenAt is refreshed and its
// id is returned with created=false. Otherwise a new entry is created at the
// front and unpinned entries are evicted from the back until the capacity and
// memory budget hold again. The entry just inserted is never evicted by its
// own insertion.
func (s *Store) InsertOrTouch(content types.ClipboardContent) (id types.ItemID, created bool) {
	if content.IsZero() {
		return 0, false
	}
	hash := types.HashOf(content)
	now := s.clock.Now()

	s.mu.Lock()
	if e, ok := s.index[hash]; ok {
		it := item(e)
		it.LastSeenAt = now
		s.entries.MoveToFront(e)
		id = it.ID
		s.mu.Unlock()

		s.logger.Debug("History entry touched", zap.Uint64("id", uint64(id)), zap.String("hash", hash.Short()))
		s.notify(Event{Kind: EventTouched, ID: id})
		return id, false
	}

	it := &types.ClipboardItem{
		ID:         s.nextID,
		Content:    content,
		Hash:       hash,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	s.nextID++
	e := s.entries.PushFront(it)
	s.index[hash] = e
	s.byID[it.ID] = e
	s.unpinnedBytes += content.Size()
	evicted := s.evictLocked(e)
	s.mu.Unlock()

	s.logger.Debug("History entry inserted",
		zap.Uint64("id", uint64(it.ID)),
		zap.String("kind", string(content.Kind())),
		zap.Int64("size", content.Size()),
		zap.Int("evicted", len(evicted)))

	s.notify(Event{Kind: EventInserted, ID: it.ID})
	s.notify(evicted...)
	return it.ID, true
}

// Pin exempts an entry from eviction. It returns false if id is unknown.
func (s *Store) Pin(id types.ItemID) bool {
	return s.setPinned(id, true)
}

// Unpin makes an entry evictable again. It returns false if id is unknown.
// Unpinning does not evict; the next insertion applies the capacity.
func (s *Store) Unpin(id types.ItemID) bool {
	return s.setPinned(id, false)
}

func (s *Store) setPinned(id types.ItemID, pinned bool) bool {
	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	it := item(e)
	if it.Pinned == pinned {
		s.mu.Unlock()
		return true
	}
	it.Pinned = pinned
	if pinned {
		s.pinned++
		s.unpinnedBytes -= it.Content.Size()
	} else {
		s.pinned--
		s.unpinnedBytes += it.Content.Size()
	}
	s.mu.Unlock()

	kind := EventUnpinned
	if pinned {
		kind = EventPinned
	}
	s.notify(Event{Kind: kind, ID: id})
	return true
}

// Remove deletes an entry regardless of its pin state. It returns false if
// id is unknown.
func (s *Store) Remove(id types.ItemID) bool {
	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	ev := s.removeLocked(e, EventRemoved)
	s.mu.Unlock()

	s.notify(ev)
	return true
}

// ClearUnpinned removes every unpinned entry and returns how many were removed.
func (s *Store) ClearUnpinned() int {
	s.mu.Lock()
	var n int
	for e := s.entries.Front(); e != nil; {
		next := e.Next()
		if !item(e).Pinned {
			s.removeLocked(e, EventRemoved)
			n++
		}
		e = next
	}
	s.mu.Unlock()

	if n > 0 {
		s.notify(Event{Kind: EventCleared})
	}
	return n
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id types.ItemID) (types.ClipboardItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return types.ClipboardItem{}, false
	}
	return *item(e), true
}

// Snapshot returns a point-in-time copy of the entries accepted by filter,
// most recently used first. A nil filter accepts everything. The returned
// slice shares nothing mutable with the store.
func (s *Store) Snapshot(filter Filter) []types.ClipboardItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ClipboardItem, 0, s.entries.Len())
	for e := s.entries.Front(); e != nil; e = e.Next() {
		it := item(e)
		if filter != nil && !filter(it) {
			continue
		}
		out = append(out, *it)
	}
	return out
}

// Export returns every entry in order, for persistence.
func (s *Store) Export() []types.ClipboardItem {
	return s.Snapshot(nil)
}

// Len returns the number of entries, pinned included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}

// Stats returns counters describing the store.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries:       s.entries.Len(),
		Pinned:        s.pinned,
		UnpinnedBytes: s.unpinnedBytes,
		Capacity:      s.capacity,
		NextID:        uint64(s.nextID),
	}
}

// SetCapacity changes the unpinned entry limit and evicts immediately. The
// most recent entry is kept, as on insertion.
func (s *Store) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.capacity = n
	evicted := s.evictLocked(s.entries.Front())
	s.mu.Unlock()

	s.notify(evicted...)
}

// Restore replaces the contents with items, typically loaded from disk.
// items must be most recently used first, as returned by Export; that order
// is kept as is, so timestamps that tie or step backwards do not reorder
// entries. Of entries sharing a hash the first is kept. Persisted ids are
// kept when unique; id allocation resumes above the highest one. It returns
// the number of entries retained.
func (s *Store) Restore(items []types.ClipboardItem) int {
	kept := make([]types.ClipboardItem, 0, len(items))
	for _, it := range items {
		if it.Content.IsZero() {
			continue
		}
		kept = append(kept, it)
	}

	s.mu.Lock()
	s.entries.Init()
	s.index = make(map[types.Hash]*list.Element, len(kept))
	s.byID = make(map[types.ItemID]*list.Element, len(kept))
	s.pinned = 0
	s.unpinnedBytes = 0

	var maxID types.ItemID
	var needID []*list.Element
	for i := range kept {
		it := kept[i]
		it.Hash = types.HashOf(it.Content)
		if _, dup := s.index[it.Hash]; dup {
			continue
		}
		e := s.entries.PushBack(&it)
		s.index[it.Hash] = e
		if it.ID == 0 || s.byID[it.ID] != nil {
			needID = append(needID, e)
		} else {
			s.byID[it.ID] = e
			if it.ID > maxID {
				maxID = it.ID
			}
		}
		if it.Pinned {
			s.pinned++
		} else {
			s.unpinnedBytes += it.Content.Size()
		}
	}
	if maxID >= s.nextID {
		s.nextID = maxID + 1
	}
	for _, e := range needID {
		it := item(e)
		it.ID = s.nextID
		s.nextID++
		s.byID[it.ID] = e
	}
	evicted := s.evictLocked(s.entries.Front())
	n := s.entries.Len()
	next := s.nextID
	s.mu.Unlock()

	s.logger.Info("History restored",
		zap.Int("entries", n),
		zap.Int("dropped", len(items)-n),
		zap.Uint64("next_id", uint64(next)))

	s.notify(Event{Kind: EventRestored})
	s.notify(evicted...)
	return n
}

// removeLocked unlinks e from entries and both indexes.
func (s *Store) removeLocked(e *list.Element, kind EventKind) Event {
	it := item(e)
	s.entries.Remove(e)
	delete(s.index, it.Hash)
	delete(s.byID, it.ID)
	if it.Pinned {
		s.pinned--
	} else {
		s.unpinnedBytes -= it.Content.Size()
	}
	return Event{Kind: kind, ID: it.ID}
}

// evictLocked drops least recently used unpinned entries, never keep, until
// the capacity and memory budget hold or nothing evictable remains.
func (s *Store) evictLocked(keep *list.Element) []Event {
	var evicted []Event
	for s.overLimitLocked() {
		victim := s.lruUnpinnedLocked(keep)
		if victim == nil {
			break
		}
		evicted = append(evicted, s.removeLocked(victim, EventEvicted))
	}
	return evicted
}

func (s *Store) overLimitLocked() bool {
	if s.entries.Len()-s.pinned > s.capacity {
		return true
	}
	return s.maxBytes > 0 && s.unpinnedBytes > s.maxBytes
}

func (s *Store) lruUnpinnedLocked(keep *list.Element) *list.Element {
	for e := s.entries.Back(); e != nil; e = e.Prev() {
		if e != keep && !item(e).Pinned {
			return e
		}
	}
	return nil
}
