package history

import "github.com/berrythewa/clipman/internal/types"

// EventKind names a store mutation.
type EventKind string

const (
	EventInserted EventKind = "inserted"
	EventTouched  EventKind = "touched"
	EventPinned   EventKind = "pinned"
	EventUnpinned EventKind = "unpinned"
	EventRemoved  EventKind = "removed"
	EventEvicted  EventKind = "evicted"
	EventCleared  EventKind = "cleared"
	EventRestored EventKind = "restored"
)

// Event is delivered to subscribers after every mutation. ID is zero for
// events that do not concern a single entry.
type Event struct {
	Kind EventKind    `json:"kind"`
	ID   types.ItemID `json:"id,omitempty"`
}

// Subscribe returns a channel receiving every subsequent Event. Delivery is
// non-blocking: when the buffer is full the event is dropped for that
// subscriber.
func (s *Store) Subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	s.subMu.Lock()
	s.subs[ch] = ch
	s.subMu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (s *Store) Unsubscribe(ch <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if c, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(c)
	}
}

func (s *Store) notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
