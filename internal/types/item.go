package types

import "time"

// ItemID identifies a history entry. IDs increase monotonically and are never
// reused within a process.
type ItemID uint64

// ClipboardItem is a history entry.
type ClipboardItem struct {
	ID         ItemID
	Content    ClipboardContent
	Hash       Hash
	CreatedAt  time.Time
	LastSeenAt time.Time
	Pinned     bool
}

// Kind is shorthand for Content.Kind().
func (i ClipboardItem) Kind() Kind { return i.Content.Kind() }
