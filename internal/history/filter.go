package history

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/berrythewa/clipman/internal/types"
)

// Filter selects entries for Snapshot. Filters run inside the store's
// critical section and must not call back into the store.
type Filter func(*types.ClipboardItem) bool

// All accepts every entry.
func All(*types.ClipboardItem) bool { return true }

// PinnedOnly accepts pinned entries.
func PinnedOnly(it *types.ClipboardItem) bool { return it.Pinned }

// KindFilter accepts entries of the given kinds.
func KindFilter(kinds ...types.Kind) Filter {
	return func(it *types.ClipboardItem) bool {
		for _, k := range kinds {
			if it.Content.Kind() == k {
				return true
			}
		}
		return false
	}
}

// Contains accepts entries whose text or file paths contain query, ignoring
// case. An empty query accepts everything. Images never match a non-empty
// query.
func Contains(query string) Filter {
	q := strings.ToLower(query)
	if q == "" {
		return All
	}
	return func(it *types.ClipboardItem) bool {
		switch it.Content.Kind() {
		case types.KindText:
			return strings.Contains(strings.ToLower(it.Content.Text()), q)
		case types.KindFiles:
			for _, p := range it.Content.Files() {
				if strings.Contains(strings.ToLower(p), q) {
					return true
				}
			}
		}
		return false
	}
}

// RegexFilter accepts text entries and file lists matching pattern.
func RegexFilter(pattern string) (Filter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}
	return func(it *types.ClipboardItem) bool {
		switch it.Content.Kind() {
		case types.KindText:
			return re.MatchString(it.Content.Text())
		case types.KindFiles:
			for _, p := range it.Content.Files() {
				if re.MatchString(p) {
					return true
				}
			}
		}
		return false
	}, nil
}

// And accepts entries accepted by every filter. Nil filters are skipped.
func And(filters ...Filter) Filter {
	return func(it *types.ClipboardItem) bool {
		for _, f := range filters {
			if f != nil && !f(it) {
				return false
			}
		}
		return true
	}
}
