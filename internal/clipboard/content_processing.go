package clipboard

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/berrythewa/clipman/internal/types"
)

// DefaultMaxContentSize is the largest payload recorded when no limit is set.
const DefaultMaxContentSize int64 = 32 * 1024 * 1024

// ContentFilter reports whether content should be recorded.
type ContentFilter func(types.ClipboardContent) bool

// ContentProcessor decides which clipboard changes reach the history.
type ContentProcessor struct {
	filters          []ContentFilter
	logger           *zap.Logger
	MaxSizeBytes     int64
	IgnoreWhitespace bool
}

// NewContentProcessor creates a new content processor
func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		MaxSizeBytes: DefaultMaxContentSize,
		logger:       zap.NewNop(),
	}
}

// SetLogger sets the logger for the content processor
func (c *ContentProcessor) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetMaxSize sets the maximum size for content processing in bytes.
// Non-positive values disable the limit.
func (c *ContentProcessor) SetMaxSize(maxSizeBytes int64) {
	c.MaxSizeBytes = maxSizeBytes
}

func (c *ContentProcessor) AddFilter(filter ContentFilter) {
	c.filters = append(c.filters, filter)
}

// Accept applies the size limit, the whitespace rule and every filter.
func (c *ContentProcessor) Accept(content types.ClipboardContent) bool {
	if content.IsZero() {
		return false
	}
	if c.MaxSizeBytes > 0 && content.Size() > c.MaxSizeBytes {
		c.logger.Debug("Content exceeds maximum size",
			zap.Int64("max_size_bytes", c.MaxSizeBytes),
			zap.Int64("content_size_bytes", content.Size()),
			zap.String("kind", string(content.Kind())))
		return false
	}
	if c.IgnoreWhitespace && content.Kind() == types.KindText && strings.TrimSpace(content.Text()) == "" {
		c.logger.Debug("Ignoring whitespace-only text")
		return false
	}
	for _, filter := range c.filters {
		if !filter(content) {
			return false
		}
	}
	return true
}

// Helper functions for filters

// KindFilter allows only the given kinds.
func KindFilter(allowed ...types.Kind) ContentFilter {
	return func(content types.ClipboardContent) bool {
		for _, k := range allowed {
			if content.Kind() == k {
				return true
			}
		}
		return false
	}
}

// ExcludePatternFilter drops text matching any of the patterns, for example
// tokens or one-time codes.
func ExcludePatternFilter(patterns ...string) (ContentFilter, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return func(content types.ClipboardContent) bool {
		if content.Kind() != types.KindText {
			return true
		}
		for _, re := range res {
			if re.MatchString(content.Text()) {
				return false
			}
		}
		return true
	}, nil
}
