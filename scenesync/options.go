package scenesync

import (
	"log/slog"
	"time"

	"github.com/gogpu/vecscene/convert"
	"github.com/gogpu/vecscene/internal/debounce"
	"github.com/gogpu/vecscene/vector"
)

// DefaultZOrderDelay is the quiet period before the draw order is
// recomputed after a structural change.
const DefaultZOrderDelay = 250 * time.Millisecond

// Clock schedules delayed work. Tests substitute a manual clock.
type Clock = debounce.Clock

// rootOptions holds optional configuration for a Root.
type rootOptions struct {
	registry    *Registry
	logger      *slog.Logger
	clock       Clock
	zOrderDelay time.Duration
	strict      bool
	loader      vector.ImageLoader
	measurer    convert.TextMeasurer
	images      *vector.ImageCache
}

func defaultRootOptions() rootOptions {
	return rootOptions{
		clock:       debounce.SystemClock{},
		zOrderDelay: DefaultZOrderDelay,
	}
}

// RootOption configures a Root.
type RootOption func(*rootOptions)

// WithRegistry sets the synchronizer registry. The default registers
// VectorLayer for vector layers.
func WithRegistry(r *Registry) RootOption {
	return func(o *rootOptions) {
		o.registry = r
	}
}

// WithLogger sets the logger. Nil means silent.
func WithLogger(l *slog.Logger) RootOption {
	return func(o *rootOptions) {
		o.logger = l
	}
}

// WithClock sets the clock driving the draw-order debounce.
func WithClock(c Clock) RootOption {
	return func(o *rootOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithZOrderDelay sets the draw-order debounce period.
func WithZOrderDelay(d time.Duration) RootOption {
	return func(o *rootOptions) {
		if d > 0 {
			o.zOrderDelay = d
		}
	}
}

// WithStrict makes programmer errors panic instead of being logged.
func WithStrict(strict bool) RootOption {
	return func(o *rootOptions) {
		o.strict = strict
	}
}

// WithImageLoader sets how icon sources are read.
func WithImageLoader(l vector.ImageLoader) RootOption {
	return func(o *rootOptions) {
		o.loader = l
	}
}

// WithTextMeasurer sets the label measurer. The default shapes text with
// the Go Regular font.
func WithTextMeasurer(m convert.TextMeasurer) RootOption {
	return func(o *rootOptions) {
		o.measurer = m
	}
}

// WithImageCache shares an existing texture cache.
func WithImageCache(c *vector.ImageCache) RootOption {
	return func(o *rootOptions) {
		o.images = c
	}
}
