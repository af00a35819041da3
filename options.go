package vecscene

import (
	"log/slog"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/scenesync"
)

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	r := vecscene.NewRenderer(scene, m, store,
//	    vecscene.WithTerrainFactory(myTerrain),
//	    vecscene.WithSyncOptions(scenesync.WithStrict(true)),
//	)
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	logger  *slog.Logger
	terrain engine.TerrainFactory
	sync    []scenesync.RootOption
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		logger:  nil, // Will be set to Logger() if nil
		terrain: DefaultTerrain,
	}
}

// WithLogger sets the logger of one renderer, overriding Logger().
func WithLogger(l *slog.Logger) RendererOption {
	return func(o *rendererOptions) {
		o.logger = l
	}
}

// WithTerrainFactory sets how terrain options become a provider.
func WithTerrainFactory(f engine.TerrainFactory) RendererOption {
	return func(o *rendererOptions) {
		if f != nil {
			o.terrain = f
		}
	}
}

// WithSyncOptions passes options to the scene synchronizer.
func WithSyncOptions(opts ...scenesync.RootOption) RendererOption {
	return func(o *rendererOptions) {
		o.sync = append(o.sync, opts...)
	}
}
