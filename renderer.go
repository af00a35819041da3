package vecscene

import (
	"log/slog"
	"sync"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/scenesync"
	"github.com/gogpu/vecscene/settings"
)

// Renderer owns the synchronization of one map into one 3D scene and the
// scene's environment.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	mu       sync.Mutex
	scene    engine.Scene
	root     *scenesync.Root
	settings *settings.Store
	logger   *slog.Logger
	terrainF engine.TerrainFactory

	enabled    bool
	fog        bool
	fogDensity float64
	terrain    *engine.TerrainOptions // last valid options
	unsub      func()
}

// NewRenderer creates a disabled renderer. Environment settings already in
// store are applied immediately; later changes are applied as they happen.
// store may be nil.
func NewRenderer(scene engine.Scene, source model.Source, store *settings.Store, opts ...RendererOption) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	syncOpts := append([]scenesync.RootOption{scenesync.WithLogger(o.logger)}, o.sync...)
	r := &Renderer{
		scene:      scene,
		root:       scenesync.NewRoot(source, scene, syncOpts...),
		settings:   store,
		logger:     o.logger,
		terrainF:   o.terrain,
		fogDensity: DefaultFogDensity,
	}
	if store != nil {
		r.unsub = store.Subscribe(r.applySetting)
		for _, key := range settings.EnvironmentKeys {
			if v, ok := store.Get(key); ok {
				r.applySetting(key, v)
			}
		}
	}
	return r
}

// Root returns the scene synchronizer.
func (r *Renderer) Root() *scenesync.Root { return r.root }

// Enabled reports whether the renderer is drawing.
func (r *Renderer) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Enable starts drawing. Layers are rebuilt from the map, since events may
// have been missed while disabled, and the last terrain options are
// reapplied.
func (r *Renderer) Enable() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return nil
	}
	r.enabled = true
	err := r.root.Synchronize()
	r.root.SetActive(true)
	if rerr := r.root.Reset(); rerr != nil && err == nil {
		err = rerr
	}
	if r.terrain != nil {
		r.rebuildTerrainLocked()
	}
	r.logger.Info("vecscene: renderer enabled")
	return err
}

// Disable stops drawing. Resources stay resident and events keep being
// queued.
func (r *Renderer) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.enabled = false
	r.root.SetActive(false)
	r.logger.Info("vecscene: renderer disabled")
}

// Tick reconciles queued feature changes. Hosts call it once per frame.
func (r *Renderer) Tick() (bool, error) {
	return r.root.Tick()
}

// Close stops listening to settings and releases every resource.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
	r.enabled = false
	r.mu.Unlock()
	return r.root.Dispose()
}
