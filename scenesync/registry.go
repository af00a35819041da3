package scenesync

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/convert"
	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// Synchronizer keeps the 3D counterpart of one 2D layer current.
type Synchronizer interface {
	// Synchronize reconciles every feature of the layer.
	Synchronize() error
	// HandleEvent queues a feature event for the next Flush.
	HandleEvent(ev model.Event)
	// Flush reconciles queued features and reports whether the engine was
	// touched.
	Flush() (bool, error)
	// Reset discards every resource and rebuilds from the layer.
	Reset() error
	// SetActive enables or disables engine work.
	SetActive(active bool)
	// SetVisible shows or hides the layer without releasing resources.
	SetVisible(visible bool)
	// SetZIndex places the layer in the draw order.
	SetZIndex(z int)
	// Dispose releases every resource.
	Dispose() error
	// Stats returns reconciliation counters.
	Stats() Stats
}

// Env is what a factory gets to build a synchronizer.
type Env struct {
	Scene   engine.Scene
	Images  *vector.ImageCache
	Table   *convert.Table
	ToWGS84 orb.Projection
	Logger  *slog.Logger
}

// Factory creates the synchronizer of a layer.
type Factory func(layer model.Layer, env *Env) (Synchronizer, error)

// Registry maps layer kinds to synchronizer factories. It is built once and
// handed to Root.
type Registry struct {
	mu        sync.RWMutex
	factories map[model.LayerKind]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[model.LayerKind]Factory)}
}

// DefaultRegistry returns a registry with VectorLayer registered for vector
// layers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(model.KindVector, NewVectorLayer)
	return r
}

// Register sets the factory of kind, replacing any previous one.
func (r *Registry) Register(kind model.LayerKind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Lookup returns the factory of kind.
func (r *Registry) Lookup(kind model.LayerKind) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	return f, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []model.LayerKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.LayerKind, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
