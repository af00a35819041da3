package scenesync

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/gogpu/vecscene/convert"
	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/internal/debounce"
	"github.com/gogpu/vecscene/internal/labeltext"
	"github.com/gogpu/vecscene/internal/logging"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// RootStats summarizes a Root.
type RootStats struct {
	Layers      int
	ZOrderRuns  int
	Synchronize Stats
	Images      vector.ImageStats
}

// Root orchestrates the synchronizers of every layer of a map.
//
// Root is safe for concurrent use: map notifications, Tick and the debounced
// draw-order recompute all take the same lock.
type Root struct {
	mu       sync.Mutex
	source   model.Source
	registry *Registry
	env      *Env
	logger   *slog.Logger
	zorder   *debounce.Debouncer

	layers      map[string]Synchronizer
	initialized bool
	active      bool
	cancel      func()
	zOrderRuns  int
}

// NewRoot creates a Root reconciling source into scene. Nothing happens
// until Synchronize.
func NewRoot(source model.Source, scene engine.Scene, opts ...RootOption) *Root {
	o := defaultRootOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	if o.measurer == nil {
		o.measurer = labeltext.NewMeasurer()
	}
	logger := logging.Or(o.logger)
	images := o.images
	if images == nil {
		images = vector.NewImageCache(scene, o.loader, logger)
	}

	r := &Root{
		source:   source,
		registry: o.registry,
		logger:   logger,
		layers:   make(map[string]Synchronizer),
		env: &Env{
			Scene:  scene,
			Images: images,
			Table: convert.NewTable(convert.Options{
				Strict:   o.strict,
				Logger:   logger,
				Measurer: o.measurer,
			}),
			ToWGS84: source.Projection().ToWGS84(),
			Logger:  logger,
		},
	}
	r.zorder = debounce.New(o.clock, o.zOrderDelay, r.UpdateZOrder, func(err error) {
		r.logger.Warn("vecscene: draw order update failed", "err", err)
	})
	return r
}

// Synchronize subscribes to the map and creates a synchronizer for every
// existing layer. Later calls do nothing: per-layer work is event driven.
func (r *Root) Synchronize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}
	r.initialized = true
	r.cancel = r.source.Subscribe(r.onEvent)

	var errs []error
	for _, l := range r.source.OrderedLayers() {
		if err := r.addLayerLocked(l); err != nil {
			errs = append(errs, err)
		}
	}
	r.updateZOrderLocked()
	return errors.Join(errs...)
}

// Reset rebuilds every synchronizer from the map, for use after a paused
// period during which events may have been missed.
func (r *Root) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, id := range r.layerIDsLocked() {
		if err := r.layers[id].Reset(); err != nil {
			r.logger.Warn("vecscene: reset layer", "layer", id, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetActive enables or disables engine work in every synchronizer.
func (r *Root) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
	for _, s := range r.layers {
		s.SetActive(active)
	}
}

// Active reports whether engine work is enabled.
func (r *Root) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Tick reconciles queued feature changes of every layer and reports whether
// the scene changed. Hosts call it once per frame.
func (r *Root) Tick() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		changed bool
		errs    []error
	)
	for _, id := range r.layerIDsLocked() {
		c, err := r.layers[id].Flush()
		changed = changed || c
		if err != nil {
			errs = append(errs, err)
		}
	}
	return changed, errors.Join(errs...)
}

// Synchronizer returns the synchronizer of a layer.
func (r *Root) Synchronizer(layerID string) (Synchronizer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.layers[layerID]
	return s, ok
}

// Stats returns counters summed over every layer.
func (r *Root) Stats() RootStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := RootStats{Layers: len(r.layers), ZOrderRuns: r.zOrderRuns, Images: r.env.Images.Stats()}
	for _, s := range r.layers {
		st.Synchronize = st.Synchronize.Add(s.Stats())
	}
	return st
}

// Dispose unsubscribes from the map and releases every synchronizer.
// Failures are logged; every layer is disposed regardless.
func (r *Root) Dispose() error {
	r.zorder.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	var errs []error
	for _, id := range r.layerIDsLocked() {
		if err := r.disposeLocked(id); err != nil {
			errs = append(errs, err)
		}
	}
	r.env.Images.Purge()
	r.initialized = false
	return errors.Join(errs...)
}

func (r *Root) onEvent(ev model.Event) {
	switch ev.Type {
	case model.LayerAdded:
		r.OnLayerAdd(ev.Layer)
	case model.LayerRemoved:
		r.OnLayerRemove(ev.Layer)
	case model.LayerVisibilityChanged:
		r.mu.Lock()
		if s, ok := r.layers[ev.Layer.ID]; ok {
			if l, ok := r.resolveLocked(ev.Layer); ok {
				s.SetVisible(l.Visible())
			}
		}
		r.mu.Unlock()
	case model.LayerZIndexChanged:
		r.zorder.Trigger()
	case model.FeatureAdded, model.FeatureRemoved, model.FeatureChanged:
		r.mu.Lock()
		if s, ok := r.layers[ev.Layer.ID]; ok {
			s.HandleEvent(ev)
		}
		r.mu.Unlock()
	}
}

// OnLayerAdd creates the synchronizer of a newly added layer. ref may hold
// the layer itself or only its id.
func (r *Root) OnLayerAdd(ref model.LayerRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.resolveLocked(ref)
	if !ok {
		r.logger.Debug("vecscene: added layer not found", "layer", ref.ID)
		return
	}
	if err := r.addLayerLocked(l); err != nil {
		r.logger.Warn("vecscene: add layer", "layer", l.ID(), "err", err)
	}
	r.zorder.Trigger()
}

// OnLayerRemove disposes the synchronizer of a removed layer.
func (r *Root) OnLayerRemove(ref model.LayerRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ref.ID
	if id == "" && ref.Layer != nil {
		id = ref.Layer.ID()
	}
	if _, ok := r.layers[id]; !ok {
		return
	}
	r.disposeLocked(id) // logged
	r.zorder.Trigger()
}

// UpdateZOrder recomputes the draw order of every layer now. Structural
// events schedule it through a debounce.
func (r *Root) UpdateZOrder() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateZOrderLocked()
}

// ZOrderPending reports whether a debounced recompute is scheduled.
func (r *Root) ZOrderPending() bool { return r.zorder.Pending() }

func (r *Root) updateZOrderLocked() {
	r.zOrderRuns++
	for i, l := range r.source.OrderedLayers() {
		if s, ok := r.layers[l.ID()]; ok {
			s.SetZIndex(i)
		}
	}
}

func (r *Root) resolveLocked(ref model.LayerRef) (model.Layer, bool) {
	if ref.Layer != nil {
		return ref.Layer, true
	}
	if ref.ID == "" {
		return nil, false
	}
	return r.source.Layer(ref.ID)
}

// addLayerLocked creates exactly one synchronizer per layer. Kinds without
// a factory have no 3D counterpart and are skipped.
func (r *Root) addLayerLocked(l model.Layer) error {
	if _, exists := r.layers[l.ID()]; exists {
		return nil
	}
	factory, ok := r.registry.Lookup(l.Kind())
	if !ok {
		return nil
	}
	s, err := factory(l, r.env)
	if err != nil {
		return err
	}
	r.layers[l.ID()] = s
	s.SetVisible(l.Visible())
	s.SetActive(r.active)
	if r.active {
		return s.Synchronize()
	}
	return nil
}

func (r *Root) disposeLocked(id string) error {
	s := r.layers[id]
	delete(r.layers, id)
	if err := s.Dispose(); err != nil {
		r.logger.Warn("vecscene: dispose layer", "layer", id, "err", err)
		return err
	}
	return nil
}

func (r *Root) layerIDsLocked() []string {
	ids := make([]string, 0, len(r.layers))
	for id := range r.layers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
