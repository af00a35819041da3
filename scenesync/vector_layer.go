package scenesync

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/convert"
	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/internal/logging"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// ErrNotFeatureSource is returned when a vector synchronizer is asked to
// follow a layer without features.
var ErrNotFeatureSource = errors.New("scenesync: layer has no features")

// allKinds is every converter kind. Each part is offered to all of them so
// a part whose geometry type changed loses its stale records.
var allKinds = [...]vector.Kind{vector.KindPoint, vector.KindLine, vector.KindPolygon, vector.KindLabel}

// VectorLayer synchronizes one vector layer. It owns its layer collection
// and vector.Context exclusively. It is not safe for concurrent use; Root
// serializes access.
type VectorLayer struct {
	layer      model.FeatureSource
	table      *convert.Table
	scene      engine.Scene
	collection engine.LayerCollection
	ctx        *vector.Context
	logger     *slog.Logger
	throttle   *logging.Throttle

	active  bool
	visible bool
	pending map[string]*model.Feature
	stats   Stats
}

// NewVectorLayer is the Factory of vector layers. The synchronizer starts
// inactive.
func NewVectorLayer(layer model.Layer, env *Env) (Synchronizer, error) {
	src, ok := layer.(model.FeatureSource)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFeatureSource, layer.ID())
	}
	logger := logging.Or(env.Logger).With("layer", layer.ID())
	coll := env.Scene.NewLayerCollection(layer.ID())
	coll.SetShow(false)
	return &VectorLayer{
		layer:      src,
		table:      env.Table,
		scene:      env.Scene,
		collection: coll,
		ctx:        vector.NewContext(layer.ID(), coll, env.Images, env.ToWGS84, logger),
		logger:     logger,
		throttle:   logging.NewThrottle(3, 10*time.Second),
		visible:    layer.Visible(),
		pending:    make(map[string]*model.Feature),
	}, nil
}

// Context returns the layer's registry.
func (s *VectorLayer) Context() *vector.Context { return s.ctx }

// Collection returns the layer's engine collection.
func (s *VectorLayer) Collection() engine.LayerCollection { return s.collection }

// Active reports whether engine work is enabled.
func (s *VectorLayer) Active() bool { return s.active }

// SyncFeature reconciles one feature immediately and reports whether any
// engine object was created, changed or removed. A removed or unstyled
// feature loses every resource.
func (s *VectorLayer) SyncFeature(f *model.Feature) (bool, error) {
	changed, err := s.syncFeature(f)
	s.ctx.EndPass()
	return changed, err
}

func (s *VectorLayer) syncFeature(f *model.Feature) (bool, error) {
	var (
		style   *model.Style
		shapes  []orb.Geometry
		changed bool
		errs    []error
	)
	geom := f.Geometry()
	if !f.Removed() {
		style = s.layer.ResolveStyle(f)
		shapes = geom.Parts()
	}

	for i, shape := range shapes {
		in := &convert.Input{Feature: f, Geometry: geom, Part: i, Shape: shape, Style: style}
		for _, kind := range allKinds {
			out, err := s.table.Sync(in, s.ctx, kind)
			s.stats.count(out)
			changed = changed || out.Changed()
			if err != nil {
				s.fail(f.ID(), err)
				errs = append(errs, err)
			}
		}
	}

	// Parts beyond the current geometry.
	for _, rec := range s.ctx.FeatureRecords(f.ID()) {
		if rec.Key.Part < len(shapes) {
			continue
		}
		changed = true
		s.stats.Deleted++
		if err := s.ctx.Remove(rec); err != nil {
			s.fail(f.ID(), err)
			errs = append(errs, err)
		}
	}
	return changed, errors.Join(errs...)
}

func (s *VectorLayer) fail(feature string, err error) {
	s.stats.Failures++
	s.throttle.Do("sync", func() {
		s.logger.Warn("vecscene: feature not drawn", "feature", feature, "err", err)
	})
}

// Synchronize reconciles every feature of the layer and drops resources of
// features that are gone. It does nothing while inactive.
func (s *VectorLayer) Synchronize() error {
	if !s.active {
		return nil
	}
	var errs []error
	live := make(map[string]struct{})
	for _, f := range s.layer.Features() {
		live[f.ID()] = struct{}{}
		if _, err := s.syncFeature(f); err != nil {
			errs = append(errs, err)
		}
	}
	for _, id := range s.ctx.Features() {
		if _, ok := live[id]; ok {
			continue
		}
		if err := s.ctx.RemoveFeature(id); err != nil {
			s.fail(id, err)
			errs = append(errs, err)
		}
	}
	clear(s.pending)
	s.ctx.EndPass()
	return errors.Join(errs...)
}

// HandleEvent implements Synchronizer. Events are queued even while
// inactive; only the last state of a feature matters.
func (s *VectorLayer) HandleEvent(ev model.Event) {
	f := ev.Feature
	if f == nil {
		return
	}
	switch ev.Type {
	case model.FeatureAdded, model.FeatureRemoved:
		s.pending[f.ID()] = f
	case model.FeatureChanged:
		s.pending[f.ID()] = f
		s.ctx.MarkDirty(f.ID())
	}
}

// Flush implements Synchronizer. Queued features are reconciled in id
// order.
func (s *VectorLayer) Flush() (bool, error) {
	if !s.active || len(s.pending) == 0 {
		return false, nil
	}
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		changed bool
		errs    []error
	)
	for _, id := range ids {
		c, err := s.syncFeature(s.pending[id])
		changed = changed || c
		if err != nil {
			errs = append(errs, err)
		}
	}
	clear(s.pending)
	s.ctx.EndPass()
	s.logger.Debug("vecscene: flushed", "features", len(ids), "changed", changed)
	return changed, errors.Join(errs...)
}

// Reset implements Synchronizer.
func (s *VectorLayer) Reset() error {
	err := s.ctx.Dispose()
	clear(s.pending)
	if serr := s.Synchronize(); serr != nil {
		err = errors.Join(err, serr)
	}
	return err
}

// SetActive implements Synchronizer.
func (s *VectorLayer) SetActive(active bool) {
	s.active = active
	s.collection.SetShow(s.active && s.visible)
}

// SetVisible implements Synchronizer.
func (s *VectorLayer) SetVisible(visible bool) {
	s.visible = visible
	s.collection.SetShow(s.active && s.visible)
}

// SetZIndex implements Synchronizer.
func (s *VectorLayer) SetZIndex(z int) { s.collection.SetZIndex(z) }

// Dispose implements Synchronizer. Every resource is released even when
// some fail.
func (s *VectorLayer) Dispose() error {
	err := s.ctx.Dispose()
	clear(s.pending)
	if rerr := s.scene.RemoveLayerCollection(s.collection); rerr != nil {
		err = errors.Join(err, rerr)
	}
	return err
}

// Stats implements Synchronizer.
func (s *VectorLayer) Stats() Stats {
	st := s.stats
	st.Records = s.ctx.Len()
	st.Pending = len(s.pending)
	return st
}
