package model

import (
	"slices"
	"sync"
)

// LayerKind names the kind of a 2D layer. 3D synchronizers are registered
// per kind.
type LayerKind string

const (
	KindVector LayerKind = "vector"
	KindRaster LayerKind = "raster"
)

// Layer is the part of a 2D layer every synchronizer needs.
type Layer interface {
	ID() string
	Kind() LayerKind
	Visible() bool
	ZIndex() int
}

// FeatureSource is a layer holding vector features.
type FeatureSource interface {
	Layer
	Features() []*Feature
	Feature(id string) (*Feature, bool)
	// ResolveStyle returns the effective style of f: its own style, or the
	// layer style. A nil style means the feature is hidden.
	ResolveStyle(f *Feature) *Style
}

// baseLayer carries the state shared by all in-memory layers.
type baseLayer struct {
	id      string
	visible bool
	zIndex  int
	emit    func(Event)
}

func (b *baseLayer) ID() string    { return b.id }
func (b *baseLayer) Visible() bool { return b.visible }
func (b *baseLayer) ZIndex() int   { return b.zIndex }

func (b *baseLayer) attach(emit func(Event)) { b.emit = emit }

func (b *baseLayer) base() *baseLayer { return b }

// RasterLayer is an in-memory imagery layer. It has no vector content.
type RasterLayer struct {
	baseLayer
}

// NewRasterLayer creates a visible raster layer.
func NewRasterLayer(id string) *RasterLayer {
	return &RasterLayer{baseLayer{id: id, visible: true}}
}

func (*RasterLayer) Kind() LayerKind { return KindRaster }

// VectorLayer is an in-memory vector layer. Mutations notify the owning Map.
// VectorLayer is safe for concurrent use.
type VectorLayer struct {
	baseLayer

	mu       sync.RWMutex
	features map[string]*Feature
	order    []string
	style    *Style
}

// NewVectorLayer creates a visible vector layer with an optional default
// style.
func NewVectorLayer(id string, style *Style) *VectorLayer {
	return &VectorLayer{
		baseLayer: baseLayer{id: id, visible: true},
		features:  make(map[string]*Feature),
		style:     style,
	}
}

func (*VectorLayer) Kind() LayerKind { return KindVector }

// Style returns the layer style.
func (l *VectorLayer) Style() *Style {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.style
}

// SetStyle replaces the layer style and notifies a change for every feature
// that uses it.
func (l *VectorLayer) SetStyle(s *Style) {
	l.mu.Lock()
	l.style = s
	var affected []*Feature
	for _, id := range l.order {
		if f := l.features[id]; f.style == nil {
			affected = append(affected, f)
		}
	}
	l.mu.Unlock()
	for _, f := range affected {
		l.notify(FeatureChanged, f)
	}
}

// Features returns the features in insertion order.
func (l *VectorLayer) Features() []*Feature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Feature, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.features[id])
	}
	return out
}

// Feature looks a feature up by id.
func (l *VectorLayer) Feature(id string) (*Feature, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.features[id]
	return f, ok
}

// ResolveStyle implements FeatureSource.
func (l *VectorLayer) ResolveStyle(f *Feature) *Style {
	if s := f.Style(); s != nil {
		return s
	}
	return l.Style()
}

// Len returns the number of features.
func (l *VectorLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.features)
}

// Add inserts features. A feature with an existing id replaces the old one,
// which is reported as removed first.
func (l *VectorLayer) Add(features ...*Feature) {
	for _, f := range features {
		l.mu.Lock()
		old, exists := l.features[f.id]
		if exists {
			old.removed = true
			l.order = slices.DeleteFunc(l.order, func(id string) bool { return id == f.id })
		}
		f.removed = false
		l.features[f.id] = f
		l.order = append(l.order, f.id)
		l.mu.Unlock()

		if exists {
			l.notify(FeatureRemoved, old)
		}
		l.notify(FeatureAdded, f)
	}
}

// Remove deletes a feature by id and reports whether it existed.
func (l *VectorLayer) Remove(id string) bool {
	l.mu.Lock()
	f, ok := l.features[id]
	if ok {
		delete(l.features, id)
		l.order = slices.DeleteFunc(l.order, func(s string) bool { return s == id })
		f.removed = true
	}
	l.mu.Unlock()
	if ok {
		l.notify(FeatureRemoved, f)
	}
	return ok
}

// Clear removes every feature.
func (l *VectorLayer) Clear() {
	for _, f := range l.Features() {
		l.Remove(f.ID())
	}
}

// Update applies fn to the feature with the given id and reports the change.
func (l *VectorLayer) Update(id string, fn func(f *Feature)) bool {
	f, ok := l.Feature(id)
	if !ok {
		return false
	}
	fn(f)
	l.notify(FeatureChanged, f)
	return true
}

// Changed reports an out-of-band change of f, for callers that mutated the
// feature, its geometry or its style directly.
func (l *VectorLayer) Changed(f *Feature) {
	l.notify(FeatureChanged, f)
}

func (l *VectorLayer) notify(t EventType, f *Feature) {
	if l.emit == nil {
		return
	}
	l.emit(Event{Type: t, Layer: RefOf(l), Feature: f})
}

// layerBase gives the Map access to the mutable state of its layers.
type layerBase interface {
	base() *baseLayer
}

// LayerGroup is an ordered list of layers with its own z-index.
type LayerGroup struct {
	id     string
	zIndex int
	layers []Layer
}

// NewLayerGroup creates an empty group.
func NewLayerGroup(id string, zIndex int) *LayerGroup {
	return &LayerGroup{id: id, zIndex: zIndex}
}

func (g *LayerGroup) ID() string  { return g.id }
func (g *LayerGroup) ZIndex() int { return g.zIndex }

// Layers returns the layers in draw order within the group.
func (g *LayerGroup) Layers() []Layer {
	return slices.Clone(g.layers)
}
