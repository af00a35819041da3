// Package headless is a CPU-only implementation of the engine contracts.
// It keeps every object in memory and counts allocations, removals and
// texture uploads so reconciliation cost can be asserted in tests.
//
// Scene is safe for concurrent use; the objects it hands out are not.
package headless

import (
	"errors"
	"image"
	"slices"
	"sort"
	"sync"

	"github.com/gogpu/vecscene/engine"
)

// ErrUnknownTexture is returned when releasing a texture that is not live.
var ErrUnknownTexture = errors.New("headless: unknown texture")

// Stats counts engine work since creation.
type Stats struct {
	Allocations     int // objects added to any collection
	Removals        int // objects removed from any collection
	Uploads         int // textures uploaded
	Releases        int // textures released
	LiveTextures    int
	LivePrimitives  int
	LiveBillboards  int
	LiveLabels      int
	LayerCount      int
	BackgroundColor engine.Color
	FogEnabled      bool
	FogDensity      float64
	Lighting        bool
	Terrain         string
}

// Scene is an in-memory engine.Scene.
type Scene struct {
	mu       sync.Mutex
	layers   []*LayerCollection
	textures map[uint64]*engine.Texture
	nextTex  uint64
	stats    Stats
	terrain  engine.TerrainProvider

	// RemoveHook, when set, is consulted before every removal; a non-nil
	// error is returned from Remove after the item has been detached.
	RemoveHook func(item any) error
}

// New creates an empty scene with ellipsoid terrain.
func New() *Scene {
	return &Scene{
		textures: make(map[uint64]*engine.Texture),
		terrain:  engine.EllipsoidTerrain{},
	}
}

// NewLayerCollection implements engine.Scene.
func (s *Scene) NewLayerCollection(name string) engine.LayerCollection {
	lc := &LayerCollection{name: name, show: true, scene: s}
	lc.primitives = &collection[engine.Primitive]{scene: s}
	lc.billboards = &collection[*engine.Billboard]{scene: s}
	lc.labels = &collection[*engine.Label]{scene: s}

	s.mu.Lock()
	s.layers = append(s.layers, lc)
	s.mu.Unlock()
	return lc
}

// RemoveLayerCollection implements engine.Scene. Objects still held by the
// collection are released.
func (s *Scene) RemoveLayerCollection(c engine.LayerCollection) error {
	lc, ok := c.(*LayerCollection)
	if !ok {
		return errors.New("headless: foreign layer collection")
	}
	s.mu.Lock()
	idx := slices.Index(s.layers, lc)
	if idx < 0 {
		s.mu.Unlock()
		return errors.New("headless: layer collection not in scene")
	}
	s.layers = slices.Delete(s.layers, idx, idx+1)
	s.mu.Unlock()

	var errs []error
	errs = append(errs, lc.primitives.clear()...)
	errs = append(errs, lc.billboards.clear()...)
	errs = append(errs, lc.labels.clear()...)
	return errors.Join(errs...)
}

// Layers returns the layer collections sorted by z-index, which is the
// order they would be drawn in.
func (s *Scene) Layers() []*LayerCollection {
	s.mu.Lock()
	out := slices.Clone(s.layers)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex() < out[j].ZIndex() })
	return out
}

// UploadTexture implements engine.TextureUploader.
func (s *Scene) UploadTexture(desc engine.TextureDescriptor, img *image.RGBA) (*engine.Texture, error) {
	if img == nil {
		return nil, errors.New("headless: nil image")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTex++
	t := &engine.Texture{ID: s.nextTex, Descriptor: desc, Source: img}
	s.textures[t.ID] = t
	s.stats.Uploads++
	return t, nil
}

// ReleaseTexture implements engine.TextureUploader.
func (s *Scene) ReleaseTexture(t *engine.Texture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil || s.textures[t.ID] != t {
		return ErrUnknownTexture
	}
	delete(s.textures, t.ID)
	s.stats.Releases++
	return nil
}

func (s *Scene) SetBackgroundColor(c engine.Color) {
	s.mu.Lock()
	s.stats.BackgroundColor = c
	s.mu.Unlock()
}

func (s *Scene) SetFog(enabled bool, density float64) {
	s.mu.Lock()
	s.stats.FogEnabled = enabled
	s.stats.FogDensity = density
	s.mu.Unlock()
}

func (s *Scene) SetLighting(enabled bool) {
	s.mu.Lock()
	s.stats.Lighting = enabled
	s.mu.Unlock()
}

func (s *Scene) SetTerrain(p engine.TerrainProvider) {
	if p == nil {
		p = engine.EllipsoidTerrain{}
	}
	s.mu.Lock()
	s.terrain = p
	s.mu.Unlock()
}

func (s *Scene) Terrain() engine.TerrainProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terrain
}

// Stats returns a snapshot of the counters and live object counts.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	st := s.stats
	st.LiveTextures = len(s.textures)
	st.LayerCount = len(s.layers)
	st.Terrain = s.terrain.Name()
	layers := slices.Clone(s.layers)
	s.mu.Unlock()

	for _, l := range layers {
		st.LivePrimitives += l.primitives.Len()
		st.LiveBillboards += l.billboards.Len()
		st.LiveLabels += l.labels.Len()
	}
	return st
}

func (s *Scene) counted(alloc bool) {
	s.mu.Lock()
	if alloc {
		s.stats.Allocations++
	} else {
		s.stats.Removals++
	}
	s.mu.Unlock()
}

func (s *Scene) removeHook(item any) error {
	s.mu.Lock()
	hook := s.RemoveHook
	s.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(item)
}

// LayerCollection implements engine.LayerCollection.
type LayerCollection struct {
	mu     sync.Mutex
	name   string
	show   bool
	zIndex int
	scene  *Scene

	primitives *collection[engine.Primitive]
	billboards *collection[*engine.Billboard]
	labels     *collection[*engine.Label]
}

func (l *LayerCollection) Name() string                                    { return l.name }
func (l *LayerCollection) Primitives() engine.Collection[engine.Primitive] { return l.primitives }
func (l *LayerCollection) Billboards() engine.Collection[*engine.Billboard] {
	return l.billboards
}
func (l *LayerCollection) Labels() engine.Collection[*engine.Label] { return l.labels }

func (l *LayerCollection) Show() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.show
}

func (l *LayerCollection) SetShow(show bool) {
	l.mu.Lock()
	l.show = show
	l.mu.Unlock()
}

func (l *LayerCollection) ZIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zIndex
}

func (l *LayerCollection) SetZIndex(z int) {
	l.mu.Lock()
	l.zIndex = z
	l.mu.Unlock()
}

// collection is a slice-backed engine.Collection.
type collection[T comparable] struct {
	mu    sync.Mutex
	items []T
	scene *Scene
}

func (c *collection[T]) Add(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
	c.scene.counted(true)
}

func (c *collection[T]) Remove(item T) (bool, error) {
	c.mu.Lock()
	idx := slices.Index(c.items, item)
	if idx >= 0 {
		c.items = slices.Delete(c.items, idx, idx+1)
	}
	c.mu.Unlock()
	if idx < 0 {
		return false, nil
	}
	c.scene.counted(false)
	return true, c.scene.removeHook(item)
}

func (c *collection[T]) Contains(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.items, item)
}

func (c *collection[T]) Get(i int) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[i]
}

func (c *collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns a snapshot of the items.
func (c *collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *collection[T]) clear() []error {
	c.mu.Lock()
	items := c.items
	c.items = nil
	c.mu.Unlock()

	var errs []error
	for _, it := range items {
		c.scene.counted(false)
		if err := c.scene.removeHook(it); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// PrimitiveItems returns a snapshot of the geometry primitives.
func (l *LayerCollection) PrimitiveItems() []engine.Primitive { return l.primitives.Items() }

// BillboardItems returns a snapshot of the billboards.
func (l *LayerCollection) BillboardItems() []*engine.Billboard { return l.billboards.Items() }

// LabelItems returns a snapshot of the labels.
func (l *LayerCollection) LabelItems() []*engine.Label { return l.labels.Items() }
