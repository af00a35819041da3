package model

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Sentinel errors for the in-memory map.
var (
	ErrUnknownGroup = errors.New("model: unknown layer group")
	ErrUnknownLayer = errors.New("model: unknown layer")
	ErrDuplicate    = errors.New("model: duplicate layer id")
)

// Projection names the coordinate reference system of feature coordinates.
type Projection string

const (
	EPSG4326 Projection = "EPSG:4326"
	EPSG3857 Projection = "EPSG:3857"
)

// ToWGS84 returns the transform from p to longitude/latitude degrees, or nil
// when p already is longitude/latitude.
func (p Projection) ToWGS84() orb.Projection {
	switch p {
	case EPSG3857:
		return project.Mercator.ToWGS84
	default:
		return nil
	}
}

// Source is what the 3D side consumes from a 2D map.
type Source interface {
	Groups() []*LayerGroup
	// OrderedLayers returns every layer in draw order. It may be called from
	// any goroutine.
	OrderedLayers() []Layer
	Layer(id string) (Layer, bool)
	Subscribe(fn Listener) (cancel func())
	Projection() Projection
}

// Map is an in-memory 2D map: layer groups, their layers, and one
// notification stream for layer and feature changes. Listeners are called
// synchronously, outside the map lock.
type Map struct {
	mu         sync.Mutex
	groups     []*LayerGroup
	listeners  map[int]Listener
	nextID     int
	projection Projection
}

// NewMap creates an empty map using projection for feature coordinates.
func NewMap(projection Projection) *Map {
	if projection == "" {
		projection = EPSG4326
	}
	return &Map{
		listeners:  make(map[int]Listener),
		projection: projection,
	}
}

// Projection implements Source.
func (m *Map) Projection() Projection { return m.projection }

// Subscribe registers fn and returns a function that unregisters it.
func (m *Map) Subscribe(fn Listener) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Map) emit(ev Event) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// AddGroup appends a layer group. Layers already in the group are attached
// silently.
func (m *Map) AddGroup(g *LayerGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, g)
	for _, l := range g.layers {
		if lb, ok := l.(layerBase); ok {
			lb.base().attach(m.emit)
		}
	}
}

// Groups implements Source.
func (m *Map) Groups() []*LayerGroup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.groups)
}

// OrderedLayers implements Source. Layer z-indices are read under the map
// lock, so it is safe to call while another goroutine mutates the map.
func (m *Map) OrderedLayers() []Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return orderLayers(m.groups)
}

// Layer implements Source.
func (m *Map) Layer(id string) (Layer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, l := m.findLocked(id)
	return l, l != nil
}

func (m *Map) findLocked(id string) (*LayerGroup, Layer) {
	for _, g := range m.groups {
		for _, l := range g.layers {
			if l.ID() == id {
				return g, l
			}
		}
	}
	return nil, nil
}

// AddLayer appends l to the group and notifies LayerAdded.
func (m *Map) AddLayer(groupID string, l Layer) error {
	m.mu.Lock()
	if _, dup := m.findLocked(l.ID()); dup != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicate, l.ID())
	}
	idx := slices.IndexFunc(m.groups, func(g *LayerGroup) bool { return g.id == groupID })
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownGroup, groupID)
	}
	m.groups[idx].layers = append(m.groups[idx].layers, l)
	if lb, ok := l.(layerBase); ok {
		lb.base().attach(m.emit)
	}
	m.mu.Unlock()

	m.emit(Event{Type: LayerAdded, GroupID: groupID, Layer: RefOf(l)})
	return nil
}

// RemoveLayer removes a layer by id and notifies LayerRemoved. The event
// carries only the id, as the layer object is gone from the model.
func (m *Map) RemoveLayer(id string) error {
	m.mu.Lock()
	g, l := m.findLocked(id)
	if l == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	g.layers = slices.DeleteFunc(g.layers, func(x Layer) bool { return x.ID() == id })
	if lb, ok := l.(layerBase); ok {
		lb.base().attach(nil)
	}
	m.mu.Unlock()

	m.emit(Event{Type: LayerRemoved, GroupID: g.id, Layer: RefID(id)})
	return nil
}

// SetVisible changes layer visibility.
func (m *Map) SetVisible(id string, visible bool) error {
	return m.mutateLayer(id, LayerVisibilityChanged, func(b *baseLayer) bool {
		if b.visible == visible {
			return false
		}
		b.visible = visible
		return true
	})
}

// SetZIndex changes a layer z-index.
func (m *Map) SetZIndex(id string, z int) error {
	return m.mutateLayer(id, LayerZIndexChanged, func(b *baseLayer) bool {
		if b.zIndex == z {
			return false
		}
		b.zIndex = z
		return true
	})
}

func (m *Map) mutateLayer(id string, t EventType, fn func(b *baseLayer) bool) error {
	m.mu.Lock()
	g, l := m.findLocked(id)
	if l == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	lb, ok := l.(layerBase)
	changed := ok && fn(lb.base())
	m.mu.Unlock()

	if changed {
		m.emit(Event{Type: t, GroupID: g.id, Layer: RefOf(l)})
	}
	return nil
}

// orderLayers sorts every layer of groups by group z-index, then layer
// z-index, then insertion order. Callers hold the map lock.
func orderLayers(groups []*LayerGroup) []Layer {
	type entry struct {
		groupZ, layerZ, seq int
		layer               Layer
	}
	var entries []entry
	seq := 0
	for _, g := range groups {
		for _, l := range g.layers {
			entries = append(entries, entry{g.zIndex, l.ZIndex(), seq, l})
			seq++
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.groupZ != b.groupZ {
			return a.groupZ < b.groupZ
		}
		if a.layerZ != b.layerZ {
			return a.layerZ < b.layerZ
		}
		return a.seq < b.seq
	})
	out := make([]Layer, len(entries))
	for i, e := range entries {
		out[i] = e.layer
	}
	return out
}
