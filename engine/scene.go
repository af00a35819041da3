package engine

// Collection is an ordered, mutable set of engine objects. Remove reports
// whether the item was present; a non-nil error means the engine failed to
// release the item's GPU resources.
type Collection[T comparable] interface {
	Add(item T)
	Remove(item T) (bool, error)
	Contains(item T) bool
	Get(i int) T
	Len() int
}

// LayerCollection groups every engine object belonging to one 2D layer so
// the layer can be shown, hidden and ordered as a unit.
type LayerCollection interface {
	Name() string
	Primitives() Collection[Primitive]
	Billboards() Collection[*Billboard]
	Labels() Collection[*Label]
	Show() bool
	SetShow(show bool)
	ZIndex() int
	SetZIndex(z int)
}

// TerrainProvider supplies surface heights.
type TerrainProvider interface {
	Name() string
}

// EllipsoidTerrain is the flat-ellipsoid provider used when terrain is off.
type EllipsoidTerrain struct{}

func (EllipsoidTerrain) Name() string { return "ellipsoid" }

// TerrainOptions configure a terrain provider.
type TerrainOptions struct {
	Provider       string  `toml:"provider"`
	URL            string  `toml:"url"`
	Exaggeration   float64 `toml:"exaggeration"`
	RequestNormals bool    `toml:"request_normals"`
}

// TerrainFactory builds a provider from options.
type TerrainFactory func(opts TerrainOptions) (TerrainProvider, error)

// Scene is the engine surface used by vecscene: per-layer collections,
// texture upload and environment state.
type Scene interface {
	TextureUploader

	NewLayerCollection(name string) LayerCollection
	RemoveLayerCollection(c LayerCollection) error

	SetBackgroundColor(c Color)
	SetFog(enabled bool, density float64)
	SetLighting(enabled bool)
	SetTerrain(p TerrainProvider)
	Terrain() TerrainProvider
}
