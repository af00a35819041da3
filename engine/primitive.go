package engine

// PrimitiveClass identifies the concrete class of a geometry primitive.
// Classes bake structure at construction; switching class means recreating.
type PrimitiveClass uint8

const (
	ClassNone PrimitiveClass = iota
	ClassPolyline
	ClassGroundPolyline
	ClassWall
	ClassPolygon
	ClassGroundPolygon
	ClassExtrudedPolygon
)

func (c PrimitiveClass) String() string {
	switch c {
	case ClassPolyline:
		return "polyline"
	case ClassGroundPolyline:
		return "ground-polyline"
	case ClassWall:
		return "wall"
	case ClassPolygon:
		return "polygon"
	case ClassGroundPolygon:
		return "ground-polygon"
	case ClassExtrudedPolygon:
		return "extruded-polygon"
	default:
		return "none"
	}
}

// Primitive is a geometry primitive held by a layer's primitive collection.
type Primitive interface {
	Class() PrimitiveClass
	SetShow(show bool)
}

// LineMaterial is the mutable appearance of a line. Width and dash are baked
// into the primitive geometry by the engine and are read at construction
// only.
type LineMaterial struct {
	Color       Color
	Dashed      bool
	DashPattern uint16
	DashLength  float64
}

// Polyline is a line through positions at literal heights.
type Polyline struct {
	Positions []Cartesian3
	Width     float64
	ArcType   ArcType
	Material  LineMaterial
	Show      bool
}

func (*Polyline) Class() PrimitiveClass { return ClassPolyline }
func (p *Polyline) SetShow(show bool)   { p.Show = show }

// GroundPolyline is a line draped on terrain.
type GroundPolyline struct {
	Positions []Cartesian3
	Width     float64
	ArcType   ArcType
	Material  LineMaterial
	Show      bool
}

func (*GroundPolyline) Class() PrimitiveClass { return ClassGroundPolyline }
func (p *GroundPolyline) SetShow(show bool)   { p.Show = show }

// Wall is a vertical curtain between per-position minimum and maximum
// heights.
type Wall struct {
	Positions      []Cartesian3
	MinimumHeights []float64
	MaximumHeights []float64
	Color          Color
	Show           bool
}

func (*Wall) Class() PrimitiveClass { return ClassWall }
func (w *Wall) SetShow(show bool)   { w.Show = show }

// Polygon is a filled area: an outer ring followed by holes.
type Polygon struct {
	Hierarchy      [][]Cartesian3
	Height         float64
	ExtrudedHeight float64
	Color          Color
	Show           bool

	class PrimitiveClass
}

// NewPolygon creates a polygon of the given class, which must be one of
// ClassPolygon, ClassGroundPolygon or ClassExtrudedPolygon.
func NewPolygon(class PrimitiveClass) *Polygon {
	return &Polygon{class: class, Show: true}
}

func (p *Polygon) Class() PrimitiveClass { return p.class }
func (p *Polygon) SetShow(show bool)     { p.Show = show }

// Billboard is a screen-aligned textured quad anchored at Position.
type Billboard struct {
	Position         Cartesian3
	Image            *Texture
	Color            Color
	Scale            float64
	HeightReference  HeightReference
	HorizontalOrigin HorizontalOrigin
	VerticalOrigin   VerticalOrigin
	Show             bool
}

// Label is screen-aligned text anchored at Position.
type Label struct {
	Position         Cartesian3
	Text             string
	Font             string
	Style            LabelStyle
	FillColor        Color
	OutlineColor     Color
	OutlineWidth     float64
	Scale            float64
	PixelOffset      [2]float64
	HorizontalOrigin HorizontalOrigin
	VerticalOrigin   VerticalOrigin
	HeightReference  HeightReference
	// Extent is the measured size of the text in pixels at scale 1.
	Extent [2]float64
	Show   bool
}
