package vector

import (
	"fmt"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
)

// Kind tags the converter that owns a record.
type Kind uint8

const (
	KindPoint Kind = iota
	KindLine
	KindPolygon
	KindLabel

	// KindCount is the number of kinds.
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	case KindLabel:
		return "label"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Key identifies one record: at most one resident resource exists per
// (feature, geometry part, kind).
type Key struct {
	Feature string
	Part    int
	Kind    Kind
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Feature, k.Part, k.Kind)
}

// Record is the bookkeeping for the engine objects of one Key. Besides the
// handles it caches everything needed to decide, without touching the
// engine, whether the resource is still current: the geometry identity and
// revision, the style identity and version, and the fields the engine
// bakes in at construction.
type Record struct {
	Key Key

	GeometryID   uint64
	GeomRevision uint64
	Style        *model.Style
	StyleVersion uint64

	// Baked fields.
	Width           float64
	Dash            *model.Dash
	Class           engine.PrimitiveClass
	HeightReference engine.HeightReference
	Base            float64 // base height in metres
	Extrude         float64 // extrusion above Base in metres
	Outline         bool

	// ImageSignature is the texture-cache signature held by Billboard.
	ImageSignature string

	Primitives []engine.Primitive
	Billboard  *engine.Billboard
	Label      *engine.Label

	// Dirty is set when the record's feature changed since the last pass.
	Dirty bool

	slot uint32 // 1-based arena slot; 0 means unregistered
}

// NewRecord returns an unregistered record stamped with the current
// geometry and style state.
func NewRecord(key Key, geom *model.Geometry, style *model.Style) *Record {
	r := &Record{Key: key}
	r.Stamp(geom, style)
	return r
}

// Stamp records the geometry and style state the resource now reflects.
func (r *Record) Stamp(geom *model.Geometry, style *model.Style) {
	if geom != nil {
		r.GeometryID = geom.ID()
		r.GeomRevision = geom.Revision()
	}
	r.Style = style
	if style != nil {
		r.StyleVersion = style.Version()
	}
}

// GeometryCurrent reports whether the record reflects geom's identity and
// revision.
func (r *Record) GeometryCurrent(geom *model.Geometry) bool {
	return geom != nil && r.GeometryID == geom.ID() && r.GeomRevision == geom.Revision()
}

// StyleCurrent reports whether the record reflects style's identity and
// version.
func (r *Record) StyleCurrent(style *model.Style) bool {
	return style != nil && r.Style == style && r.StyleVersion == style.Version()
}

// Registered reports whether the record is held by a Context.
func (r *Record) Registered() bool { return r.slot != 0 }
