package convert

import (
	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// heightMode is how a feature's properties place it vertically.
type heightMode struct {
	ref     engine.HeightReference
	base    float64
	extrude float64
}

func heightOf(f *model.Feature) heightMode {
	m := heightMode{
		base:    f.Float(model.PropHeight, 0),
		extrude: f.Float(model.PropExtrude, 0),
	}
	switch f.String(model.PropAltitudeMode, model.AltitudeAbsolute) {
	case model.AltitudeClampToGround:
		m.ref = engine.HeightClampToGround
	case model.AltitudeRelativeToGround:
		m.ref = engine.HeightRelativeToGround
	}
	return m
}

// bake records the vertical placement rec is built with.
func (m heightMode) bake(rec *vector.Record) {
	rec.HeightReference = m.ref
	rec.Base = m.base
	rec.Extrude = m.extrude
}

// baked reports whether rec was built with m.
func (m heightMode) baked(rec *vector.Record) bool {
	return rec.HeightReference == m.ref && rec.Base == m.base && rec.Extrude == m.extrude
}

func (m heightMode) extruded() bool { return m.extrude > 0 }
func (m heightMode) clamped() bool  { return m.ref == engine.HeightClampToGround }

// lineClass picks the primitive class of a line. Extrusion wins over
// clamp-to-ground: a wall already spans ground to height.
func (m heightMode) lineClass() engine.PrimitiveClass {
	switch {
	case m.extruded():
		return engine.ClassWall
	case m.clamped():
		return engine.ClassGroundPolyline
	default:
		return engine.ClassPolyline
	}
}

// polygonClass picks the primitive class of a polygon fill, with the same
// precedence as lineClass.
func (m heightMode) polygonClass() engine.PrimitiveClass {
	switch {
	case m.extruded():
		return engine.ClassExtrudedPolygon
	case m.clamped():
		return engine.ClassGroundPolygon
	default:
		return engine.ClassPolygon
	}
}

func arcTypeOf(f *model.Feature) engine.ArcType {
	switch f.String(model.PropArcType, "") {
	case model.ArcGeodesic:
		return engine.ArcGeodesic
	case model.ArcRhumb:
		return engine.ArcRhumb
	}
	return engine.ArcNone
}

func engineColor(c model.Color) engine.Color {
	return engine.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

// positions converts longitude/latitude points at a constant height. A
// closing point equal to the first one is dropped for closed rings.
func positions(pts []orb.Point, height float64, closed bool) []engine.Cartesian3 {
	n := len(pts)
	if closed && n > 1 && pts[0] == pts[n-1] {
		n--
	}
	flat := make([]float64, 0, 2*n)
	for _, p := range pts[:n] {
		flat = append(flat, p[0], p[1])
	}
	return engine.FromDegreesArray(flat, nil, height)
}

func fixedHeights(n int, h float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = h
	}
	return out
}
