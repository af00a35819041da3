package model

import (
	"sync/atomic"

	"github.com/paulmach/orb"
)

// GeometryKind is the simple-geometry class of a geometry part.
type GeometryKind uint8

const (
	GeometryUnknown GeometryKind = iota
	GeometryPoint
	GeometryLine
	GeometryPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryPoint:
		return "point"
	case GeometryLine:
		return "line"
	case GeometryPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// geometryIDs hands out process-wide geometry identities. Identities are
// never reused, so a map keyed by them cannot alias a disposed geometry.
var geometryIDs atomic.Uint64

// Geometry is a coordinate container with a monotonic revision counter.
// The revision is bumped on every coordinate mutation and is the cheap
// dirty-check used by the 3D synchronizers.
//
// Geometry is not safe for concurrent mutation.
type Geometry struct {
	id       uint64
	coords   orb.Geometry
	revision uint64
}

// NewGeometry wraps coords. The initial revision is 1.
func NewGeometry(coords orb.Geometry) *Geometry {
	return &Geometry{
		id:       geometryIDs.Add(1),
		coords:   coords,
		revision: 1,
	}
}

// ID returns the stable identity of the geometry.
func (g *Geometry) ID() uint64 { return g.id }

// Revision returns the current revision.
func (g *Geometry) Revision() uint64 { return g.revision }

// Coordinates returns the wrapped orb geometry. Callers that mutate it in
// place must call Changed afterwards.
func (g *Geometry) Coordinates() orb.Geometry { return g.coords }

// SetCoordinates replaces the coordinates and bumps the revision.
func (g *Geometry) SetCoordinates(coords orb.Geometry) {
	g.coords = coords
	g.revision++
}

// Changed bumps the revision after an in-place coordinate mutation.
func (g *Geometry) Changed() { g.revision++ }

// Parts flattens the geometry into simple parts (points, line strings and
// polygons) in a stable order. Multi-geometries and collections contribute
// one part per member.
func (g *Geometry) Parts() []orb.Geometry {
	if g == nil || g.coords == nil {
		return nil
	}
	return appendParts(nil, g.coords)
}

func appendParts(dst []orb.Geometry, g orb.Geometry) []orb.Geometry {
	switch v := g.(type) {
	case orb.Point, orb.LineString, orb.Polygon:
		return append(dst, v)
	case orb.Ring:
		return append(dst, orb.Polygon{v})
	case orb.Bound:
		return append(dst, v.ToPolygon())
	case orb.MultiPoint:
		for _, p := range v {
			dst = append(dst, p)
		}
	case orb.MultiLineString:
		for _, ls := range v {
			dst = append(dst, ls)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			dst = append(dst, p)
		}
	case orb.Collection:
		for _, c := range v {
			dst = appendParts(dst, c)
		}
	}
	return dst
}

// KindOf classifies a simple geometry part.
func KindOf(part orb.Geometry) GeometryKind {
	switch part.(type) {
	case orb.Point:
		return GeometryPoint
	case orb.LineString:
		return GeometryLine
	case orb.Polygon:
		return GeometryPolygon
	default:
		return GeometryUnknown
	}
}

// IsEmpty reports whether a simple part has nothing to draw.
func IsEmpty(part orb.Geometry) bool {
	switch v := part.(type) {
	case orb.Point:
		return false
	case orb.LineString:
		return len(v) < 2
	case orb.Polygon:
		return len(v) == 0 || len(v[0]) < 3
	default:
		return true
	}
}
