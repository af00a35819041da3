package convert

import (
	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/vector"
)

func (t *Table) polygonConverter() Converter {
	return Converter{
		Kind: vector.KindPolygon,
		Applies: func(in *Input) bool {
			if _, ok := in.Shape.(orb.Polygon); !ok {
				return false
			}
			return in.Style.Fill() != nil || in.Style.Stroke().StrokeWidth() > 0
		},
		Retrieve: func(in *Input, ctx *vector.Context) *vector.Record {
			return ctx.PrimitiveForGeometry(in.Feature.ID(), in.Part, vector.KindPolygon)
		},
		Create: func(in *Input, ctx *vector.Context) (bool, error) {
			key := in.Key(vector.KindPolygon)
			poly, ok := in.LonLat(ctx).(orb.Polygon)
			if !ok {
				t.fail(key, ErrUnsupportedGeometry)
				return false, nil
			}
			hm := heightOf(in.Feature)
			rec := vector.NewRecord(key, in.Geometry, in.Style)
			rec.Class = hm.polygonClass()
			hm.bake(rec)

			var prims []engine.Primitive
			if fill := in.Style.Fill(); fill != nil {
				p := engine.NewPolygon(rec.Class)
				p.Color = engineColor(fill.Color)
				for _, ring := range poly {
					p.Hierarchy = append(p.Hierarchy, positions(ring, 0, true))
				}
				if rec.Class != engine.ClassGroundPolygon {
					p.Height = hm.base
				}
				if rec.Class == engine.ClassExtrudedPolygon {
					p.ExtrudedHeight = hm.base + hm.extrude
				}
				prims = append(prims, p)
			}
			if s := in.Style.Stroke(); s.StrokeWidth() > 0 {
				rec.Outline = true
				rec.Width = s.Width
				rec.Dash = s.Dash.Clone()
				outline := outlineMode(hm)
				for _, ring := range poly {
					prims = append(prims, newLine(outline.lineClass(), ring, s, outline, engine.ArcNone, false))
				}
			}
			if err := ctx.AddPrimitive(rec, prims...); err != nil {
				return false, err
			}
			return true, nil
		},
		Update: func(in *Input, ctx *vector.Context, rec *vector.Record) bool {
			hm := heightOf(in.Feature)
			if rec.Class != hm.polygonClass() || !hm.baked(rec) {
				return false
			}
			fill := in.Style.Fill()
			s := in.Style.Stroke()
			outline := s.StrokeWidth() > 0
			hasFill := len(rec.Primitives) > 0 && isPolygon(rec.Primitives[0])
			if hasFill != (fill != nil) || outline != rec.Outline {
				return false
			}
			if outline && !strokeBaked(rec, s) {
				return false
			}
			for _, p := range rec.Primitives {
				if poly, ok := p.(*engine.Polygon); ok {
					poly.Color = engineColor(fill.Color)
					continue
				}
				if !restyleLine(p, s, engine.ArcNone) {
					return false
				}
			}
			return true
		},
		Delete: remove,
	}
}

// outlineMode places polygon outlines: on the roof of extruded polygons,
// draped when clamped, at the base height otherwise.
func outlineMode(hm heightMode) heightMode {
	if hm.extruded() {
		return heightMode{ref: engine.HeightNone, base: hm.base + hm.extrude}
	}
	return hm
}

func isPolygon(p engine.Primitive) bool {
	_, ok := p.(*engine.Polygon)
	return ok
}
