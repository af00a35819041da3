package convert

import (
	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

func lineMaterial(s *model.Stroke) engine.LineMaterial {
	m := engine.LineMaterial{Color: engineColor(s.Color)}
	if s.Dash.IsDashed() {
		m.Dashed = true
		m.DashPattern = s.Dash.Pattern()
		m.DashLength = s.Dash.PatternLength()
	}
	return m
}

// newLine builds the primitive drawing pts with stroke s in class.
func newLine(class engine.PrimitiveClass, pts []orb.Point, s *model.Stroke, hm heightMode, arc engine.ArcType, closed bool) engine.Primitive {
	switch class {
	case engine.ClassWall:
		pos := positions(pts, 0, closed)
		return &engine.Wall{
			Positions:      pos,
			MinimumHeights: fixedHeights(len(pos), hm.base),
			MaximumHeights: fixedHeights(len(pos), hm.base+hm.extrude),
			Color:          engineColor(s.Color),
			Show:           true,
		}
	case engine.ClassGroundPolyline:
		return &engine.GroundPolyline{
			Positions: positions(pts, 0, closed),
			Width:     s.Width,
			ArcType:   arc,
			Material:  lineMaterial(s),
			Show:      true,
		}
	default:
		return &engine.Polyline{
			Positions: positions(pts, hm.base, closed),
			Width:     s.Width,
			ArcType:   arc,
			Material:  lineMaterial(s),
			Show:      true,
		}
	}
}

// restyleLine patches the mutable appearance of a line primitive. It returns
// false when the interpolation, which is baked in, differs.
func restyleLine(p engine.Primitive, s *model.Stroke, arc engine.ArcType) bool {
	switch l := p.(type) {
	case *engine.Polyline:
		if l.ArcType != arc {
			return false
		}
		l.Material = lineMaterial(s)
	case *engine.GroundPolyline:
		if l.ArcType != arc {
			return false
		}
		l.Material = lineMaterial(s)
	case *engine.Wall:
		l.Color = engineColor(s.Color)
	default:
		return false
	}
	return true
}

// strokeBaked reports whether the baked stroke fields of rec still match s.
func strokeBaked(rec *vector.Record, s *model.Stroke) bool {
	return rec.Width == s.StrokeWidth() && rec.Dash.Equal(s.StrokeDash())
}

func (t *Table) lineConverter() Converter {
	return Converter{
		Kind: vector.KindLine,
		Applies: func(in *Input) bool {
			if _, ok := in.Shape.(orb.LineString); !ok {
				return false
			}
			return in.Style.Stroke().StrokeWidth() > 0
		},
		Retrieve: func(in *Input, ctx *vector.Context) *vector.Record {
			return ctx.PrimitiveForGeometry(in.Feature.ID(), in.Part, vector.KindLine)
		},
		Create: func(in *Input, ctx *vector.Context) (bool, error) {
			key := in.Key(vector.KindLine)
			ls, ok := in.LonLat(ctx).(orb.LineString)
			if !ok {
				t.fail(key, ErrUnsupportedGeometry)
				return false, nil
			}
			s := in.Style.Stroke()
			hm := heightOf(in.Feature)
			class := hm.lineClass()

			rec := vector.NewRecord(key, in.Geometry, in.Style)
			rec.Width = s.Width
			rec.Dash = s.Dash.Clone()
			rec.Class = class
			hm.bake(rec)
			if err := ctx.AddPrimitive(rec, newLine(class, ls, s, hm, arcTypeOf(in.Feature), false)); err != nil {
				return false, err
			}
			return true, nil
		},
		Update: func(in *Input, ctx *vector.Context, rec *vector.Record) bool {
			s := in.Style.Stroke()
			hm := heightOf(in.Feature)
			if !strokeBaked(rec, s) || !hm.baked(rec) || rec.Class != hm.lineClass() || len(rec.Primitives) != 1 {
				return false
			}
			return restyleLine(rec.Primitives[0], s, arcTypeOf(in.Feature))
		},
		Delete: remove,
	}
}
