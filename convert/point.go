package convert

import (
	"image"

	"github.com/paulmach/orb"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// symbol is the resolved billboard appearance of a point.
type symbol struct {
	sig    string
	render func() (*image.RGBA, error)
	color  engine.Color
	scale  float64
}

func (t *Table) pointSymbol(style *model.Style, loader vector.ImageLoader) (symbol, bool) {
	switch img := style.Image().(type) {
	case *model.Circle:
		return circleSymbol(img), true
	case *model.Icon:
		icon := *img
		s := symbol{
			sig:    vector.IconSignature(&icon),
			render: func() (*image.RGBA, error) { return vector.RenderIcon(loader, &icon) },
			color:  engine.White,
			scale:  1,
		}
		if icon.Scale > 0 {
			s.scale = icon.Scale
		}
		if icon.Opacity > 0 && icon.Opacity < 1 {
			s.color.A = float32(icon.Opacity)
		}
		return s, true
	}
	if fill := style.Fill(); fill != nil {
		return circleSymbol(&model.Circle{Radius: t.opts.PointRadius, Fill: fill, Stroke: style.Stroke()}), true
	}
	return symbol{}, false
}

func circleSymbol(c *model.Circle) symbol {
	circle := *c
	s := symbol{
		sig:    vector.CircleSignature(&circle),
		render: func() (*image.RGBA, error) { return vector.RenderCircle(&circle), nil },
		color:  engine.White,
		scale:  1,
	}
	if vector.CircleTinted(&circle) {
		s.color = engine.Color{}
		if circle.Fill != nil {
			s.color = engineColor(circle.Fill.Color)
		}
	}
	return s
}

func (t *Table) pointConverter() Converter {
	loader := func(ctx *vector.Context) vector.ImageLoader {
		if ctx.Images() == nil {
			return nil
		}
		return ctx.Images().Loader()
	}
	return Converter{
		Kind: vector.KindPoint,
		Applies: func(in *Input) bool {
			if _, ok := in.Shape.(orb.Point); !ok {
				return false
			}
			return in.Style.Image() != nil || in.Style.Fill() != nil
		},
		Retrieve: func(in *Input, ctx *vector.Context) *vector.Record {
			return ctx.PrimitiveForGeometry(in.Feature.ID(), in.Part, vector.KindPoint)
		},
		Create: func(in *Input, ctx *vector.Context) (bool, error) {
			key := in.Key(vector.KindPoint)
			pt, ok := in.LonLat(ctx).(orb.Point)
			if !ok {
				t.fail(key, ErrUnsupportedGeometry)
				return false, nil
			}
			sym, ok := t.pointSymbol(in.Style, loader(ctx))
			if !ok {
				return false, nil
			}
			if ctx.Images() == nil {
				return false, vector.ErrNoUploader
			}
			tex, err := ctx.Images().Acquire(sym.sig, sym.render)
			if err != nil {
				return false, err
			}
			hm := heightOf(in.Feature)
			bb := &engine.Billboard{
				Position:        engine.FromDegrees(pt[0], pt[1], hm.base),
				Image:           tex,
				Color:           sym.color,
				Scale:           sym.scale,
				HeightReference: hm.ref,
				Show:            true,
			}
			rec := vector.NewRecord(key, in.Geometry, in.Style)
			hm.bake(rec)
			rec.ImageSignature = sym.sig
			if err := ctx.AddBillboard(rec, bb); err != nil {
				ctx.Images().Release(sym.sig)
				return false, err
			}
			return true, nil
		},
		Update: func(in *Input, ctx *vector.Context, rec *vector.Record) bool {
			bb := rec.Billboard
			if bb == nil {
				return false
			}
			pt, ok := in.LonLat(ctx).(orb.Point)
			if !ok {
				return false
			}
			sym, ok := t.pointSymbol(in.Style, loader(ctx))
			if !ok {
				return false
			}
			if sym.sig != rec.ImageSignature {
				tex, err := ctx.Images().Acquire(sym.sig, sym.render)
				if err != nil {
					t.warn(rec.Key, err)
					return false
				}
				ctx.Images().Release(rec.ImageSignature)
				rec.ImageSignature = sym.sig
				bb.Image = tex
			}
			hm := heightOf(in.Feature)
			if !hm.baked(rec) {
				bb.Position = engine.FromDegrees(pt[0], pt[1], hm.base)
				bb.HeightReference = hm.ref
				hm.bake(rec)
			}
			bb.Color = sym.color
			bb.Scale = sym.scale
			return true
		},
		Delete: remove,
	}
}
