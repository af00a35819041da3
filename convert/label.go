package convert

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/internal/labeltext"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// AlignmentError reports a text alignment or baseline outside the anchor
// table.
type AlignmentError struct {
	Align    string
	Baseline string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("convert: unknown label alignment %q/%q", e.Align, e.Baseline)
}

var horizontalOrigins = map[string]engine.HorizontalOrigin{
	"":       engine.HorizontalCenter,
	"center": engine.HorizontalCenter,
	"left":   engine.HorizontalLeft,
	"start":  engine.HorizontalLeft,
	"right":  engine.HorizontalRight,
	"end":    engine.HorizontalRight,
}

// Legacy canvas baselines map to the nearest engine origin.
var verticalOrigins = map[string]engine.VerticalOrigin{
	"":            engine.VerticalCenter,
	"middle":      engine.VerticalCenter,
	"top":         engine.VerticalTop,
	"hanging":     engine.VerticalTop,
	"bottom":      engine.VerticalBottom,
	"ideographic": engine.VerticalBottom,
	"alphabetic":  engine.VerticalBaseline,
}

// Anchor resolves a text alignment and baseline to engine origins.
func Anchor(align, baseline string) (engine.HorizontalOrigin, engine.VerticalOrigin, error) {
	h, hok := horizontalOrigins[align]
	v, vok := verticalOrigins[baseline]
	if !hok || !vok {
		return 0, 0, &AlignmentError{Align: align, Baseline: baseline}
	}
	return h, v, nil
}

// labelAnchor returns where a part's label sits: the point itself, the
// middle vertex of a line, or the area centroid of a polygon.
func labelAnchor(g orb.Geometry) (orb.Point, bool) {
	switch v := g.(type) {
	case orb.Point:
		return v, true
	case orb.LineString:
		if len(v) == 0 {
			return orb.Point{}, false
		}
		return v[len(v)/2], true
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return orb.Point{}, false
		}
		c, area := planar.CentroidArea(v)
		if area == 0 {
			return v[0][0], true
		}
		return c, true
	}
	return orb.Point{}, false
}

func labelText(style *model.Style) (*model.Text, string) {
	txt := style.Text()
	if txt == nil {
		return nil, ""
	}
	return txt, labeltext.Filter(txt.Text)
}

// applyLabel writes every mutable label field. It returns an error only for
// an unknown alignment.
func (t *Table) applyLabel(l *engine.Label, txt *model.Text, text string, hm heightMode) error {
	h, v, err := Anchor(txt.TextAlign, txt.TextBaseline)
	if err != nil {
		return err
	}
	if l.Text != text || l.Font != txt.Font {
		l.Extent = [2]float64{}
		if t.opts.Measurer != nil {
			w, ht, err := t.opts.Measurer.Measure(text, txt.Font)
			if err == nil {
				l.Extent = [2]float64{w, ht}
			}
		}
	}
	l.Text = text
	l.Font = txt.Font
	l.HorizontalOrigin = h
	l.VerticalOrigin = v
	l.HeightReference = hm.ref
	l.PixelOffset = [2]float64{txt.OffsetX, txt.OffsetY}
	l.Scale = 1
	if txt.Scale > 0 {
		l.Scale = txt.Scale
	}

	l.Style = engine.LabelFill
	l.FillColor = engine.Color{A: 1}
	if txt.Fill != nil {
		l.FillColor = engineColor(txt.Fill.Color)
	}
	l.OutlineColor = engine.Color{}
	l.OutlineWidth = 0
	if txt.Stroke.StrokeWidth() > 0 {
		l.Style = engine.LabelFillAndOutline
		if txt.Fill == nil {
			l.Style = engine.LabelOutline
		}
		l.OutlineColor = engineColor(txt.Stroke.Color)
		l.OutlineWidth = txt.Stroke.Width
	}
	return nil
}

func (t *Table) labelConverter() Converter {
	return Converter{
		Kind: vector.KindLabel,
		Applies: func(in *Input) bool {
			_, text := labelText(in.Style)
			return text != ""
		},
		Retrieve: func(in *Input, ctx *vector.Context) *vector.Record {
			return ctx.LabelForGeometry(in.Feature.ID(), in.Part)
		},
		Create: func(in *Input, ctx *vector.Context) (bool, error) {
			key := in.Key(vector.KindLabel)
			at, ok := labelAnchor(in.LonLat(ctx))
			if !ok {
				t.fail(key, ErrUnsupportedGeometry)
				return false, nil
			}
			txt, text := labelText(in.Style)
			hm := heightOf(in.Feature)
			l := &engine.Label{
				Position: engine.FromDegrees(at[0], at[1], hm.base+hm.extrude),
				Show:     true,
			}
			if err := t.applyLabel(l, txt, text, hm); err != nil {
				t.fail(key, err)
				return false, nil
			}
			rec := vector.NewRecord(key, in.Geometry, in.Style)
			hm.bake(rec)
			if err := ctx.AddLabel(rec, l); err != nil {
				return false, err
			}
			return true, nil
		},
		Update: func(in *Input, ctx *vector.Context, rec *vector.Record) bool {
			if rec.Label == nil {
				return false
			}
			txt, text := labelText(in.Style)
			hm := heightOf(in.Feature)
			if err := t.applyLabel(rec.Label, txt, text, hm); err != nil {
				t.fail(rec.Key, err)
				return false
			}
			if at, ok := labelAnchor(in.LonLat(ctx)); ok {
				rec.Label.Position = engine.FromDegrees(at[0], at[1], hm.base+hm.extrude)
			}
			hm.bake(rec)
			return true
		},
		Delete: remove,
	}
}
