package convert

import (
	"errors"
	"image"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/model"
	"github.com/gogpu/vecscene/vector"
)

// pixelLoader serves a 4x4 opaque image for any source.
type pixelLoader struct{}

func (pixelLoader) Load(string) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img, nil
}

type fixedMeasurer struct{ calls int }

func (m *fixedMeasurer) Measure(text, _ string) (float64, float64, error) {
	m.calls++
	if text == "fail" {
		return 0, 0, errors.New("no font")
	}
	return float64(len(text)) * 6, 12, nil
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		align, baseline string
		h               engine.HorizontalOrigin
		v               engine.VerticalOrigin
	}{
		{"", "", engine.HorizontalCenter, engine.VerticalCenter},
		{"left", "top", engine.HorizontalLeft, engine.VerticalTop},
		{"start", "hanging", engine.HorizontalLeft, engine.VerticalTop},
		{"right", "bottom", engine.HorizontalRight, engine.VerticalBottom},
		{"end", "ideographic", engine.HorizontalRight, engine.VerticalBottom},
		{"center", "alphabetic", engine.HorizontalCenter, engine.VerticalBaseline},
		{"center", "middle", engine.HorizontalCenter, engine.VerticalCenter},
	}
	for _, tt := range tests {
		h, v, err := Anchor(tt.align, tt.baseline)
		require.NoError(t, err, "%s/%s", tt.align, tt.baseline)
		assert.Equal(t, tt.h, h, "%s/%s", tt.align, tt.baseline)
		assert.Equal(t, tt.v, v, "%s/%s", tt.align, tt.baseline)
	}

	_, _, err := Anchor("justify", "")
	var ae *AlignmentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "justify", ae.Align)
	_, _, err = Anchor("", "Top")
	assert.ErrorAs(t, err, &ae)
}

func TestLabelUnknownAlignment(t *testing.T) {
	style := model.NewStyle().WithText(&model.Text{Text: "A", TextAlign: "justify"})
	f := feature("T", orb.Point{0, 0}, style)

	strict := newFixture(t, true)
	in := &Input{Feature: f, Geometry: f.Geometry(), Shape: f.Geometry().Coordinates(), Style: style}
	assert.Panics(t, func() { _, _ = strict.table.Sync(in, strict.ctx, vector.KindLabel) })

	lenient := newFixture(t, false)
	assert.Equal(t, OutcomeNone, lenient.sync(t, f, vector.KindLabel))
	assert.Nil(t, lenient.ctx.LabelForGeometry("T", 0))
}

func TestLabelTextFilteredAndMeasured(t *testing.T) {
	fx := newFixture(t, true)
	m := &fixedMeasurer{}
	fx.table = NewTable(Options{Strict: true, Measurer: m})

	style := model.NewStyle().WithText(&model.Text{
		Text:   "Gare\u200b du Nord \U0001F686",
		Font:   "12px sans-serif",
		Fill:   &model.Fill{Color: model.White},
		Stroke: &model.Stroke{Color: model.Black, Width: 2},
	})
	f := feature("T", orb.LineString{{0, 0}, {1, 1}, {2, 2}}, style)
	require.Equal(t, OutcomeCreated, fx.sync(t, f, vector.KindLabel))

	l := fx.ctx.LabelForGeometry("T", 0).Label
	assert.Equal(t, "Gare du Nord ", l.Text)
	assert.Equal(t, [2]float64{78, 12}, l.Extent)
	assert.Equal(t, engine.LabelFillAndOutline, l.Style)
	assert.Equal(t, 2.0, l.OutlineWidth)
	assert.Equal(t, engine.FromDegrees(1, 1, 0), l.Position)

	// Restyling without a text change keeps the measured extent.
	style.SetText(&model.Text{Text: "Gare\u200b du Nord \U0001F686", Font: "12px sans-serif", TextAlign: "left"})
	assert.Equal(t, OutcomeUpdated, fx.sync(t, f, vector.KindLabel))
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, engine.HorizontalLeft, l.HorizontalOrigin)
	assert.Equal(t, engine.LabelFill, l.Style)
}

func TestLabelOnlyUnprintableText(t *testing.T) {
	fx := newFixture(t, true)
	f := feature("T", orb.Point{0, 0}, model.NewStyle().WithText(&model.Text{Text: "中文"}))
	assert.Equal(t, OutcomeNone, fx.sync(t, f, vector.KindLabel))
}

func TestLabelPolygonCentroid(t *testing.T) {
	fx := newFixture(t, true)
	f := feature("T", orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}, model.NewStyle().WithText(&model.Text{Text: "Park"}))
	require.Equal(t, OutcomeCreated, fx.sync(t, f, vector.KindLabel))
	l := fx.ctx.LabelForGeometry("T", 0).Label
	want := engine.FromDegrees(1, 1, 0)
	assert.InDelta(t, want.X(), l.Position.X(), 1e-6)
	assert.InDelta(t, want.Y(), l.Position.Y(), 1e-6)
	assert.InDelta(t, want.Z(), l.Position.Z(), 1e-6)
}
