package model

// Fill describes an area or glyph fill.
type Fill struct {
	Color Color
}

// Stroke describes an outline.
type Stroke struct {
	Color Color
	Width float64
	Dash  *Dash
}

// StrokeWidth returns the width of s, or 0 for a nil stroke.
func (s *Stroke) StrokeWidth() float64 {
	if s == nil {
		return 0
	}
	return s.Width
}

// StrokeDash returns the dash pattern of s, or nil for a nil stroke.
func (s *Stroke) StrokeDash() *Dash {
	if s == nil {
		return nil
	}
	return s.Dash
}

// Text describes a label. TextAlign accepts left, center, right, start and
// end; TextBaseline accepts top, middle, bottom, alphabetic, hanging and
// ideographic. Empty values mean center and middle.
type Text struct {
	Text         string
	Font         string
	Fill         *Fill
	Stroke       *Stroke
	TextAlign    string
	TextBaseline string
	OffsetX      float64
	OffsetY      float64
	Scale        float64
}

// ImageStyle is a point symbolizer. It is either a *Circle or an *Icon.
type ImageStyle interface {
	imageStyle()
}

// Circle is a vector circle point symbol.
type Circle struct {
	Radius float64
	Fill   *Fill
	Stroke *Stroke
}

func (*Circle) imageStyle() {}

// Icon is a raster point symbol loaded from Src.
type Icon struct {
	Src     string
	Color   *Color
	Scale   float64
	Opacity float64
}

func (*Icon) imageStyle() {}

// Style is the resolved symbolizer of a feature. Every setter bumps the
// version, so consumers detect restyling by comparing (pointer, version)
// without deep comparison. Code that mutates the returned sub-styles in
// place must call Touch.
type Style struct {
	fill    *Fill
	stroke  *Stroke
	text    *Text
	image   ImageStyle
	version uint64
}

// NewStyle returns an empty style at version 1.
func NewStyle() *Style {
	return &Style{version: 1}
}

// Version returns the style version stamp.
func (s *Style) Version() uint64 { return s.version }

// Touch bumps the version after an in-place mutation.
func (s *Style) Touch() { s.version++ }

func (s *Style) Fill() *Fill          { return s.fill }
func (s *Style) Stroke() *Stroke      { return s.stroke }
func (s *Style) Text() *Text          { return s.text }
func (s *Style) Image() ImageStyle    { return s.image }
func (s *Style) SetFill(f *Fill)      { s.fill = f; s.version++ }
func (s *Style) SetStroke(st *Stroke) { s.stroke = st; s.version++ }
func (s *Style) SetText(t *Text)      { s.text = t; s.version++ }
func (s *Style) SetImage(i ImageStyle) {
	s.image = i
	s.version++
}

// WithFill sets the fill and returns s, for building styles inline.
func (s *Style) WithFill(f *Fill) *Style { s.SetFill(f); return s }

// WithStroke sets the stroke and returns s.
func (s *Style) WithStroke(st *Stroke) *Style { s.SetStroke(st); return s }

// WithText sets the text and returns s.
func (s *Style) WithText(t *Text) *Style { s.SetText(t); return s }

// WithImage sets the image and returns s.
func (s *Style) WithImage(i ImageStyle) *Style { s.SetImage(i); return s }
