package labeltext

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize is the pixel size used when a font string has none.
const DefaultFontSize = 10

var fontSizeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)px`)

// FontSize extracts the pixel size from a CSS font shorthand such as
// "bold 14px sans-serif".
func FontSize(cssFont string) float64 {
	m := fontSizeRe.FindStringSubmatch(cssFont)
	if m == nil {
		return DefaultFontSize
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil || size <= 0 {
		return DefaultFontSize
	}
	return size
}

// Measurer computes label extents with HarfBuzz shaping. The Go Regular
// font stands in for whatever font the engine finally rasterises with,
// which is close enough for anchoring and decluttering.
//
// Measurer is safe for concurrent use.
type Measurer struct {
	once    sync.Once
	font    *font.Font
	err     error
	shapers sync.Pool
}

// NewMeasurer creates a Measurer. The font is parsed on first use.
func NewMeasurer() *Measurer {
	return &Measurer{
		shapers: sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }},
	}
}

func (m *Measurer) load() (*font.Font, error) {
	m.once.Do(func() {
		face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
		if err != nil {
			m.err = err
			return
		}
		m.font = face.Font
	})
	return m.font, m.err
}

// Measure returns the width and height in pixels of text set in cssFont.
// Lines are separated by '\n'; the width is that of the widest line.
func (m *Measurer) Measure(text, cssFont string) (width, height float64, err error) {
	f, err := m.load()
	if err != nil {
		return 0, 0, err
	}
	size := FontSize(cssFont)
	face := font.NewFace(f)
	hb := m.shapers.Get().(*shaping.HarfbuzzShaper)
	defer m.shapers.Put(hb)

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  0,
			RunEnd:    len(runes),
			Direction: di.DirectionLTR,
			Face:      face,
			Size:      floatToFixed(size),
			Script:    language.Latin,
			Language:  language.NewLanguage("en"),
		})
		if w := fixedToFloat(out.Advance); w > width {
			width = w
		}
		lineHeight := fixedToFloat(out.LineBounds.Ascent - out.LineBounds.Descent + out.LineBounds.Gap)
		if lineHeight <= 0 {
			lineHeight = size
		}
		height += lineHeight
	}
	return width, height, nil
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	if v < 0 {
		v = -v
	}
	return float64(v) / 64
}
