package engine

// Color is an engine color with float32 components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is the neutral billboard tint.
var White = Color{1, 1, 1, 1}

// HeightReference tells the engine how to interpret a primitive's height.
type HeightReference uint8

const (
	HeightNone HeightReference = iota
	HeightClampToGround
	HeightRelativeToGround
)

// HorizontalOrigin positions a billboard or label relative to its anchor.
type HorizontalOrigin int8

const (
	HorizontalCenter HorizontalOrigin = 0
	HorizontalLeft   HorizontalOrigin = 1
	HorizontalRight  HorizontalOrigin = -1
)

// VerticalOrigin positions a billboard or label relative to its anchor.
type VerticalOrigin int8

const (
	VerticalCenter   VerticalOrigin = 0
	VerticalBottom   VerticalOrigin = 1
	VerticalBaseline VerticalOrigin = 2
	VerticalTop      VerticalOrigin = -1
)

// ArcType selects the curve between consecutive line positions.
type ArcType uint8

const (
	ArcNone ArcType = iota
	ArcGeodesic
	ArcRhumb
)

// LabelStyle selects fill and outline rendering of label glyphs.
type LabelStyle uint8

const (
	LabelFill LabelStyle = iota
	LabelOutline
	LabelFillAndOutline
)
