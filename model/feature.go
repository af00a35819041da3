package model

// Property keys understood by the 3D synchronizers.
const (
	// PropAltitudeMode selects how heights are interpreted: AltitudeAbsolute,
	// AltitudeClampToGround or AltitudeRelativeToGround.
	PropAltitudeMode = "altitude_mode"
	// PropExtrude is an extrusion height in metres; > 0 enables extrusion.
	PropExtrude = "extrude"
	// PropArcType selects line interpolation: ArcGeodesic or ArcRhumb.
	PropArcType = "arc_type"
	// PropHeight is a base height in metres applied to every coordinate.
	PropHeight = "height"
)

// Values of PropAltitudeMode and PropArcType.
const (
	AltitudeAbsolute         = "absolute"
	AltitudeClampToGround    = "clamp_to_ground"
	AltitudeRelativeToGround = "relative_to_ground"

	ArcGeodesic = "geodesic"
	ArcRhumb    = "rhumb"
)

// Feature is one vector record: identity, geometry, optional own style and
// free-form properties. Feature identity is the ID and stays stable across
// passes.
type Feature struct {
	id       string
	geometry *Geometry
	style    *Style
	props    map[string]any
	removed  bool
}

// NewFeature creates a feature. props may be nil.
func NewFeature(id string, geometry *Geometry, props map[string]any) *Feature {
	if props == nil {
		props = make(map[string]any)
	}
	return &Feature{id: id, geometry: geometry, props: props}
}

func (f *Feature) ID() string          { return f.id }
func (f *Feature) Geometry() *Geometry { return f.geometry }

// Style returns the feature's own style, or nil when the layer style applies.
func (f *Feature) Style() *Style { return f.style }

// Removed reports whether the feature has been removed from its layer.
func (f *Feature) Removed() bool { return f.removed }

// SetGeometry swaps the geometry object.
func (f *Feature) SetGeometry(g *Geometry) { f.geometry = g }

// SetStyle sets the feature's own style.
func (f *Feature) SetStyle(s *Style) { f.style = s }

// Get returns a property value.
func (f *Feature) Get(key string) (any, bool) {
	v, ok := f.props[key]
	return v, ok
}

// Set sets a property value.
func (f *Feature) Set(key string, v any) { f.props[key] = v }

// Properties returns the property map.
func (f *Feature) Properties() map[string]any { return f.props }

// String returns a string property or def.
func (f *Feature) String(key, def string) string {
	if s, ok := f.props[key].(string); ok {
		return s
	}
	return def
}

// Float returns a numeric property or def. Booleans read as 1 and 0 so that
// "extrude": true works like a unit extrusion flag.
func (f *Feature) Float(key string, def float64) float64 {
	switch v := f.props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return def
}
