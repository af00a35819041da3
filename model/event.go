package model

// EventType identifies a structural notification from the 2D model.
type EventType uint8

const (
	LayerAdded EventType = iota + 1
	LayerRemoved
	LayerVisibilityChanged
	LayerZIndexChanged
	FeatureAdded
	FeatureRemoved
	FeatureChanged
)

func (t EventType) String() string {
	switch t {
	case LayerAdded:
		return "layer-added"
	case LayerRemoved:
		return "layer-removed"
	case LayerVisibilityChanged:
		return "layer-visibility"
	case LayerZIndexChanged:
		return "layer-zindex"
	case FeatureAdded:
		return "feature-added"
	case FeatureRemoved:
		return "feature-removed"
	case FeatureChanged:
		return "feature-changed"
	default:
		return "unknown"
	}
}

// LayerRef references a layer either by object or by id. Notifications from
// some sources only carry the id.
type LayerRef struct {
	ID    string
	Layer Layer
}

// RefOf returns a LayerRef holding l.
func RefOf(l Layer) LayerRef { return LayerRef{ID: l.ID(), Layer: l} }

// RefID returns a LayerRef holding only an id.
func RefID(id string) LayerRef { return LayerRef{ID: id} }

// Event is one notification. Feature is set for feature events only.
type Event struct {
	Type    EventType
	GroupID string
	Layer   LayerRef
	Feature *Feature
}

// Listener receives events.
type Listener func(Event)
