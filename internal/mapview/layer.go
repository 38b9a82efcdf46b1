package mapview

import "github.com/gridpoint/facilitymap-core/internal/location"

// Well-known layer identifiers. The two indoor layers are mutually
// exclusive; the adapter enforces that through its exclusion groups.
const (
	LayerTemperature = "temperature"
	LayerOccupancy   = "occupancy"
	LayerSecurity    = "security"
	LayerWarnings    = "warnings"
	LayerAssets      = "assets"
)

// Layer is one toggleable overlay managed by the Adapter. A layer owns
// its own visibility flag and is the sole authority for it; the adapter
// always re-queries IsVisible instead of caching the answer.
type Layer interface {
	ID() string
	Name() string

	// Initialize binds the layer to the engine. Called once, before
	// any other method.
	Initialize(e Engine)

	SetVisibility(visible bool)
	IsVisible() bool

	// SetLocation tells the layer which node the view is centred on.
	SetLocation(node *location.Node)

	// Dispose releases engine resources held by the layer.
	Dispose()
}

// VisibilityObserver is implemented by layers that need to react when
// another layer's visibility changes.
type VisibilityObserver interface {
	OnLayerVisibilityChange(changed Layer)
}

// ZoomObserver is implemented by layers that gate their content on the
// camera zoom level.
type ZoomObserver interface {
	OnZoomEnd(zoom float64)
}

// Room is one renderable unit on a floor.
type Room struct {
	Name    string  `json:"name,omitempty"`
	Type    string  `json:"type"`
	UnitID  string  `json:"unitId"`
	Polygon Polygon `json:"polygon"`
}

// RoomsByFloor maps floor id to room id to room.
type RoomsByFloor map[string]map[string]Room

// Warning is a single fault raised against a room layer.
type Warning struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Position    *Position `json:"position,omitempty"`
}

// WarningsByLayer maps layer id to the warnings raised on it.
type WarningsByLayer map[string][]Warning

// WarningsByRoom maps room id to its per-layer warnings.
type WarningsByRoom map[string]WarningsByLayer

// WarningsByLocation maps floor id to its per-room warnings.
type WarningsByLocation map[string]WarningsByRoom

// RoomSink is implemented by layers that consume room geometry.
type RoomSink interface {
	UpdateRooms(rooms RoomsByFloor)
}

// WarningSink is implemented by layers that consume warning data.
type WarningSink interface {
	UpdateWarnings(data WarningsByLocation)
}
