package location

// InvalidFloorNumber marks a node that has no floor ordinal.
const InvalidFloorNumber = -1

// Type classifies a node in the facility hierarchy.
type Type string

// Location types, from widest to narrowest.
const (
	TypeGlobal   Type = "Global"
	TypeRegion   Type = "Region"
	TypeCampus   Type = "Campus"
	TypeBuilding Type = "Building"
	TypeFloor    Type = "Floor"
)

// StateSet binds a named indoor styling state set to its provider id.
// The name matches the map layer the set drives.
type StateSet struct {
	ID   string `json:"stateSetId"`
	Name string `json:"stateSetName"`
}

// NodeConfig holds optional map-provider bindings for a node.
// Floors inherit their building's config when they carry none themselves.
type NodeConfig struct {
	FacilityID string     `json:"facilityId,omitempty"`
	TilesetID  string     `json:"tilesetId,omitempty"`
	StateSets  []StateSet `json:"stateSets,omitempty"`
}

// Node is a single location in the facility hierarchy.
//
// The graph is built once from the sitemap payload and nodes are never
// mutated afterward; navigation only changes which node is current.
// Parent is a back-pointer only — ownership runs root to leaf via Items.
type Node struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Type          Type        `json:"type"`
	Parent        *Node       `json:"-"`
	Items         []string    `json:"items,omitempty"`
	OrdinalNumber int         `json:"ordinalNumber"`
	Longitude     float64     `json:"longitude"`
	Latitude      float64     `json:"latitude"`
	Config        *NodeConfig `json:"config,omitempty"`
}

// RawNode is the sitemap wire representation of a node, before the graph
// is wired. ParentID is replaced with a Parent pointer during Load.
type RawNode struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Type          Type        `json:"type"`
	ParentID      string      `json:"parentId,omitempty"`
	Items         []string    `json:"items,omitempty"`
	OrdinalNumber *int        `json:"ordinalNumber,omitempty"`
	Longitude     float64     `json:"longitude"`
	Latitude      float64     `json:"latitude"`
	Config        *NodeConfig `json:"config,omitempty"`
}

// zoomByType maps a location type to its default camera zoom.
var zoomByType = map[Type]float64{
	TypeGlobal:   0,
	TypeRegion:   1.9,
	TypeCampus:   13,
	TypeBuilding: 18.5,
	TypeFloor:    18.5,
}

// DefaultZoom is the camera zoom used when a type has no entry.
var DefaultZoom = zoomByType[TypeGlobal]

// maxDistanceByType maps a location type to the maximum distance (metres)
// at which the location still counts as visible from the camera centre.
var maxDistanceByType = map[Type]float64{
	TypeGlobal:   100000000,
	TypeRegion:   4000000,
	TypeCampus:   2000,
	TypeBuilding: 70,
	TypeFloor:    70,
}

// DefaultMaxDistance is used when a type has no max-distance entry.
var DefaultMaxDistance = maxDistanceByType[TypeFloor]

// ZoomFor returns the default camera zoom for the provided location type.
func ZoomFor(t Type) float64 {
	if z, ok := zoomByType[t]; ok {
		return z
	}
	return DefaultZoom
}

// MaxDistanceFor returns the visibility distance threshold for the type.
func MaxDistanceFor(t Type) float64 {
	if d, ok := maxDistanceByType[t]; ok {
		return d
	}
	return DefaultMaxDistance
}
