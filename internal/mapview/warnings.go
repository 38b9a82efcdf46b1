package mapview

import (
	"sync"

	"github.com/gridpoint/facilitymap-core/internal/location"
)

// severityBucket groups rooms by warning count so each band renders
// with its own colour.
type severityBucket struct {
	name        string
	maxWarnings int
	fillColor   string
	strokeColor string
}

// Buckets are ordered; the first whose maxWarnings covers the count
// wins. The last bucket is the catch-all.
var severityBuckets = []severityBucket{
	{name: "low", maxWarnings: 1, fillColor: "#FFCC00", strokeColor: "#FFBA00"},
	{name: "medium", maxWarnings: 2, fillColor: "#FF8800", strokeColor: "#FF7700"},
	{name: "high", maxWarnings: -1, fillColor: "#FF0000", strokeColor: "#DD0000"},
}

const warningFillOpacity = 0.45

func bucketFor(count int) severityBucket {
	for _, b := range severityBuckets {
		if b.maxWarnings >= 0 && count <= b.maxWarnings {
			return b
		}
	}
	return severityBuckets[len(severityBuckets)-1]
}

// WarningsLayer shades room polygons by how many warnings are raised on
// the active indoor layer. It needs both the warning data and the room
// geometry for the current floor; either missing renders nothing.
type WarningsLayer struct {
	id   string
	name string

	mu       sync.Mutex
	engine   Engine
	data     WarningsByLocation
	rooms    RoomsByFloor
	node     *location.Node
	visible  bool
	indoorID string
}

// NewWarningsLayer returns a room shading layer. Until an indoor layer
// is switched on, warnings raised against the layer's own id are shown.
func NewWarningsLayer(id, name string) *WarningsLayer {
	return &WarningsLayer{id: id, name: name, indoorID: id}
}

func (l *WarningsLayer) ID() string   { return l.id }
func (l *WarningsLayer) Name() string { return l.name }

func (l *WarningsLayer) Initialize(e Engine) {
	l.mu.Lock()
	l.engine = e
	l.mu.Unlock()
}

func (l *WarningsLayer) SetVisibility(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = visible
	l.render()
}

func (l *WarningsLayer) IsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// OnLayerVisibilityChange retargets the shading at whichever indoor
// layer just became visible.
func (l *WarningsLayer) OnLayerVisibilityChange(changed Layer) {
	if _, ok := changed.(*IndoorLayer); !ok || !changed.IsVisible() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.indoorID = changed.ID()
	l.render()
}

func (l *WarningsLayer) SetLocation(node *location.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.node = node
	if l.visible {
		l.render()
	}
}

func (l *WarningsLayer) UpdateWarnings(data WarningsByLocation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = data
	if l.visible {
		l.render()
	}
}

func (l *WarningsLayer) UpdateRooms(rooms RoomsByFloor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms = rooms
	if l.visible {
		l.render()
	}
}

func (l *WarningsLayer) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clear()
}

// render rebuilds the per-bucket polygon groups for the current floor.
// Callers hold l.mu.
func (l *WarningsLayer) render() {
	l.clear()

	if l.engine == nil || !l.visible || l.node == nil {
		return
	}

	byRoom := l.data[l.node.ID]
	roomGeo := l.rooms[l.node.ID]
	if byRoom == nil || roomGeo == nil {
		return
	}

	grouped := make(map[string][]Polygon, len(severityBuckets))
	for roomID, byLayer := range byRoom {
		warnings := byLayer[l.indoorID]
		room, ok := roomGeo[roomID]
		if len(warnings) == 0 || !ok || len(room.Polygon) == 0 {
			continue
		}
		b := bucketFor(len(warnings))
		grouped[b.name] = append(grouped[b.name], room.Polygon)
	}

	minZoom := location.ZoomFor(location.TypeFloor)
	for _, b := range severityBuckets {
		polys := grouped[b.name]
		if len(polys) == 0 {
			continue
		}
		l.engine.SetPolygons(l.groupName(b.name), polys, PolygonStyle{
			FillColor:   b.fillColor,
			StrokeColor: b.strokeColor,
			FillOpacity: warningFillOpacity,
			StrokeWidth: 5,
			MinZoom:     minZoom,
		})
	}
}

func (l *WarningsLayer) clear() {
	if l.engine == nil {
		return
	}
	for _, b := range severityBuckets {
		l.engine.ClearPolygons(l.groupName(b.name))
	}
}

func (l *WarningsLayer) groupName(bucket string) string {
	return l.id + "-" + bucket
}
