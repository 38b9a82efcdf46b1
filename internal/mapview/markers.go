package mapview

import (
	"fmt"
	"sync"

	"github.com/gridpoint/facilitymap-core/internal/location"
)

type markerEntry struct {
	id   string
	pos  Position
	opts MarkerOptions
}

// MarkersLayer renders pulsing point markers for the warnings raised on
// its own layer id, for the floor the view is on. Markers only show
// once the camera is zoomed in to floor level.
type MarkersLayer struct {
	id   string
	name string

	mu      sync.Mutex
	engine  Engine
	data    WarningsByLocation
	node    *location.Node
	visible bool
	zoom    float64
	minZoom float64
	markers []markerEntry
	shown   bool
}

// NewMarkersLayer returns a point marker layer for the given layer id.
func NewMarkersLayer(id, name string) *MarkersLayer {
	return &MarkersLayer{
		id:      id,
		name:    name,
		minZoom: location.ZoomFor(location.TypeFloor),
	}
}

func (l *MarkersLayer) ID() string   { return l.id }
func (l *MarkersLayer) Name() string { return l.name }

func (l *MarkersLayer) Initialize(e Engine) {
	l.mu.Lock()
	l.engine = e
	l.zoom = e.Camera().Zoom
	l.mu.Unlock()
}

func (l *MarkersLayer) SetVisibility(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if visible == l.visible {
		return
	}
	l.visible = visible
	l.rebuild()
}

func (l *MarkersLayer) IsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

func (l *MarkersLayer) SetLocation(node *location.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.node = node
	if l.visible {
		l.rebuild()
	}
}

func (l *MarkersLayer) UpdateWarnings(data WarningsByLocation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = data
	if l.visible {
		l.rebuild()
	}
}

// OnZoomEnd flips marker visibility when the camera crosses the floor
// zoom threshold, without rebuilding the markers.
func (l *MarkersLayer) OnZoomEnd(zoom float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zoom = zoom
	show := l.visible && zoom >= l.minZoom
	if show == l.shown || len(l.markers) == 0 {
		l.shown = show
		return
	}
	l.shown = show
	for i := range l.markers {
		l.markers[i].opts.Visible = show
		l.engine.SetMarker(l.markers[i].id, l.markers[i].pos, l.markers[i].opts)
	}
}

func (l *MarkersLayer) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeMarkers()
}

// rebuild drops and recreates the layer's markers from the warning data
// for the current floor. Callers hold l.mu.
func (l *MarkersLayer) rebuild() {
	l.removeMarkers()
	l.shown = false

	if l.engine == nil || !l.visible || l.node == nil {
		return
	}

	show := l.zoom >= l.minZoom
	n := 0
	for _, byLayer := range l.data[l.node.ID] {
		for _, w := range byLayer[l.id] {
			if w.Position == nil {
				continue
			}
			entry := markerEntry{
				id:  fmt.Sprintf("%s-marker-%d", l.id, n),
				pos: *w.Position,
				opts: MarkerOptions{
					Visible: show,
					Pulse:   true,
					Label:   w.Title,
				},
			}
			l.engine.SetMarker(entry.id, entry.pos, entry.opts)
			l.markers = append(l.markers, entry)
			n++
		}
	}
	l.shown = show && len(l.markers) > 0
}

func (l *MarkersLayer) removeMarkers() {
	if l.engine == nil {
		return
	}
	for _, m := range l.markers {
		l.engine.RemoveMarker(m.id)
	}
	l.markers = nil
}
