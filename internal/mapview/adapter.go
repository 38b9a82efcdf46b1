package mapview

import (
	"errors"
	"math"
	"sync"

	"github.com/gridpoint/facilitymap-core/internal/location"
)

// ErrUnknownLayer is returned when a visibility change names a layer
// the adapter does not manage.
var ErrUnknownLayer = errors.New("mapview: unknown layer")

// Logger is the minimal logging surface the adapter needs. The slog
// wrapper in infrastructure/logging satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// zoomSlack is how far past a location's base zoom the camera may sit
// before a navigation to it forces a fly-to.
const zoomSlack = 1.4

const earthRadiusMeters = 6371000

// Options configures a new Adapter.
type Options struct {
	Geography    string
	DefaultStyle string
	Logger       Logger
}

// Adapter owns the engine and the overlay layers. It translates
// navigation into camera and indoor changes and fans data out to the
// layers that consume it. Layers stay the authority on their own
// visibility; the adapter only coordinates.
type Adapter struct {
	mu     sync.Mutex
	engine Engine
	logger Logger

	layers []Layer
	byID   map[string]Layer

	// exclusive lists groups of layer ids of which at most one may be
	// visible at a time.
	exclusive [][]string

	geography    string
	defaultStyle string
	current      *location.Node
}

// NewAdapter wires the engine and layers together. Layer order is the
// order visibility snapshots are applied in.
func NewAdapter(engine Engine, opts Options, layers ...Layer) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	a := &Adapter{
		engine:       engine,
		logger:       logger,
		layers:       layers,
		byID:         make(map[string]Layer, len(layers)),
		exclusive:    [][]string{{LayerTemperature, LayerOccupancy}},
		geography:    opts.Geography,
		defaultStyle: opts.DefaultStyle,
	}
	for _, l := range layers {
		a.byID[l.ID()] = l
	}
	return a
}

// Initialize binds every layer to the engine and hooks zoom events
// through to the layers that gate on zoom.
func (a *Adapter) Initialize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.defaultStyle != "" {
		a.engine.SetStyle(a.defaultStyle)
	}

	for _, l := range a.layers {
		l.Initialize(a.engine)
	}

	a.engine.OnZoomEnd(func(zoom float64) {
		for _, l := range a.layers {
			if zo, ok := l.(ZoomObserver); ok {
				zo.OnZoomEnd(zoom)
			}
		}
	})
}

// Layers returns the managed layers in registration order.
func (a *Adapter) Layers() []Layer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Layer(nil), a.layers...)
}

// SetLayerVisibility changes one layer's visibility. Turning a layer on
// first turns off every other member of its exclusion group, then every
// layer except the changed one is notified so dependent overlays can
// re-render.
func (a *Adapter) SetLayerVisibility(id string, visible bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	layer, ok := a.byID[id]
	if !ok {
		return ErrUnknownLayer
	}

	if visible {
		for _, group := range a.exclusive {
			if !contains(group, id) {
				continue
			}
			for _, other := range group {
				if other == id {
					continue
				}
				if l, ok := a.byID[other]; ok && l.IsVisible() {
					l.SetVisibility(false)
				}
			}
		}
	}

	layer.SetVisibility(visible)
	a.logger.Debug("layer visibility changed", "layer", id, "visible", layer.IsVisible())

	for _, l := range a.layers {
		if l == layer {
			continue
		}
		if vo, ok := l.(VisibilityObserver); ok {
			vo.OnLayerVisibilityChange(layer)
		}
	}
	return nil
}

// VisibilityState re-queries every layer and returns the current
// visibility per layer id.
func (a *Adapter) VisibilityState() map[string]bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := make(map[string]bool, len(a.layers))
	for _, l := range a.layers {
		state[l.ID()] = l.IsVisible()
	}
	return state
}

// ApplyVisibility applies a saved visibility snapshot. Layers missing
// from the snapshot keep their current state. Unknown ids are ignored.
func (a *Adapter) ApplyVisibility(snapshot map[string]bool) {
	for _, l := range a.Layers() {
		if visible, ok := snapshot[l.ID()]; ok {
			if err := a.SetLayerVisibility(l.ID(), visible); err != nil {
				a.logger.Warn("apply visibility", "layer", l.ID(), "error", err)
			}
		}
	}
}

// ChangeLocation moves the view to the given node. The camera flies
// unless the node is already inside the current view envelope and no
// preset asks otherwise. A preset, when given, overrides camera fields
// and map style. The indoor tileset follows the node's facility config.
func (a *Adapter) ChangeLocation(node *location.Node, preset *CameraPreset) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if node == nil {
		return
	}
	a.current = node

	style := a.defaultStyle
	if preset != nil && preset.Style != "" {
		style = preset.Style
	}
	if style != "" && style != a.engine.Style() {
		a.engine.SetStyle(style)
	}

	cam := Camera{
		Center: Position{Longitude: node.Longitude, Latitude: node.Latitude},
		Zoom:   location.ZoomFor(node.Type),
	}
	if preset != nil {
		if preset.Center != nil {
			cam.Center = *preset.Center
		}
		if preset.Zoom != nil {
			cam.Zoom = *preset.Zoom
		}
		if preset.Bearing != nil {
			cam.Bearing = *preset.Bearing
		}
		if preset.Pitch != nil {
			cam.Pitch = *preset.Pitch
		}
	}

	if preset != nil || !a.isLocationVisible(node) {
		a.engine.SetCamera(cam, true)
		a.logger.Debug("camera moved", "location", node.ID, "zoom", cam.Zoom)
	}

	a.applyIndoor(node)

	for _, l := range a.layers {
		l.SetLocation(node)
	}
}

// CurrentLocation returns the node the view is centred on, if any.
func (a *Adapter) CurrentLocation() *location.Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// SelectFloor re-targets the indoor view at another floor of the
// current facility without moving the camera.
func (a *Adapter) SelectFloor(floor *location.Node) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if floor == nil {
		return
	}
	a.applyIndoor(floor)
	for _, l := range a.layers {
		l.SetLocation(floor)
	}
	a.current = floor
}

// UpdateRooms fans room geometry out to every layer that consumes it.
func (a *Adapter) UpdateRooms(rooms RoomsByFloor) {
	for _, l := range a.Layers() {
		if s, ok := l.(RoomSink); ok {
			s.UpdateRooms(rooms)
		}
	}
}

// UpdateWarnings fans warning data out to every layer that consumes it.
func (a *Adapter) UpdateWarnings(data WarningsByLocation) {
	for _, l := range a.Layers() {
		if s, ok := l.(WarningSink); ok {
			s.UpdateWarnings(data)
		}
	}
}

// Engine exposes the underlying engine for data layers managed outside
// the adapter loop, such as the asset overlay.
func (a *Adapter) Engine() Engine {
	return a.engine
}

// Dispose releases every layer's engine resources.
func (a *Adapter) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, l := range a.layers {
		l.Dispose()
	}
}

func (a *Adapter) applyIndoor(node *location.Node) {
	facilityID := location.FacilityID(node)
	tilesetID := location.TilesetID(node)
	if facilityID == "" || tilesetID == "" {
		a.engine.SetIndoor(IndoorOptions{})
		return
	}

	ordinal := node.OrdinalNumber
	if node.Type != location.TypeFloor {
		ordinal = 0
	}

	opts := a.engine.Indoor()
	opts.TilesetID = tilesetID
	opts.FacilityID = facilityID
	opts.FloorOrdinal = ordinal
	a.engine.SetIndoor(opts)
}

// isLocationVisible reports whether the camera already frames the node:
// zoomed within [base, base+zoomSlack] of the node's base zoom and
// centred within the node type's distance envelope.
func (a *Adapter) isLocationVisible(node *location.Node) bool {
	cam := a.engine.Camera()

	diff := cam.Zoom - location.ZoomFor(node.Type)
	if diff < 0 || diff > zoomSlack {
		return false
	}

	target := Position{Longitude: node.Longitude, Latitude: node.Latitude}
	return haversineMeters(cam.Center, target) <= location.MaxDistanceFor(node.Type)
}

// haversineMeters is the great-circle distance between two positions.
func haversineMeters(a, b Position) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
