package mapview

import "sync"

// Position is a WGS84 coordinate, longitude first to match wire order.
type Position struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Polygon is an ordered ring of [longitude, latitude] pairs.
type Polygon [][2]float64

// Camera describes the full view state of the rendering engine.
type Camera struct {
	Center  Position `json:"center"`
	Zoom    float64  `json:"zoom"`
	Bearing float64  `json:"bearing"`
	Pitch   float64  `json:"pitch"`
}

// CameraPreset carries optional camera overrides, typically restored
// from a saved favorite. Nil fields fall back to the location defaults.
type CameraPreset struct {
	Center  *Position
	Zoom    *float64
	Bearing *float64
	Pitch   *float64
	Style   string
}

// MarkerOptions controls how a single marker is rendered.
type MarkerOptions struct {
	Visible   bool   `json:"visible"`
	Color     string `json:"color,omitempty"`
	Draggable bool   `json:"draggable,omitempty"`
	Pulse     bool   `json:"pulse,omitempty"`
	Label     string `json:"label,omitempty"`
}

// PolygonStyle controls how a polygon group is rendered.
type PolygonStyle struct {
	FillColor   string  `json:"fillColor"`
	StrokeColor string  `json:"strokeColor"`
	FillOpacity float64 `json:"fillOpacity"`
	StrokeWidth float64 `json:"strokeWidth"`
	MinZoom     float64 `json:"minZoom"`
}

// IndoorOptions selects the indoor tileset shown by the engine and the
// stateset used for dynamic room styling. An empty FacilityID clears
// the indoor view.
type IndoorOptions struct {
	TilesetID      string `json:"tilesetID,omitempty"`
	FacilityID     string `json:"facilityID,omitempty"`
	FloorOrdinal   int    `json:"floorOrdinal"`
	StateSetID     string `json:"stateSetID,omitempty"`
	DynamicStyling bool   `json:"dynamicStyling"`
}

// Engine is the rendering surface the adapter and layers draw on. It is
// deliberately narrow: camera, style, indoor tileset, named markers and
// polygon groups, plus the two events the layers react to.
type Engine interface {
	SetCamera(cam Camera, animate bool)
	Camera() Camera

	SetStyle(style string)
	Style() string

	SetIndoor(opts IndoorOptions)
	Indoor() IndoorOptions

	SetMarker(id string, pos Position, opts MarkerOptions)
	RemoveMarker(id string)

	SetPolygons(group string, polygons []Polygon, style PolygonStyle)
	ClearPolygons(group string)

	OnZoomEnd(fn func(zoom float64))
	OnMarkerDragEnd(fn func(id string, pos Position))
}

// MarkerState is the retained render state of one marker.
type MarkerState struct {
	Position Position      `json:"position"`
	Options  MarkerOptions `json:"options"`
}

// PolygonGroup is the retained render state of one polygon group.
type PolygonGroup struct {
	Polygons []Polygon    `json:"polygons"`
	Style    PolygonStyle `json:"style"`
}

// HeadlessEngine is an Engine that retains render state in memory
// instead of drawing. It backs the state API and the tests.
type HeadlessEngine struct {
	mu       sync.RWMutex
	camera   Camera
	style    string
	indoor   IndoorOptions
	markers  map[string]MarkerState
	polygons map[string]PolygonGroup
	zoomFns  []func(float64)
	dragFns  []func(string, Position)
}

// NewHeadlessEngine returns an empty engine with the given map style.
func NewHeadlessEngine(style string) *HeadlessEngine {
	return &HeadlessEngine{
		style:    style,
		markers:  make(map[string]MarkerState),
		polygons: make(map[string]PolygonGroup),
	}
}

func (e *HeadlessEngine) SetCamera(cam Camera, _ bool) {
	e.mu.Lock()
	e.camera = cam
	e.mu.Unlock()
}

func (e *HeadlessEngine) Camera() Camera {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.camera
}

func (e *HeadlessEngine) SetStyle(style string) {
	e.mu.Lock()
	e.style = style
	e.mu.Unlock()
}

func (e *HeadlessEngine) Style() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.style
}

func (e *HeadlessEngine) SetIndoor(opts IndoorOptions) {
	e.mu.Lock()
	e.indoor = opts
	e.mu.Unlock()
}

func (e *HeadlessEngine) Indoor() IndoorOptions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indoor
}

func (e *HeadlessEngine) SetMarker(id string, pos Position, opts MarkerOptions) {
	e.mu.Lock()
	e.markers[id] = MarkerState{Position: pos, Options: opts}
	e.mu.Unlock()
}

func (e *HeadlessEngine) RemoveMarker(id string) {
	e.mu.Lock()
	delete(e.markers, id)
	e.mu.Unlock()
}

func (e *HeadlessEngine) SetPolygons(group string, polygons []Polygon, style PolygonStyle) {
	e.mu.Lock()
	e.polygons[group] = PolygonGroup{Polygons: polygons, Style: style}
	e.mu.Unlock()
}

func (e *HeadlessEngine) ClearPolygons(group string) {
	e.mu.Lock()
	delete(e.polygons, group)
	e.mu.Unlock()
}

func (e *HeadlessEngine) OnZoomEnd(fn func(zoom float64)) {
	e.mu.Lock()
	e.zoomFns = append(e.zoomFns, fn)
	e.mu.Unlock()
}

func (e *HeadlessEngine) OnMarkerDragEnd(fn func(id string, pos Position)) {
	e.mu.Lock()
	e.dragFns = append(e.dragFns, fn)
	e.mu.Unlock()
}

// EmitZoomEnd updates the camera zoom and fires the zoom handlers.
func (e *HeadlessEngine) EmitZoomEnd(zoom float64) {
	e.mu.Lock()
	e.camera.Zoom = zoom
	fns := append([]func(float64){}, e.zoomFns...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(zoom)
	}
}

// EmitMarkerDragEnd fires the drag handlers for the given marker.
func (e *HeadlessEngine) EmitMarkerDragEnd(id string, pos Position) {
	e.mu.RLock()
	fns := append([]func(string, Position){}, e.dragFns...)
	e.mu.RUnlock()
	for _, fn := range fns {
		fn(id, pos)
	}
}

// Marker returns the retained state of one marker.
func (e *HeadlessEngine) Marker(id string) (MarkerState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.markers[id]
	return m, ok
}

// Markers returns a copy of all retained marker state.
func (e *HeadlessEngine) Markers() map[string]MarkerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]MarkerState, len(e.markers))
	for id, m := range e.markers {
		out[id] = m
	}
	return out
}

// Polygons returns the retained state of one polygon group.
func (e *HeadlessEngine) Polygons(group string) (PolygonGroup, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.polygons[group]
	return g, ok
}
