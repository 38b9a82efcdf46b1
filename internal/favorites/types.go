package favorites

import "github.com/gridpoint/facilitymap-core/internal/mapview"

// Item is a saved camera and overlay preset for one location. Optional
// fields are pointers: a nil zoom means "use the location default", a
// present zoom pins the saved value. Items are created and removed by
// explicit user action and only ever read during navigation.
type Item struct {
	LocationID       string            `json:"locationId"`
	Position         *mapview.Position `json:"position,omitempty"`
	Zoom             *float64          `json:"zoom,omitempty"`
	Bearing          *float64          `json:"bearing,omitempty"`
	Pitch            *float64          `json:"pitch,omitempty"`
	LayersVisibility map[string]bool   `json:"layersVisibility,omitempty"`
	MapStyle         string            `json:"mapStyle,omitempty"`
}

// Preset converts the saved camera fields into an adapter preset.
func (it Item) Preset() *mapview.CameraPreset {
	return &mapview.CameraPreset{
		Center:  it.Position,
		Zoom:    it.Zoom,
		Bearing: it.Bearing,
		Pitch:   it.Pitch,
		Style:   it.MapStyle,
	}
}

// Capture builds an Item snapshotting the current view: camera, map
// style and per-layer visibility.
func Capture(locationID string, cam mapview.Camera, style string, visibility map[string]bool) Item {
	pos := cam.Center
	zoom, bearing, pitch := cam.Zoom, cam.Bearing, cam.Pitch

	vis := make(map[string]bool, len(visibility))
	for k, v := range visibility {
		vis[k] = v
	}

	return Item{
		LocationID:       locationID,
		Position:         &pos,
		Zoom:             &zoom,
		Bearing:          &bearing,
		Pitch:            &pitch,
		LayersVisibility: vis,
		MapStyle:         style,
	}
}
