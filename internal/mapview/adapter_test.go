package mapview

import (
	"testing"

	"github.com/gridpoint/facilitymap-core/internal/location"
)

func testAdapter(t *testing.T) (*Adapter, *HeadlessEngine) {
	t.Helper()

	engine := NewHeadlessEngine("road")
	adapter := NewAdapter(engine, Options{Geography: "eu", DefaultStyle: "road"},
		NewIndoorLayer(LayerTemperature, "Temperature"),
		NewIndoorLayer(LayerOccupancy, "Occupancy"),
		NewMarkersLayer(LayerSecurity, "Security"),
		NewWarningsLayer(LayerWarnings, "Warnings"),
		NewAssetLayer(LayerAssets, "Assets"),
	)
	adapter.Initialize()
	return adapter, engine
}

func floorNode(id string) *location.Node {
	building := &location.Node{
		ID:   "b1",
		Name: "North Building",
		Type: location.TypeBuilding,
		Config: &location.NodeConfig{
			FacilityID: "FA-1",
			TilesetID:  "TS-1",
			StateSets: []location.StateSet{
				{ID: "ss-temp", Name: LayerTemperature},
				{ID: "ss-occ", Name: LayerOccupancy},
			},
		},
	}
	floor := &location.Node{
		ID:            id,
		Name:          "Floor 1",
		Type:          location.TypeFloor,
		Parent:        building,
		OrdinalNumber: 1,
		Longitude:     4.89,
		Latitude:      52.37,
	}
	return floor
}

func TestIndoorLayersAreMutuallyExclusive(t *testing.T) {
	adapter, _ := testAdapter(t)

	if err := adapter.SetLayerVisibility(LayerTemperature, true); err != nil {
		t.Fatalf("enable temperature: %v", err)
	}
	if err := adapter.SetLayerVisibility(LayerOccupancy, true); err != nil {
		t.Fatalf("enable occupancy: %v", err)
	}

	state := adapter.VisibilityState()
	if state[LayerTemperature] {
		t.Error("temperature still visible after enabling occupancy")
	}
	if !state[LayerOccupancy] {
		t.Error("occupancy not visible")
	}
}

func TestVisibilityStateIsRequeried(t *testing.T) {
	adapter, _ := testAdapter(t)

	if err := adapter.SetLayerVisibility(LayerOccupancy, true); err != nil {
		t.Fatalf("enable occupancy: %v", err)
	}
	// Temperature coming on evicts occupancy inside the layers, not in
	// any adapter-side cache. The snapshot must reflect that.
	if err := adapter.SetLayerVisibility(LayerTemperature, true); err != nil {
		t.Fatalf("enable temperature: %v", err)
	}

	state := adapter.VisibilityState()
	if state[LayerOccupancy] {
		t.Error("snapshot reports evicted layer as visible")
	}
	if !state[LayerTemperature] {
		t.Error("snapshot misses the layer that was just enabled")
	}
}

func TestSetLayerVisibilityUnknownLayer(t *testing.T) {
	adapter, _ := testAdapter(t)
	if err := adapter.SetLayerVisibility("weather", true); err != ErrUnknownLayer {
		t.Fatalf("err = %v, want ErrUnknownLayer", err)
	}
}

func TestChangeLocationMovesCameraAndIndoor(t *testing.T) {
	adapter, engine := testAdapter(t)

	floor := floorNode("f1")
	adapter.ChangeLocation(floor, nil)

	cam := engine.Camera()
	if cam.Zoom != location.ZoomFor(location.TypeFloor) {
		t.Errorf("zoom = %v, want %v", cam.Zoom, location.ZoomFor(location.TypeFloor))
	}
	if cam.Center.Longitude != floor.Longitude || cam.Center.Latitude != floor.Latitude {
		t.Errorf("center = %+v, want floor position", cam.Center)
	}

	indoor := engine.Indoor()
	if indoor.FacilityID != "FA-1" || indoor.TilesetID != "TS-1" {
		t.Errorf("indoor = %+v, want building facility config", indoor)
	}
	if indoor.FloorOrdinal != 1 {
		t.Errorf("floor ordinal = %d, want 1", indoor.FloorOrdinal)
	}
}

func TestChangeLocationSkipsFlyWhenAlreadyVisible(t *testing.T) {
	adapter, engine := testAdapter(t)

	floor := floorNode("f1")
	adapter.ChangeLocation(floor, nil)

	// Nudge the camera within the envelope: zoom slightly past base,
	// centre unchanged.
	moved := engine.Camera()
	moved.Zoom += 1.0
	moved.Bearing = 45
	engine.SetCamera(moved, false)

	adapter.ChangeLocation(floor, nil)

	cam := engine.Camera()
	if cam.Bearing != 45 {
		t.Error("camera was reset even though the location was visible")
	}
}

func TestChangeLocationPresetOverridesCamera(t *testing.T) {
	adapter, engine := testAdapter(t)

	zoom := 19.2
	bearing := 180.0
	preset := &CameraPreset{
		Zoom:    &zoom,
		Bearing: &bearing,
		Style:   "satellite",
	}
	adapter.ChangeLocation(floorNode("f1"), preset)

	cam := engine.Camera()
	if cam.Zoom != zoom || cam.Bearing != bearing {
		t.Errorf("camera = %+v, want preset zoom/bearing", cam)
	}
	if engine.Style() != "satellite" {
		t.Errorf("style = %q, want satellite", engine.Style())
	}
}

func TestChangeLocationClearsIndoorWithoutFacility(t *testing.T) {
	adapter, engine := testAdapter(t)

	adapter.ChangeLocation(floorNode("f1"), nil)
	campus := &location.Node{ID: "c1", Type: location.TypeCampus, Longitude: 4.8, Latitude: 52.3}
	adapter.ChangeLocation(campus, nil)

	if indoor := engine.Indoor(); indoor.FacilityID != "" {
		t.Errorf("indoor facility = %q, want cleared", indoor.FacilityID)
	}
}

func TestApplyVisibilitySnapshot(t *testing.T) {
	adapter, _ := testAdapter(t)

	adapter.ApplyVisibility(map[string]bool{
		LayerWarnings: true,
		LayerAssets:   true,
		"weather":     true, // unknown ids are ignored
	})

	state := adapter.VisibilityState()
	if !state[LayerWarnings] || !state[LayerAssets] {
		t.Errorf("state = %+v, want warnings and assets visible", state)
	}
}

func TestHaversineMeters(t *testing.T) {
	a := Position{Longitude: 0, Latitude: 0}
	b := Position{Longitude: 0, Latitude: 1}

	d := haversineMeters(a, b)
	// One degree of latitude is roughly 111 km.
	if d < 110000 || d > 112000 {
		t.Errorf("distance = %v, want ~111km", d)
	}
}
