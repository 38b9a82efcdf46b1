package location

import (
	"testing"
)

// testRaw builds the standard test tree:
// Global(g) -> Region(r) -> Campus(c) -> Building(b) -> Floors(f1, f2)
func testRaw() map[string]*RawNode {
	return map[string]*RawNode{
		"g":  {ID: "g", Name: "Global", Type: TypeGlobal, Items: []string{"r"}},
		"r":  {ID: "r", Name: "Europe", Type: TypeRegion, ParentID: "g", Items: []string{"c"}},
		"c":  {ID: "c", Name: "South Campus", Type: TypeCampus, ParentID: "r", Items: []string{"b"}},
		"b":  {ID: "b", Name: "Building 1", Type: TypeBuilding, ParentID: "c", Items: []string{"f1", "f2"}, Config: &NodeConfig{FacilityID: "FA1", TilesetID: "TS1"}},
		"f1": {ID: "f1", Name: "Ground Floor", Type: TypeFloor, ParentID: "b"},
		"f2": {ID: "f2", Name: "First Floor", Type: TypeFloor, ParentID: "b"},
	}
}

func TestLoad_WiresParentsAndOrdinals(t *testing.T) {
	g := Load(testRaw())

	if g.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", g.Len())
	}

	f2 := g.Get("f2")
	if f2 == nil {
		t.Fatal("expected node f2")
	}
	if f2.Parent == nil || f2.Parent.ID != "b" {
		t.Errorf("f2.Parent = %v, want b", f2.Parent)
	}
	if f2.OrdinalNumber != 1 {
		t.Errorf("f2.OrdinalNumber = %d, want 1", f2.OrdinalNumber)
	}

	b := g.Get("b")
	if b.OrdinalNumber != InvalidFloorNumber {
		t.Errorf("building ordinal = %d, want %d", b.OrdinalNumber, InvalidFloorNumber)
	}
}

func TestLoad_ExplicitOrdinalWins(t *testing.T) {
	raw := testRaw()
	five := 5
	raw["f1"].OrdinalNumber = &five

	g := Load(raw)
	if got := g.Get("f1").OrdinalNumber; got != 5 {
		t.Errorf("f1.OrdinalNumber = %d, want 5", got)
	}
}

func TestLoad_PrunesInvalidNodes(t *testing.T) {
	raw := testRaw()
	raw["f2"].Name = "" // invalid: must be pruned and unlinked

	g := Load(raw)

	if g.Get("f2") != nil {
		t.Error("expected f2 to be pruned")
	}

	b := g.Get("b")
	if len(b.Items) != 1 || b.Items[0] != "f1" {
		t.Errorf("b.Items = %v, want [f1]", b.Items)
	}
}

func TestLoad_FailsSoft(t *testing.T) {
	if g := Load(nil); g.Len() != 0 {
		t.Errorf("Load(nil).Len() = %d, want 0", g.Len())
	}

	// Every node invalid: empty graph, no panic.
	raw := map[string]*RawNode{
		"a": {ID: "a"},
		"b": nil,
	}
	if g := Load(raw); g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

func TestResolve_StripsSlashes(t *testing.T) {
	g := Load(testRaw())

	for _, path := range []string{"c", "/c", "c/", "//c//"} {
		node, ok := g.Resolve(path)
		if !ok || node.ID != "c" {
			t.Errorf("Resolve(%q) = %v, %v; want c", path, node, ok)
		}
	}
}

func TestResolve_BuildingRedirectsToFirstFloor(t *testing.T) {
	g := Load(testRaw())

	node, ok := g.Resolve("/b")
	if !ok {
		t.Fatal("Resolve(/b) not found")
	}
	if node.ID != "f1" {
		t.Errorf("Resolve(/b) = %s, want f1", node.ID)
	}
	if node.Type != TypeFloor {
		t.Errorf("Resolve(/b).Type = %s, want Floor", node.Type)
	}
}

func TestResolve_BuildingWithoutFloorsReturnsItself(t *testing.T) {
	raw := testRaw()
	raw["b"].Items = nil
	delete(raw, "f1")
	delete(raw, "f2")
	g := Load(raw)

	node, ok := g.Resolve("b")
	if !ok || node.ID != "b" {
		t.Errorf("Resolve(b) = %v, %v; want b itself", node, ok)
	}
}

func TestResolve_NotFound(t *testing.T) {
	g := Load(testRaw())
	if _, ok := g.Resolve("/nope"); ok {
		t.Error("Resolve(/nope) should not be found")
	}
}

func TestRoot(t *testing.T) {
	g := Load(testRaw())
	root := g.Root()
	if root == nil || root.ID != "g" {
		t.Fatalf("Root() = %v, want g", root)
	}

	// Without a global node any parentless node serves as the root.
	raw := testRaw()
	delete(raw, "g")
	raw["r"].ParentID = ""
	g = Load(raw)
	if root = g.Root(); root == nil || root.ID != "r" {
		t.Errorf("Root() without global = %v, want r", root)
	}

	if root = Load(nil).Root(); root != nil {
		t.Errorf("Root() of empty graph = %v, want nil", root)
	}
}

func TestSegmentsOf(t *testing.T) {
	g := Load(testRaw())
	node := g.Get("f1")

	segments := SegmentsOf(node)
	want := []string{"g", "r", "c", "b", "f1"}
	if len(segments) != len(want) {
		t.Fatalf("len(segments) = %d, want %d", len(segments), len(want))
	}
	for i, id := range want {
		if segments[i].ID != id {
			t.Errorf("segments[%d] = %s, want %s", i, segments[i].ID, id)
		}
	}

	if SegmentsOf(nil) != nil {
		t.Error("SegmentsOf(nil) should be nil")
	}
}

func TestPath(t *testing.T) {
	g := Load(testRaw())

	if got := Path(g.Get("f1")); got != "/f1" {
		t.Errorf("Path(f1) = %q, want /f1", got)
	}
	if got := Path(nil); got != "/" {
		t.Errorf("Path(nil) = %q, want /", got)
	}
}

func TestFullName(t *testing.T) {
	g := Load(testRaw())

	tests := []struct {
		id   string
		want string
	}{
		{"f1", "Building 1 > Ground Floor"},
		{"b", "Building 1"},
		{"c", "South Campus"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		if got := g.FullName(tt.id); got != tt.want {
			t.Errorf("FullName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestHasFloors(t *testing.T) {
	g := Load(testRaw())

	if !g.HasFloors("b") {
		t.Error("HasFloors(b) = false, want true")
	}
	if g.HasFloors("c") {
		t.Error("HasFloors(c) = true, want false")
	}
	if g.HasFloors("unknown") {
		t.Error("HasFloors(unknown) = true, want false")
	}
}

func TestBuildingID(t *testing.T) {
	g := Load(testRaw())

	if got := BuildingID(g.Get("f1")); got != "b" {
		t.Errorf("BuildingID(f1) = %q, want b", got)
	}
	if got := BuildingID(g.Get("b")); got != "b" {
		t.Errorf("BuildingID(b) = %q, want b", got)
	}
	if got := BuildingID(g.Get("c")); got != "" {
		t.Errorf("BuildingID(c) = %q, want empty", got)
	}
	if got := BuildingID(nil); got != "" {
		t.Errorf("BuildingID(nil) = %q, want empty", got)
	}
}

func TestConfigFallbacks(t *testing.T) {
	g := Load(testRaw())

	// Floor without its own config inherits the building's.
	if got := FacilityID(g.Get("f1")); got != "FA1" {
		t.Errorf("FacilityID(f1) = %q, want FA1", got)
	}
	if got := TilesetID(g.Get("f1")); got != "TS1" {
		t.Errorf("TilesetID(f1) = %q, want TS1", got)
	}

	// Campus has no config at all.
	if got := FacilityID(g.Get("c")); got != "" {
		t.Errorf("FacilityID(c) = %q, want empty", got)
	}
}

func TestZoomAndDistanceTables(t *testing.T) {
	if ZoomFor(TypeFloor) != 18.5 {
		t.Errorf("ZoomFor(Floor) = %v, want 18.5", ZoomFor(TypeFloor))
	}
	if ZoomFor(Type("Unknown")) != DefaultZoom {
		t.Errorf("ZoomFor(unknown) should fall back to DefaultZoom")
	}
	if MaxDistanceFor(TypeCampus) != 2000 {
		t.Errorf("MaxDistanceFor(Campus) = %v, want 2000", MaxDistanceFor(TypeCampus))
	}
	if MaxDistanceFor(Type("Unknown")) != DefaultMaxDistance {
		t.Errorf("MaxDistanceFor(unknown) should fall back to DefaultMaxDistance")
	}
}
