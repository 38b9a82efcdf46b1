package asset

import (
	"encoding/json"
	"errors"
	"testing"
)

func desk(id int, props map[string]string) Asset {
	return Asset{
		Type:     "Stand-Up Desk",
		AssetID:  id,
		Position: &Position{Longitude: 9.99, Latitude: 48.83},
		Props:    props,
	}
}

func TestSetAll_PartitionsByType(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{
		desk(1, nil),
		desk(2, nil),
		{Type: "Sensor", AssetID: 7},
	})

	if got := len(s.List("Stand-Up Desk")); got != 2 {
		t.Errorf("desks = %d, want 2", got)
	}
	if got := len(s.List("Sensor")); got != 1 {
		t.Errorf("sensors = %d, want 1", got)
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3", s.Count())
	}
}

func TestSetAll_DropsDuplicateIDs(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(1, map[string]string{"v": "first"}), desk(1, map[string]string{"v": "second"})})

	assets := s.List("Stand-Up Desk")
	if len(assets) != 1 {
		t.Fatalf("len = %d, want 1", len(assets))
	}
	if assets[0].Props["v"] != "first" {
		t.Errorf("kept %q, want the first occurrence", assets[0].Props["v"])
	}
}

func TestAdd_DuplicateFails(t *testing.T) {
	s := NewStore()
	if err := s.Add(desk(5, nil)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err := s.Add(desk(5, nil))
	if !errors.Is(err, ErrAssetExists) {
		t.Errorf("Add() error = %v, want ErrAssetExists", err)
	}

	// Same id in a different type is fine.
	if err := s.Add(Asset{Type: "Sensor", AssetID: 5}); err != nil {
		t.Errorf("Add() cross-type error = %v", err)
	}
}

func TestUpdate_UnknownIDIsNoOp(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(5, map[string]string{"Reserved": "false"})})
	before := s.All()

	if s.Update("Stand-Up Desk", 99, map[string]string{"Reserved": "true"}) {
		t.Error("Update() for unknown id should report false")
	}

	after := s.All()
	if len(after["Stand-Up Desk"]) != len(before["Stand-Up Desk"]) {
		t.Fatal("store changed by unknown-id update")
	}
	if after["Stand-Up Desk"][0].Props["Reserved"] != "false" {
		t.Error("existing asset changed by unknown-id update")
	}
}

func TestUpdate_MergesProps(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(5, map[string]string{"Reserved": "false", "hostname": "d5"})})

	if !s.Update("Stand-Up Desk", 5, map[string]string{"Reserved": "true"}) {
		t.Fatal("Update() should report true")
	}

	a, ok := s.Get("Stand-Up Desk", 5)
	if !ok {
		t.Fatal("asset missing")
	}
	if a.Props["Reserved"] != "true" {
		t.Errorf("Reserved = %q, want true", a.Props["Reserved"])
	}
	if a.Props["hostname"] != "d5" {
		t.Errorf("unnamed property changed: hostname = %q", a.Props["hostname"])
	}
}

func TestApplyDelta(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(5, map[string]string{"Reserved": "false"})})

	changed := s.ApplyDelta(Delta{
		Type:    "Stand-Up Desk",
		AssetID: 5,
		Props:   map[string]string{"Reserved": "true"},
	})
	if !changed {
		t.Fatal("ApplyDelta() should report a change")
	}

	a, _ := s.Get("Stand-Up Desk", 5)
	if !a.Reserved() {
		t.Error("asset should be reserved after delta")
	}
}

func TestApplyDelta_MalformedDropped(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(5, nil)})

	// Missing type and missing id are both dropped without panic or change.
	if s.ApplyDelta(Delta{AssetID: 5, Props: map[string]string{"x": "1"}}) {
		t.Error("delta without type should not apply")
	}
	if s.ApplyDelta(Delta{Type: "Stand-Up Desk", Props: map[string]string{"x": "1"}}) {
		t.Error("delta without assetId should not apply")
	}
}

func TestRemove(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(1, nil), desk(2, nil), desk(3, nil)})

	removed := s.Remove("Stand-Up Desk", func(a Asset) bool { return a.AssetID == 2 })
	if removed != 1 {
		t.Fatalf("Remove() = %d, want 1", removed)
	}

	if _, ok := s.Get("Stand-Up Desk", 2); ok {
		t.Error("asset 2 should be gone")
	}

	// Index still works for the survivors.
	if !s.Update("Stand-Up Desk", 3, map[string]string{"v": "x"}) {
		t.Error("asset 3 should still be updatable")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{desk(1, map[string]string{"Reserved": "false"})})

	a, _ := s.Get("Stand-Up Desk", 1)
	a.Props["Reserved"] = "true"
	a.Position.Longitude = 0

	fresh, _ := s.Get("Stand-Up Desk", 1)
	if fresh.Props["Reserved"] != "false" {
		t.Error("mutation of returned copy leaked into store")
	}
	if fresh.Position.Longitude != 9.99 {
		t.Error("position mutation leaked into store")
	}
}

func TestAdd_RoundTrip(t *testing.T) {
	s := NewStore()
	in := Asset{
		Type:      "Stand-Up Desk",
		AssetID:   435,
		Position:  &Position{Longitude: 9.17, Latitude: 48.78},
		Draggable: true,
		IconID:    "3",
		Props:     map[string]string{"Reserved": "false", "hostname": "desk-435"},
	}
	if err := s.Add(in); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	out, ok := s.Get("Stand-Up Desk", 435)
	if !ok {
		t.Fatal("asset missing after Add")
	}
	if out.Type != in.Type || out.AssetID != in.AssetID || out.IconID != in.IconID || !out.Draggable {
		t.Errorf("fixed fields changed: %+v", out)
	}
	if *out.Position != *in.Position {
		t.Errorf("position = %+v, want %+v", out.Position, in.Position)
	}
	for k, v := range in.Props {
		if out.Props[k] != v {
			t.Errorf("Props[%q] = %q, want %q", k, out.Props[k], v)
		}
	}
}

func TestForEdit_StripsRenderingFields(t *testing.T) {
	s := NewStore()
	s.SetAll([]Asset{
		desk(1, map[string]string{"hostname": "d1"}),
		desk(2, nil), // nothing editable: omitted
	})

	edits := s.ForEdit()
	if len(edits["Stand-Up Desk"]) != 1 {
		t.Fatalf("edit entries = %d, want 1", len(edits["Stand-Up Desk"]))
	}
	if edits["Stand-Up Desk"][0]["hostname"] != "d1" {
		t.Error("editable property missing")
	}
}

func TestAssetJSON_FlattensProps(t *testing.T) {
	in := Asset{
		Type:     "Stand-Up Desk",
		AssetID:  5,
		Position: &Position{Longitude: 1, Latitude: 2},
		Props:    map[string]string{"Reserved": "true"},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal flat error = %v", err)
	}
	if flat["Reserved"] != "true" {
		t.Errorf("dynamic prop not flattened: %v", flat)
	}
	if flat["assetId"] != float64(5) {
		t.Errorf("assetId = %v, want 5", flat["assetId"])
	}

	var out Asset
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Props["Reserved"] != "true" || out.AssetID != 5 {
		t.Errorf("round-trip mismatch: %+v", out)
	}
}

func TestAssetJSON_CoercesScalarProps(t *testing.T) {
	var a Asset
	raw := `{"type":"Stand-Up Desk","assetId":5,"Reserved":true,"slots":3}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if a.Props["Reserved"] != "true" {
		t.Errorf(`Props["Reserved"] = %q, want "true"`, a.Props["Reserved"])
	}
	if a.Props["slots"] != "3" {
		t.Errorf(`Props["slots"] = %q, want "3"`, a.Props["slots"])
	}
	if !a.Reserved() {
		t.Error("Reserved() = false, want true")
	}
}

func TestSchemaKindOf(t *testing.T) {
	schema := Schema{
		"Stand-Up Desk": {
			{Label: "hostname", Kind: PropText},
			{Label: "installed", Kind: PropDate},
		},
	}

	if k := schema.KindOf("Stand-Up Desk", "installed"); k != PropDate {
		t.Errorf("KindOf(installed) = %s, want Date", k)
	}
	if k := schema.KindOf("Stand-Up Desk", "unknown"); k != PropText {
		t.Errorf("KindOf(unknown) = %s, want Text default", k)
	}
	if k := schema.KindOf("Unknown Type", "x"); k != PropText {
		t.Errorf("KindOf on unknown type = %s, want Text default", k)
	}
}

func TestDateFormatRoundTrip(t *testing.T) {
	parsed, err := ParseDate("7/3/2026")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if FormatDate(parsed) != "7/3/2026" {
		t.Errorf("FormatDate() = %q, want 7/3/2026", FormatDate(parsed))
	}

	if _, err := ParseDate("2026-03-07"); err == nil {
		t.Error("ParseDate() should reject non d/m/yyyy values")
	}
}
