package asset

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Position is a WGS84 coordinate pair for a placeable asset.
type Position struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Asset is a placeable, typed map entity (desk, sensor, ...).
//
// Fixed fields carry rendering-relevant state; everything else the backend
// attaches to an asset is an untyped string property driven by the remote
// type schema. Props are kept separate from the fixed fields in memory but
// flattened into the top-level object on the wire, matching the backend's
// asset representation.
type Asset struct {
	Type      string
	AssetID   int
	Position  *Position
	Draggable bool
	IconID    string
	Props     map[string]string
}

// fixedKeys are the top-level JSON keys that map to fixed fields rather
// than dynamic properties.
var fixedKeys = map[string]struct{}{
	"type":      {},
	"assetId":   {},
	"position":  {},
	"draggable": {},
	"iconID":    {},
}

// assetWire is the fixed-field subset of the flat wire object.
type assetWire struct {
	Type      string    `json:"type"`
	AssetID   int       `json:"assetId"`
	Position  *Position `json:"position,omitempty"`
	Draggable bool      `json:"draggable,omitempty"`
	IconID    string    `json:"iconID,omitempty"`
}

// MarshalJSON flattens the asset into a single object: fixed fields plus
// dynamic properties at the top level.
func (a Asset) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(a.Props)+5)
	for k, v := range a.Props {
		flat[k] = v
	}
	flat["type"] = a.Type
	flat["assetId"] = a.AssetID
	if a.Position != nil {
		flat["position"] = a.Position
	}
	if a.Draggable {
		flat["draggable"] = a.Draggable
	}
	if a.IconID != "" {
		flat["iconID"] = a.IconID
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat wire object into fixed fields and dynamic
// properties. Non-string property values are coerced to strings, matching
// the tolerant reading the live feed relies on ("true" and true both mean
// reserved).
func (a *Asset) UnmarshalJSON(data []byte) error {
	var wire assetWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	props := make(map[string]string)
	for k, raw := range flat {
		if _, fixed := fixedKeys[k]; fixed {
			continue
		}
		props[k] = coerceString(raw)
	}
	if len(props) == 0 {
		props = nil
	}

	*a = Asset{
		Type:      wire.Type,
		AssetID:   wire.AssetID,
		Position:  wire.Position,
		Draggable: wire.Draggable,
		IconID:    wire.IconID,
		Props:     props,
	}
	return nil
}

// coerceString renders a raw JSON scalar as its string value.
func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return string(raw)
}

// Copy returns a deep copy of the asset.
func (a *Asset) Copy() *Asset {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Position != nil {
		pos := *a.Position
		cp.Position = &pos
	}
	if a.Props != nil {
		cp.Props = make(map[string]string, len(a.Props))
		for k, v := range a.Props {
			cp.Props[k] = v
		}
	}
	return &cp
}

// TypeStandUpDesk is the bookable desk asset type.
const TypeStandUpDesk = "Stand-Up Desk"

// PropReserved marks a desk as booked for today.
const PropReserved = "Reserved"

// Reserved reports whether the asset's reservation property is set.
func (a *Asset) Reserved() bool {
	return a != nil && a.Props[PropReserved] == "true"
}

// Delta is an incremental property patch for one asset, as delivered over
// the live-update socket or produced by a local optimistic mutation.
type Delta struct {
	Type    string            `json:"type"`
	AssetID int               `json:"assetId"`
	Props   map[string]string `json:"props"`
}

// Validate checks the delta names a type and an asset id.
func (d Delta) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidDelta)
	}
	if d.AssetID == 0 {
		return fmt.Errorf("%w: missing assetId", ErrInvalidDelta)
	}
	return nil
}
