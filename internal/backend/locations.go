package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridpoint/facilitymap-core/internal/location"
	"github.com/gridpoint/facilitymap-core/internal/mapview"
)

// Sitemap fetches the full location hierarchy. The graph loader prunes
// individually broken nodes, so no validation happens here; a failed
// request returns an empty map and the error.
func (c *Client) Sitemap(ctx context.Context) (map[string]*location.RawNode, error) {
	var raw map[string]*location.RawNode
	if err := c.getJSON(ctx, c.url(c.cfg.Endpoints.Sitemap, ""), &raw); err != nil {
		return map[string]*location.RawNode{}, err
	}
	if raw == nil {
		raw = map[string]*location.RawNode{}
	}
	return raw, nil
}

// roomWire is the strict room schema: type and unitId must be non-empty
// strings and the polygon needs at least three [lng, lat] vertices.
type roomWire struct {
	Name    string      `json:"name"`
	Type    *string     `json:"type"`
	UnitID  *string     `json:"unitId"`
	Polygon [][]float64 `json:"polygon"`
}

func (r roomWire) validate() error {
	if r.Type == nil || *r.Type == "" {
		return fmt.Errorf("%w: room type missing", ErrInvalidPayload)
	}
	if r.UnitID == nil || *r.UnitID == "" {
		return fmt.Errorf("%w: room unitId missing", ErrInvalidPayload)
	}
	if len(r.Polygon) < 3 {
		return fmt.Errorf("%w: room polygon has %d vertices", ErrInvalidPayload, len(r.Polygon))
	}
	for _, v := range r.Polygon {
		if len(v) != 2 {
			return fmt.Errorf("%w: polygon vertex is not a [lng, lat] pair", ErrInvalidPayload)
		}
	}
	return nil
}

// Rooms fetches room geometry for a location path. The schema is
// strict: one bad room rejects the entire payload, so a floor is never
// rendered from partial geometry.
func (c *Client) Rooms(ctx context.Context, locationPath string) (mapview.RoomsByFloor, error) {
	var wire map[string]map[string]roomWire
	if err := c.getJSON(ctx, c.url(c.cfg.Endpoints.Rooms, locationPath), &wire); err != nil {
		if jsonTypeError(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return nil, err
	}

	out := make(mapview.RoomsByFloor, len(wire))
	for floorID, rooms := range wire {
		floor := make(map[string]mapview.Room, len(rooms))
		for roomID, r := range rooms {
			if err := r.validate(); err != nil {
				return nil, fmt.Errorf("floor %s room %s: %w", floorID, roomID, err)
			}
			poly := make(mapview.Polygon, len(r.Polygon))
			for i, v := range r.Polygon {
				poly[i] = [2]float64{v[0], v[1]}
			}
			floor[roomID] = mapview.Room{
				Name:    r.Name,
				Type:    *r.Type,
				UnitID:  *r.UnitID,
				Polygon: poly,
			}
		}
		out[floorID] = floor
	}
	return out, nil
}

// warningWire mirrors the strict warning schema: every present field
// must carry the right type, and a position needs both coordinates.
type warningWire struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Position    *struct {
		Longitude *float64 `json:"longitude"`
		Latitude  *float64 `json:"latitude"`
	} `json:"position"`
}

// Warnings fetches the fault tree for a location path. Strict like
// Rooms: a single malformed warning rejects the whole payload.
func (c *Client) Warnings(ctx context.Context, locationPath string) (mapview.WarningsByLocation, error) {
	var wire map[string]map[string]map[string][]warningWire
	if err := c.getJSON(ctx, c.url(c.cfg.Endpoints.Warnings, locationPath), &wire); err != nil {
		if jsonTypeError(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return nil, err
	}

	out := make(mapview.WarningsByLocation, len(wire))
	for floorID, byRoom := range wire {
		rooms := make(mapview.WarningsByRoom, len(byRoom))
		for roomID, byLayer := range byRoom {
			layers := make(mapview.WarningsByLayer, len(byLayer))
			for layerID, list := range byLayer {
				warnings := make([]mapview.Warning, 0, len(list))
				for _, w := range list {
					warn := mapview.Warning{
						Title:       w.Title,
						Description: w.Description,
						URL:         w.URL,
					}
					if w.Position != nil {
						if w.Position.Longitude == nil || w.Position.Latitude == nil {
							return nil, fmt.Errorf("%w: warning position incomplete (floor %s room %s)",
								ErrInvalidPayload, floorID, roomID)
						}
						warn.Position = &mapview.Position{
							Longitude: *w.Position.Longitude,
							Latitude:  *w.Position.Latitude,
						}
					}
					warnings = append(warnings, warn)
				}
				layers[layerID] = warnings
			}
			rooms[roomID] = layers
		}
		out[floorID] = rooms
	}
	return out, nil
}

// SidebarItem is one row inside a sidebar group. The backend attaches
// free-form fields; only presence is required.
type SidebarItem map[string]any

// SidebarGroup is one collapsible section of the location sidebar.
type SidebarGroup struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Items []SidebarItem `json:"items"`
}

// Sidebar fetches the sidebar tree for a location path. Unlike rooms
// and warnings this endpoint is lenient: malformed groups are dropped
// one by one and the rest of the payload survives.
func (c *Client) Sidebar(ctx context.Context, locationPath string) ([]SidebarGroup, error) {
	var raw []json.RawMessage
	if err := c.getJSON(ctx, c.url(c.cfg.Endpoints.Sidebar, locationPath), &raw); err != nil {
		return nil, err
	}

	groups := make([]SidebarGroup, 0, len(raw))
	for i, entry := range raw {
		var g SidebarGroup
		if err := json.Unmarshal(entry, &g); err != nil || g.ID == "" || g.Name == "" {
			c.logger.Warn("dropping malformed sidebar group", "index", i, "path", locationPath)
			continue
		}
		valid := true
		for _, item := range g.Items {
			if item == nil {
				valid = false
				break
			}
		}
		if !valid {
			c.logger.Warn("dropping sidebar group with null item", "index", i, "path", locationPath)
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// jsonTypeError reports whether err stems from a JSON shape mismatch
// rather than a transport failure.
func jsonTypeError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	return errors.As(err, &typeErr) || errors.As(err, &syntaxErr)
}
