package mapview

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/location"
)

// Icon is one renderable asset glyph from the icon catalogue.
type Icon struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	SVG  string `json:"svg,omitempty"`
}

const (
	deskReservedColor = "red"
	deskFreeColor     = "green"
)

// AssetLayer renders one marker per placed asset, gated on floor zoom
// like the warning markers. Desk glyphs are coloured by reservation
// state and re-coloured in place when a delta arrives, without waiting
// for a full data refresh. Draggable assets report their drop position
// through the drag handler.
type AssetLayer struct {
	id   string
	name string

	mu      sync.Mutex
	engine  Engine
	data    []asset.Asset
	icons   map[int]Icon
	visible bool
	zoom    float64
	minZoom float64
	shown   bool
	placed  map[string]markerEntry

	dragFn func(assetID int, typ string, pos Position)
}

// NewAssetLayer returns the asset marker overlay.
func NewAssetLayer(id, name string) *AssetLayer {
	return &AssetLayer{
		id:      id,
		name:    name,
		minZoom: location.ZoomFor(location.TypeFloor),
		icons:   make(map[int]Icon),
		placed:  make(map[string]markerEntry),
	}
}

func (l *AssetLayer) ID() string   { return l.id }
func (l *AssetLayer) Name() string { return l.name }

func (l *AssetLayer) Initialize(e Engine) {
	l.mu.Lock()
	l.engine = e
	l.zoom = e.Camera().Zoom
	l.mu.Unlock()

	e.OnMarkerDragEnd(func(markerID string, pos Position) {
		l.handleDragEnd(markerID, pos)
	})
}

// OnDragEnd registers the callback fired when a draggable asset marker
// is dropped at a new position.
func (l *AssetLayer) OnDragEnd(fn func(assetID int, typ string, pos Position)) {
	l.mu.Lock()
	l.dragFn = fn
	l.mu.Unlock()
}

func (l *AssetLayer) SetVisibility(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if visible == l.visible {
		return
	}
	l.visible = visible
	l.rebuild()
}

func (l *AssetLayer) IsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

func (l *AssetLayer) SetLocation(*location.Node) {}

// UpdateAssets replaces the rendered asset set.
func (l *AssetLayer) UpdateAssets(data []asset.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = data
	if l.visible {
		l.rebuild()
	}
}

// UpdateIcons replaces the glyph catalogue.
func (l *AssetLayer) UpdateIcons(icons []Icon) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.icons = make(map[int]Icon, len(icons))
	for _, ic := range icons {
		l.icons[ic.ID] = ic
	}
	if l.visible {
		l.rebuild()
	}
}

// ApplyDelta merges the patch into the cached asset set, so a later
// rebuild renders the patched state, and re-colours the affected desk
// glyph in place. Assets other than desks have no delta-driven render
// state, so only their cache entry changes.
func (l *AssetLayer) ApplyDelta(d asset.Delta) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.data {
		a := &l.data[i]
		if a.AssetID != d.AssetID || a.Type != d.Type {
			continue
		}
		if a.Props == nil {
			a.Props = make(map[string]string, len(d.Props))
		}
		for k, v := range d.Props {
			a.Props[k] = v
		}
		break
	}

	if d.Type != asset.TypeStandUpDesk {
		return
	}
	reserved, ok := d.Props[asset.PropReserved]
	if !ok {
		return
	}

	entry, ok := l.placed[assetMarkerID(d.AssetID)]
	if !ok {
		return
	}
	entry.opts.Color = deskColor(reserved == "true")
	l.placed[entry.id] = entry
	l.engine.SetMarker(entry.id, entry.pos, entry.opts)
}

// OnZoomEnd flips marker visibility when the camera crosses the floor
// zoom threshold.
func (l *AssetLayer) OnZoomEnd(zoom float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zoom = zoom
	show := l.visible && zoom >= l.minZoom
	if show == l.shown {
		return
	}
	l.shown = show
	for id, entry := range l.placed {
		entry.opts.Visible = show
		l.placed[id] = entry
		l.engine.SetMarker(id, entry.pos, entry.opts)
	}
}

func (l *AssetLayer) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeAll()
}

func (l *AssetLayer) handleDragEnd(markerID string, pos Position) {
	id, ok := parseAssetMarkerID(markerID)
	if !ok {
		return
	}

	l.mu.Lock()
	fn := l.dragFn
	var typ string
	for _, a := range l.data {
		if a.AssetID == id {
			typ = a.Type
			break
		}
	}
	l.mu.Unlock()

	if fn != nil && typ != "" {
		fn(id, typ, pos)
	}
}

// rebuild drops and recreates all asset markers. Callers hold l.mu.
func (l *AssetLayer) rebuild() {
	l.removeAll()
	l.shown = false

	if l.engine == nil || !l.visible {
		return
	}

	show := l.zoom >= l.minZoom
	for i := range l.data {
		a := &l.data[i]
		if a.Position == nil {
			continue
		}

		opts := MarkerOptions{
			Visible:   show,
			Draggable: a.Draggable,
			Label:     l.iconName(a.IconID),
		}
		if a.Type == asset.TypeStandUpDesk {
			opts.Color = deskColor(a.Reserved())
		}

		entry := markerEntry{
			id:   assetMarkerID(a.AssetID),
			pos:  Position{Longitude: a.Position.Longitude, Latitude: a.Position.Latitude},
			opts: opts,
		}
		l.placed[entry.id] = entry
		l.engine.SetMarker(entry.id, entry.pos, entry.opts)
	}
	l.shown = show && len(l.placed) > 0
}

func (l *AssetLayer) removeAll() {
	if l.engine == nil {
		return
	}
	for id := range l.placed {
		l.engine.RemoveMarker(id)
	}
	l.placed = make(map[string]markerEntry)
}

func (l *AssetLayer) iconName(iconID string) string {
	id, err := strconv.Atoi(iconID)
	if err != nil {
		return ""
	}
	return l.icons[id].Name
}

func deskColor(reserved bool) string {
	if reserved {
		return deskReservedColor
	}
	return deskFreeColor
}

func assetMarkerID(assetID int) string {
	return fmt.Sprintf("asset-%d", assetID)
}

func parseAssetMarkerID(markerID string) (int, bool) {
	rest, ok := strings.CutPrefix(markerID, "asset-")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}
