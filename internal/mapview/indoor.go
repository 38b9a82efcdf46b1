package mapview

import (
	"sync"

	"github.com/gridpoint/facilitymap-core/internal/location"
)

// IndoorLayer recolours indoor rooms from a provider state set, one set
// per layer (temperature, occupancy). Only one indoor layer may drive
// the styling at a time; when another indoor layer comes on this one
// drops its visible flag without touching the engine, since the newly
// visible layer has already replaced the state set.
type IndoorLayer struct {
	id   string
	name string

	mu         sync.Mutex
	engine     Engine
	stateSetID string
	visible    bool
}

// NewIndoorLayer returns an indoor styling layer. The id must match a
// state set name in the location config.
func NewIndoorLayer(id, name string) *IndoorLayer {
	return &IndoorLayer{id: id, name: name}
}

func (l *IndoorLayer) ID() string   { return l.id }
func (l *IndoorLayer) Name() string { return l.name }

func (l *IndoorLayer) Initialize(e Engine) {
	l.mu.Lock()
	l.engine = e
	l.mu.Unlock()
}

func (l *IndoorLayer) SetVisibility(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if visible == l.visible {
		return
	}
	l.visible = visible

	if visible {
		l.applyStateSet(l.stateSetID)
	} else {
		l.applyStateSet("")
	}
}

func (l *IndoorLayer) IsVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// OnLayerVisibilityChange yields the styling slot when a sibling indoor
// layer becomes visible.
func (l *IndoorLayer) OnLayerVisibilityChange(changed Layer) {
	other, ok := changed.(*IndoorLayer)
	if !ok || !other.IsVisible() {
		return
	}
	l.mu.Lock()
	l.visible = false
	l.mu.Unlock()
}

func (l *IndoorLayer) SetLocation(node *location.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stateSetID = location.StateSetFor(node, l.id)
	if l.visible {
		l.applyStateSet(l.stateSetID)
	}
}

func (l *IndoorLayer) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.visible {
		l.applyStateSet("")
		l.visible = false
	}
}

// applyStateSet swaps the engine's indoor state set while keeping the
// facility selection intact. Callers hold l.mu.
func (l *IndoorLayer) applyStateSet(id string) {
	if l.engine == nil {
		return
	}
	opts := l.engine.Indoor()
	opts.StateSetID = id
	opts.DynamicStyling = id != ""
	l.engine.SetIndoor(opts)
}
