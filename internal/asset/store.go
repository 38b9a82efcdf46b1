package asset

import "sync"

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Store holds per-type collections of placeable assets.
//
// Each type maps to an ordered sequence of assets in which an asset id
// appears at most once; an id index alongside the sequence gives O(1)
// lookup for the patch-by-id operations the live feed performs constantly.
//
// The store is mutated from three call sites — direct user action, REST
// response callbacks and the socket message handler — so all public
// methods are thread-safe and every returned asset is a copy.
type Store struct {
	mu     sync.RWMutex
	byType map[string][]*Asset
	index  map[string]map[int]int // type -> assetId -> position in sequence
	logger Logger
}

// NewStore creates an empty asset store.
func NewStore() *Store {
	return &Store{
		byType: make(map[string][]*Asset),
		index:  make(map[string]map[int]int),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetAll bulk-replaces the store contents, partitioning the provided
// assets by type. Used after the initial fetch for a location. Later
// duplicates of an id within a type are dropped with a warning.
func (s *Store) SetAll(assets []Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byType = make(map[string][]*Asset)
	s.index = make(map[string]map[int]int)

	for i := range assets {
		a := assets[i]
		if _, ok := s.index[a.Type][a.AssetID]; ok {
			s.logger.Warn("duplicate asset in bulk load dropped", "type", a.Type, "asset_id", a.AssetID)
			continue
		}
		s.appendLocked(a.Copy())
	}
}

// Add appends an asset to its type's sequence.
// Returns ErrAssetExists if the id is already present in that type;
// callers must delete first to replace an asset wholesale.
func (s *Store) Add(a Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[a.Type][a.AssetID]; ok {
		return ErrAssetExists
	}

	s.appendLocked(a.Copy())
	s.logger.Debug("asset added", "type", a.Type, "asset_id", a.AssetID)
	return nil
}

// appendLocked appends an asset and indexes it. Caller holds the lock.
func (s *Store) appendLocked(a *Asset) {
	s.byType[a.Type] = append(s.byType[a.Type], a)
	if s.index[a.Type] == nil {
		s.index[a.Type] = make(map[int]int)
	}
	s.index[a.Type][a.AssetID] = len(s.byType[a.Type]) - 1
}

// Update merges a property patch into the asset with the given id.
//
// Unknown ids are silently ignored and reported as false: a stale patch
// referencing a deleted asset must not error, or a slow socket echo could
// crash the handling pass. Existing properties not named in the patch are
// untouched.
func (s *Store) Update(typ string, assetID int, props map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(typ, assetID, props)
}

func (s *Store) updateLocked(typ string, assetID int, props map[string]string) bool {
	pos, ok := s.index[typ][assetID]
	if !ok {
		return false
	}

	a := s.byType[typ][pos]
	if a.Props == nil {
		a.Props = make(map[string]string, len(props))
	}
	for k, v := range props {
		a.Props[k] = v
	}
	return true
}

// UpdatePosition moves an asset. Unknown ids are ignored.
func (s *Store) UpdatePosition(typ string, assetID int, pos Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[typ][assetID]
	if !ok {
		return false
	}
	s.byType[typ][i].Position = &pos
	return true
}

// Remove filters out the assets of a type matching the predicate and
// returns how many were removed.
func (s *Store) Remove(typ string, match func(Asset) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.byType[typ]
	if len(seq) == 0 {
		return 0
	}

	kept := seq[:0]
	removed := 0
	for _, a := range seq {
		if match(*a) {
			removed++
			continue
		}
		kept = append(kept, a)
	}

	if removed == 0 {
		return 0
	}

	s.byType[typ] = kept
	idx := make(map[int]int, len(kept))
	for i, a := range kept {
		idx[a.AssetID] = i
	}
	s.index[typ] = idx
	return removed
}

// ApplyDelta applies a remote or optimistic property patch.
//
// Malformed deltas are dropped with a warning — never an error the caller
// has to handle — because a crashed handler would desynchronize the whole
// live session. The returned bool reports whether any asset changed, so
// the caller can mirror the same patch into the map layer in the same
// handling pass.
func (s *Store) ApplyDelta(d Delta) bool {
	if err := d.Validate(); err != nil {
		s.logger.Warn("dropping malformed asset delta", "error", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.updateLocked(d.Type, d.AssetID, d.Props) {
		s.logger.Debug("delta for unknown asset ignored", "type", d.Type, "asset_id", d.AssetID)
		return false
	}
	return true
}

// Get returns a copy of the asset with the given type and id.
func (s *Store) Get(typ string, assetID int) (Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[typ][assetID]
	if !ok {
		return Asset{}, false
	}
	return *s.byType[typ][pos].Copy(), true
}

// List returns copies of a type's assets in sequence order.
func (s *Store) List(typ string) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.byType[typ]
	out := make([]Asset, 0, len(seq))
	for _, a := range seq {
		out = append(out, *a.Copy())
	}
	return out
}

// All returns a copy of the full type→assets mapping.
func (s *Store) All() map[string][]Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Asset, len(s.byType))
	for typ, seq := range s.byType {
		assets := make([]Asset, 0, len(seq))
		for _, a := range seq {
			assets = append(assets, *a.Copy())
		}
		out[typ] = assets
	}
	return out
}

// Types returns the asset types currently present in the store.
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.byType))
	for typ := range s.byType {
		types = append(types, typ)
	}
	return types
}

// Count returns the total number of stored assets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, seq := range s.byType {
		n += len(seq)
	}
	return n
}

// ForEdit returns the dynamic property view of the store used by editing
// forms: per type, each asset's properties with the rendering-only fields
// (position, icon) stripped. Assets with no editable content are omitted.
func (s *Store) ForEdit() map[string][]map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]map[string]string, len(s.byType))
	for typ, seq := range s.byType {
		edits := make([]map[string]string, 0, len(seq))
		for _, a := range seq {
			if len(a.Props) == 0 {
				continue
			}
			edit := make(map[string]string, len(a.Props)+1)
			for k, v := range a.Props {
				edit[k] = v
			}
			edits = append(edits, edit)
		}
		out[typ] = edits
	}
	return out
}
