package sync

import (
	"context"
	"fmt"

	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/backend"
	"github.com/gridpoint/facilitymap-core/internal/favorites"
	"github.com/gridpoint/facilitymap-core/internal/mapview"
	"github.com/gridpoint/facilitymap-core/internal/socket"
)

// ApplyLocalDelta merges a locally originated property change into the
// store and the asset layer in one pass, then broadcasts it so other
// clients converge. Booking uses this path for same-day Reserved flips.
func (e *Engine) ApplyLocalDelta(d asset.Delta) {
	e.applyDelta(d)
	e.broadcast(d)
	e.notify()
}

// ApplyRemoteDelta merges a delta pushed by another client. Same merge
// pass as local deltas, without re-broadcasting.
func (e *Engine) ApplyRemoteDelta(d asset.Delta) {
	e.applyDelta(d)
	e.notify()
}

// applyDelta is the single merge path: store and map glyph update in
// the same logical step, so there is no window where the map shows a
// state the store does not hold.
func (e *Engine) applyDelta(d asset.Delta) {
	if e.store != nil {
		if !e.store.ApplyDelta(d) {
			e.logger.Debug("delta for unknown asset ignored",
				"type", d.Type, "assetId", d.AssetID)
		}
	}
	if e.assetLayer != nil {
		e.assetLayer.ApplyDelta(d)
	}
}

func (e *Engine) broadcast(d asset.Delta) {
	if e.sock == nil {
		return
	}
	err := e.sock.Send(socket.Message{
		Topic:   socket.TopicUpdateAsset,
		Type:    d.Type,
		AssetID: d.AssetID,
		Props:   d.Props,
	})
	if err != nil {
		e.logger.Warn("delta broadcast failed",
			"type", d.Type, "assetId", d.AssetID, "error", err)
	}
}

func (e *Engine) handleSocketMessage(m socket.Message) {
	if m.Topic != socket.TopicUpdateAsset {
		return
	}
	e.ApplyRemoteDelta(asset.Delta{Type: m.Type, AssetID: m.AssetID, Props: m.Props})
}

// requireEdit gates mutations on the signed-in user's rights. An
// anonymous engine (no session) is unrestricted; embeddings that want
// gating sign a user in first.
func (e *Engine) requireEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Active && !e.session.Rights.CanEdit {
		return ErrEditNotAllowed
	}
	return nil
}

// CreateAsset registers a new asset with the backend, then mirrors the
// server-issued record into the store, the layer and the socket.
func (e *Engine) CreateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error) {
	if err := e.requireEdit(); err != nil {
		return asset.Asset{}, err
	}

	created, err := e.backend.CreateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("creating asset: %w", err)
	}

	if e.store != nil {
		if err := e.store.Add(created); err != nil {
			e.logger.Warn("created asset already in store",
				"type", created.Type, "assetId", created.AssetID)
		}
	}
	e.refreshLayer()
	e.broadcast(asset.Delta{Type: created.Type, AssetID: created.AssetID, Props: created.Props})
	e.notify()
	return created, nil
}

// UpdateAsset applies a property edit optimistically, persists it, and
// broadcasts it. A failed persist is logged; local state keeps the
// optimistic value and converges on the next fetch.
func (e *Engine) UpdateAsset(ctx context.Context, typ string, assetID int, props map[string]string) error {
	if err := e.requireEdit(); err != nil {
		return err
	}

	e.applyDelta(asset.Delta{Type: typ, AssetID: assetID, Props: props})
	e.notify()

	if err := e.backend.UpdateAsset(ctx, assetID, props); err != nil {
		e.logger.Warn("asset update not persisted",
			"type", typ, "assetId", assetID, "error", err)
		return fmt.Errorf("updating asset %d: %w", assetID, err)
	}

	e.broadcast(asset.Delta{Type: typ, AssetID: assetID, Props: props})
	return nil
}

// MoveAsset applies a position change optimistically and persists it.
func (e *Engine) MoveAsset(ctx context.Context, typ string, assetID int, pos asset.Position) error {
	if err := e.requireEdit(); err != nil {
		return err
	}

	if e.store != nil {
		e.store.UpdatePosition(typ, assetID, pos)
	}
	e.notify()

	if err := e.backend.UpdateAssetPosition(ctx, assetID, pos); err != nil {
		e.logger.Warn("asset move not persisted",
			"type", typ, "assetId", assetID, "error", err)
		return fmt.Errorf("moving asset %d: %w", assetID, err)
	}
	return nil
}

// DeleteAsset removes an asset locally, from the backend, and rebuilds
// the layer.
func (e *Engine) DeleteAsset(ctx context.Context, typ string, assetID int) error {
	if err := e.requireEdit(); err != nil {
		return err
	}

	if e.store != nil {
		e.store.Remove(typ, func(a asset.Asset) bool { return a.AssetID == assetID })
	}
	e.refreshLayer()
	e.notify()

	if err := e.backend.DeleteAsset(ctx, assetID); err != nil {
		e.logger.Warn("asset delete not persisted",
			"type", typ, "assetId", assetID, "error", err)
		return fmt.Errorf("deleting asset %d: %w", assetID, err)
	}
	return nil
}

// refreshLayer pushes the store's full contents to the asset layer.
// Used after add/remove, which change the marker set rather than the
// props of an existing marker.
func (e *Engine) refreshLayer() {
	if e.store == nil || e.assetLayer == nil {
		return
	}

	var flat []asset.Asset
	for _, list := range e.store.All() {
		flat = append(flat, list...)
	}
	e.assetLayer.UpdateAssets(flat)
}

func (e *Engine) handleDragEnd(ctx context.Context, assetID int, typ string, pos mapview.Position) {
	if err := e.MoveAsset(ctx, typ, assetID, asset.Position{
		Longitude: pos.Longitude,
		Latitude:  pos.Latitude,
	}); err != nil {
		e.logger.Warn("drag move failed", "assetId", assetID, "error", err)
	}
}

// Login authenticates the user and loads their rights. Failed
// credentials return ErrBadCredentials with no session change.
func (e *Engine) Login(ctx context.Context, username, password string) error {
	claims, err := e.backend.Authenticate(ctx, username, password)
	if err != nil {
		return fmt.Errorf("authenticating %s: %w", username, err)
	}
	if claims == nil {
		return ErrBadCredentials
	}

	user := backend.UserFromClaims(claims)
	rights, err := e.backend.FetchUserRights(ctx, username)
	if err != nil {
		e.logger.Warn("user rights fetch failed", "user", username, "error", err)
		rights = backend.Rights{}
	}

	e.mu.Lock()
	e.session = Session{User: user, Rights: rights, Active: true}
	e.mu.Unlock()
	e.logger.Info("user signed in", "user", username, "canEdit", rights.CanEdit)
	e.notify()
	return nil
}

// Logout clears the session.
func (e *Engine) Logout() {
	e.mu.Lock()
	e.session = Session{}
	e.mu.Unlock()
	e.notify()
}

// Session returns the current session snapshot.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// SaveFavorite captures the current camera, style and layer visibility
// as the favorite for the current location.
func (e *Engine) SaveFavorite(ctx context.Context) error {
	cur := e.Current()
	if cur.Node == nil {
		return ErrNotStarted
	}
	if e.favs == nil || e.adapter == nil {
		return fmt.Errorf("sync: favorites not configured")
	}

	item := favorites.Capture(cur.Node.ID,
		e.adapter.Engine().Camera(),
		e.adapter.Engine().Style(),
		e.adapter.VisibilityState())
	if err := e.favs.Add(ctx, item); err != nil {
		return fmt.Errorf("saving favorite for %s: %w", cur.Node.ID, err)
	}
	e.notify()
	return nil
}

// RemoveFavorite deletes the favorite for a location.
func (e *Engine) RemoveFavorite(ctx context.Context, locationID string) error {
	if e.favs == nil {
		return fmt.Errorf("sync: favorites not configured")
	}
	if err := e.favs.Remove(ctx, locationID); err != nil {
		return err
	}
	e.notify()
	return nil
}

// Favorites returns every saved favorite.
func (e *Engine) Favorites() []favorites.Item {
	if e.favs == nil {
		return nil
	}
	return e.favs.All()
}

// IsFavorite reports whether the location has a saved favorite.
func (e *Engine) IsFavorite(locationID string) bool {
	return e.favs != nil && e.favs.IsFavorite(locationID)
}
