package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gridpoint/facilitymap-core/internal/mapview"
)

// ErrNotFound is returned when no favorite exists for a location.
var ErrNotFound = errors.New("favorites: not found")

// Repository persists favorites keyed by location id.
type Repository interface {
	Add(ctx context.Context, item Item) error
	Remove(ctx context.Context, locationID string) error
	Get(locationID string) (Item, bool)
	IsFavorite(locationID string) bool
	All() []Item
}

const schema = `CREATE TABLE IF NOT EXISTS favorites (
	location_id TEXT PRIMARY KEY,
	longitude   REAL,
	latitude    REAL,
	zoom        REAL,
	bearing     REAL,
	pitch       REAL,
	map_style   TEXT NOT NULL DEFAULT '',
	layers      TEXT NOT NULL DEFAULT '{}'
)`

// SQLiteRepository implements Repository over SQLite with a full
// in-memory cache. Reads never touch the database; writes go through
// to disk first and update the cache on success.
//
// Thread Safety: all methods are safe for concurrent use.
type SQLiteRepository struct {
	db *sql.DB

	mu    sync.RWMutex
	cache map[string]Item
}

// NewSQLiteRepository creates the favorites table when missing and
// warms the cache.
func NewSQLiteRepository(ctx context.Context, db *sql.DB) (*SQLiteRepository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating favorites table: %w", err)
	}

	r := &SQLiteRepository{db: db, cache: make(map[string]Item)}
	if err := r.loadAll(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Add inserts or replaces the favorite for the item's location.
func (r *SQLiteRepository) Add(ctx context.Context, item Item) error {
	if item.LocationID == "" {
		return errors.New("favorites: empty location id")
	}

	layers, err := json.Marshal(item.LayersVisibility)
	if err != nil {
		return fmt.Errorf("encoding layer visibility: %w", err)
	}

	var lng, lat *float64
	if item.Position != nil {
		lng, lat = &item.Position.Longitude, &item.Position.Latitude
	}

	const query = `INSERT OR REPLACE INTO favorites
		(location_id, longitude, latitude, zoom, bearing, pitch, map_style, layers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		item.LocationID, nullFloat(lng), nullFloat(lat),
		nullFloat(item.Zoom), nullFloat(item.Bearing), nullFloat(item.Pitch),
		item.MapStyle, string(layers))
	if err != nil {
		return fmt.Errorf("inserting favorite %s: %w", item.LocationID, err)
	}

	r.mu.Lock()
	r.cache[item.LocationID] = item
	r.mu.Unlock()
	return nil
}

// Remove deletes the favorite for a location. Removing a location that
// has no favorite returns ErrNotFound.
func (r *SQLiteRepository) Remove(ctx context.Context, locationID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE location_id = ?`, locationID)
	if err != nil {
		return fmt.Errorf("deleting favorite %s: %w", locationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting favorite %s: %w", locationID, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	r.mu.Lock()
	delete(r.cache, locationID)
	r.mu.Unlock()
	return nil
}

// Get returns the favorite for a location, if one exists.
func (r *SQLiteRepository) Get(locationID string) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.cache[locationID]
	return item, ok
}

// IsFavorite reports whether a location has a saved favorite.
func (r *SQLiteRepository) IsFavorite(locationID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cache[locationID]
	return ok
}

// All returns every saved favorite, unordered.
func (r *SQLiteRepository) All() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Item, 0, len(r.cache))
	for _, item := range r.cache {
		items = append(items, item)
	}
	return items
}

func (r *SQLiteRepository) loadAll(ctx context.Context) error {
	const query = `SELECT location_id, longitude, latitude, zoom, bearing, pitch, map_style, layers
		FROM favorites`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("loading favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return err
		}
		r.cache[item.LocationID] = item
	}
	return rows.Err()
}

func scanItem(rows *sql.Rows) (Item, error) {
	var (
		item       Item
		lng, lat   sql.NullFloat64
		zoom       sql.NullFloat64
		bearing    sql.NullFloat64
		pitch      sql.NullFloat64
		layersJSON string
	)
	err := rows.Scan(&item.LocationID, &lng, &lat, &zoom, &bearing, &pitch,
		&item.MapStyle, &layersJSON)
	if err != nil {
		return Item{}, fmt.Errorf("scanning favorite: %w", err)
	}

	if lng.Valid && lat.Valid {
		item.Position = &mapview.Position{Longitude: lng.Float64, Latitude: lat.Float64}
	}
	item.Zoom = floatPtr(zoom)
	item.Bearing = floatPtr(bearing)
	item.Pitch = floatPtr(pitch)

	if err := json.Unmarshal([]byte(layersJSON), &item.LayersVisibility); err != nil {
		return Item{}, fmt.Errorf("decoding layer visibility for %s: %w", item.LocationID, err)
	}
	return item, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
