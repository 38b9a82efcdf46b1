package sync

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/backend"
	"github.com/gridpoint/facilitymap-core/internal/favorites"
	"github.com/gridpoint/facilitymap-core/internal/location"
	"github.com/gridpoint/facilitymap-core/internal/mapview"
	"github.com/gridpoint/facilitymap-core/internal/socket"
)

// Backend is the REST surface the engine consumes. *backend.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	Sitemap(ctx context.Context) (map[string]*location.RawNode, error)
	AssetsForLocation(ctx context.Context, locationPath string) ([]asset.Asset, error)
	CreateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error)
	UpdateAsset(ctx context.Context, assetID int, props map[string]string) error
	UpdateAssetPosition(ctx context.Context, assetID int, pos asset.Position) error
	DeleteAsset(ctx context.Context, assetID int) error
	AssetTypes(ctx context.Context) ([]asset.TypeInfo, error)
	AssetTypeProps(ctx context.Context, typeID int) ([]asset.PropDef, error)
	AssetIcons(ctx context.Context) ([]mapview.Icon, error)
	Rooms(ctx context.Context, locationPath string) (mapview.RoomsByFloor, error)
	Warnings(ctx context.Context, locationPath string) (mapview.WarningsByLocation, error)
	Sidebar(ctx context.Context, locationPath string) ([]backend.SidebarGroup, error)
	Authenticate(ctx context.Context, username, password string) ([]backend.Claim, error)
	FetchUserRights(ctx context.Context, id string) (backend.Rights, error)
}

// Socket is the realtime channel the engine broadcasts on and receives
// remote deltas from. *socket.Connection satisfies it.
type Socket interface {
	Send(m socket.Message) error
	OnMessage(fn func(socket.Message))
}

// Logger is the minimal logging interface the engine depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures an Engine.
type Options struct {
	Backend     Backend
	Socket      Socket
	Favorites   favorites.Repository
	Adapter     *mapview.Adapter
	AssetLayer  *mapview.AssetLayer
	Store       *asset.Store
	InitialPath string
	Logger      Logger
}

// Engine is the synchronization core: it owns the committed navigation
// state, the fetched overlay data and their loading states, and merges
// asset mutations from user actions, REST responses and socket pushes
// into the store and the map in a single pass.
//
// Every Navigate commits the new location first, then fans the data
// fetches out concurrently. Each fetch result is checked against the
// navigation sequence counter before it is applied, so a slow response
// from a superseded navigation can never resurrect a stale overlay.
//
// Thread Safety: all methods are safe for concurrent use.
type Engine struct {
	backend     Backend
	sock        Socket
	favs        favorites.Repository
	adapter     *mapview.Adapter
	assetLayer  *mapview.AssetLayer
	store       *asset.Store
	logger      Logger
	initialPath string

	mu       sync.Mutex
	graph    *location.Graph
	current  Current
	seq      uint64
	indoor   IndoorSelection
	session  Session
	rooms    mapview.RoomsByFloor
	warnings mapview.WarningsByLocation
	sidebar  []backend.SidebarGroup
	states   LoadStates
	schema   asset.Schema
	types    []asset.TypeInfo
	icons    []mapview.Icon

	subMu sync.Mutex
	subs  map[int]func()
	subID int
}

// NewEngine wires an Engine from its collaborators.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		backend:     opts.Backend,
		sock:        opts.Socket,
		favs:        opts.Favorites,
		adapter:     opts.Adapter,
		assetLayer:  opts.AssetLayer,
		store:       opts.Store,
		logger:      logger,
		initialPath: opts.InitialPath,
		schema:      asset.Schema{},
		subs:        make(map[int]func()),
	}
}

// Start loads the sitemap, navigates to the initial path, loads the
// asset-type schema and icons, and hooks the socket. A sitemap failure
// is fatal; everything after degrades to empty state.
func (e *Engine) Start(ctx context.Context) error {
	raw, err := e.backend.Sitemap(ctx)
	if err != nil {
		return fmt.Errorf("loading sitemap: %w", err)
	}

	graph := location.Load(raw)
	e.mu.Lock()
	e.graph = graph
	e.mu.Unlock()
	e.logger.Info("location graph loaded", "nodes", graph.Len())

	if e.assetLayer != nil {
		e.assetLayer.OnDragEnd(func(assetID int, typ string, pos mapview.Position) {
			e.handleDragEnd(ctx, assetID, typ, pos)
		})
	}
	if e.sock != nil {
		e.sock.OnMessage(e.handleSocketMessage)
	}

	if e.initialPath != "" {
		if _, err := e.Navigate(ctx, e.initialPath); err != nil {
			return fmt.Errorf("initial navigation: %w", err)
		}
	}

	e.loadSchema(ctx)
	return nil
}

// Graph returns the loaded location graph, or nil before Start.
func (e *Engine) Graph() *location.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Current returns the committed navigation state.
func (e *Engine) Current() Current {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// States returns the loading snapshot for rooms, warnings and sidebar.
func (e *Engine) States() LoadStates {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states
}

// Rooms returns the current building's room geometry.
func (e *Engine) Rooms() mapview.RoomsByFloor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rooms
}

// Warnings returns the current location's warning data.
func (e *Engine) Warnings() mapview.WarningsByLocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warnings
}

// Sidebar returns the current sidebar groups.
func (e *Engine) Sidebar() []backend.SidebarGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sidebar
}

// Schema returns the dynamic asset property schema.
func (e *Engine) Schema() asset.Schema {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.schema
}

// AssetTypes returns the known asset types.
func (e *Engine) AssetTypes() []asset.TypeInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.types
}

// Icons returns the asset icon catalog.
func (e *Engine) Icons() []mapview.Icon {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.icons
}

// Indoor returns the transient indoor selection.
func (e *Engine) Indoor() IndoorSelection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indoor
}

// SelectIndoor records the selected indoor feature for the current
// location. It is cleared on the next navigation.
func (e *Engine) SelectIndoor(locationID string) {
	e.mu.Lock()
	e.indoor = IndoorSelection{LocationID: locationID, StateSets: make(map[string]string)}
	e.mu.Unlock()
	e.notify()
}

// SetStateSetValue records a stateset value on the indoor selection.
func (e *Engine) SetStateSetValue(name, value string) {
	e.mu.Lock()
	if e.indoor.StateSets == nil {
		e.indoor.StateSets = make(map[string]string)
	}
	e.indoor.StateSets[name] = value
	e.mu.Unlock()
	e.notify()
}

// Subscribe registers a state-change callback and returns its
// unsubscribe function. Callbacks run synchronously after each commit;
// they must not call back into the engine.
func (e *Engine) Subscribe(fn func()) func() {
	e.subMu.Lock()
	e.subID++
	id := e.subID
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify() {
	e.subMu.Lock()
	fns := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Navigate resolves a path and synchronizes every dependent surface to
// it. Building paths redirect to their first floor; navigating to the
// already-current path is a no-op.
func (e *Engine) Navigate(ctx context.Context, path string) (NavResult, error) {
	e.mu.Lock()
	graph := e.graph
	e.mu.Unlock()
	if graph == nil {
		return NavResult{}, ErrNotStarted
	}

	var node *location.Node
	if strings.Trim(path, "/") == "" {
		node = graph.Root()
	} else {
		node, _ = graph.Resolve(path)
	}
	if node == nil {
		return NavResult{}, fmt.Errorf("%w: %s", ErrUnknownLocation, path)
	}
	normalized := location.Path(node)
	redirected := normalized != "/"+strings.Trim(path, "/")

	e.mu.Lock()
	if normalized == e.current.Path {
		e.mu.Unlock()
		return NavResult{Path: normalized, Redirected: redirected}, nil
	}

	prev := e.current.Node
	e.seq++
	seq := e.seq

	e.indoor = IndoorSelection{}
	e.current = Current{
		Node:     node,
		Segments: location.SegmentsOf(node),
		Path:     normalized,
	}

	building := location.BuildingID(node)
	buildingChanged := location.BuildingID(prev) != building
	fetchRooms := buildingChanged && building != ""
	contextChanged := prev == nil || contextPath(prev) != contextPath(node)

	if fetchRooms {
		e.states.Rooms = StateLoading
	} else if buildingChanged {
		// Left building scope entirely; room geometry no longer applies.
		e.rooms = nil
		e.states.Rooms = StateIdle
	}
	e.states.Warnings = StateLoading
	if contextChanged {
		e.states.Sidebar = StateLoading
	}
	e.mu.Unlock()

	e.logger.Debug("navigating", "path", normalized, "redirected", redirected)

	var preset *mapview.CameraPreset
	var visibility map[string]bool
	if e.favs != nil {
		if item, found := e.favs.Get(node.ID); found {
			preset = item.Preset()
			visibility = item.LayersVisibility
		}
	}
	if e.adapter != nil {
		e.adapter.ChangeLocation(node, preset)
		if visibility != nil {
			e.adapter.ApplyVisibility(visibility)
		}
	}
	e.notify()

	grp, gctx := errgroup.WithContext(ctx)
	if fetchRooms {
		grp.Go(func() error { e.fetchRooms(gctx, seq, node); return nil })
	}
	grp.Go(func() error { e.fetchAssets(gctx, seq, node); return nil })
	grp.Go(func() error { e.fetchWarnings(gctx, seq, node); return nil })
	if contextChanged {
		grp.Go(func() error { e.fetchSidebar(gctx, seq, node); return nil })
	}
	grp.Wait()

	e.notify()
	return NavResult{Path: normalized, Redirected: redirected, Changed: true}, nil
}

// stillCurrent reports whether a fetch started at seq may apply.
func (e *Engine) stillCurrent(seq uint64) bool {
	return e.seq == seq
}

func (e *Engine) fetchRooms(ctx context.Context, seq uint64, node *location.Node) {
	rooms, err := e.backend.Rooms(ctx, fetchPath(node, true))

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.stillCurrent(seq) {
		e.logger.Debug("dropping stale rooms response", "path", location.Path(node))
		return
	}
	if err != nil {
		e.states.Rooms = StateError
		e.rooms = nil
		e.logger.Warn("rooms fetch failed", "path", location.Path(node), "error", err)
		return
	}
	e.rooms = rooms
	e.states.Rooms = StateReady
	if e.adapter != nil {
		e.adapter.UpdateRooms(rooms)
	}
}

func (e *Engine) fetchWarnings(ctx context.Context, seq uint64, node *location.Node) {
	warnings, err := e.backend.Warnings(ctx, fetchPath(node, true))

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.stillCurrent(seq) {
		e.logger.Debug("dropping stale warnings response", "path", location.Path(node))
		return
	}
	if err != nil {
		e.states.Warnings = StateError
		e.warnings = nil
		e.logger.Warn("warnings fetch failed", "path", location.Path(node), "error", err)
		return
	}
	e.warnings = warnings
	e.states.Warnings = StateReady
	if e.adapter != nil {
		e.adapter.UpdateWarnings(warnings)
	}
}

func (e *Engine) fetchSidebar(ctx context.Context, seq uint64, node *location.Node) {
	groups, err := e.backend.Sidebar(ctx, fetchPath(node, true))

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.stillCurrent(seq) {
		e.logger.Debug("dropping stale sidebar response", "path", location.Path(node))
		return
	}
	if err != nil {
		e.states.Sidebar = StateError
		e.sidebar = nil
		e.logger.Warn("sidebar fetch failed", "path", location.Path(node), "error", err)
		return
	}
	e.sidebar = groups
	e.states.Sidebar = StateReady
}

func (e *Engine) fetchAssets(ctx context.Context, seq uint64, node *location.Node) {
	assets, err := e.backend.AssetsForLocation(ctx, fetchPath(node, false))

	// Check and apply under one lock hold, or a superseded fetch could
	// pass the check and then overwrite a fresher navigation's assets.
	// The store and layer mutexes are leaf locks under e.mu.
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.stillCurrent(seq) {
		e.logger.Debug("dropping stale assets response", "path", location.Path(node))
		return
	}
	if err != nil {
		e.logger.Warn("assets fetch failed", "path", location.Path(node), "error", err)
		assets = nil
	}

	if e.store != nil {
		e.store.SetAll(assets)
	}
	if e.assetLayer != nil {
		e.assetLayer.UpdateAssets(assets)
	}
}

func (e *Engine) loadSchema(ctx context.Context) {
	types, err := e.backend.AssetTypes(ctx)
	if err != nil {
		e.logger.Warn("asset types fetch failed", "error", err)
		return
	}

	schema := asset.Schema{}
	for _, info := range types {
		defs, err := e.backend.AssetTypeProps(ctx, info.ID)
		if err != nil {
			e.logger.Warn("asset type props fetch failed", "type", info.Name, "error", err)
			continue
		}
		schema[info.Name] = defs
	}

	icons, err := e.backend.AssetIcons(ctx)
	if err != nil {
		e.logger.Warn("asset icons fetch failed", "error", err)
		icons = nil
	}

	e.mu.Lock()
	e.types = types
	e.schema = schema
	e.icons = icons
	e.mu.Unlock()

	if e.assetLayer != nil && icons != nil {
		e.assetLayer.UpdateIcons(icons)
	}
	e.notify()
}

// fetchPath returns the path data for a node is fetched under. Rooms,
// warnings and sidebar are scoped to the building, so floors fetch
// under their parent; assets are fetched for the node itself.
func fetchPath(node *location.Node, buildingScoped bool) string {
	if buildingScoped && node.Type == location.TypeFloor && node.Parent != nil {
		return strings.TrimPrefix(location.Path(node.Parent), "/")
	}
	return strings.TrimPrefix(location.Path(node), "/")
}

// contextPath is the building-scoped identity navigation compares to
// decide whether sidebar content changed.
func contextPath(node *location.Node) string {
	return fetchPath(node, true)
}
