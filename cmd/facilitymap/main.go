// FacilityMap Core - facility map state synchronization engine.
//
// This is the main entry point for the FacilityMap Core service. It
// keeps a hierarchical location graph, the asset store, the map layer
// registry and a remote booking/asset backend mutually consistent
// under concurrent edits, socket pushes and navigation, and exposes
// the synchronized state to view layers over a read-only HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridpoint/facilitymap-core/internal/api"
	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/backend"
	"github.com/gridpoint/facilitymap-core/internal/favorites"
	"github.com/gridpoint/facilitymap-core/internal/infrastructure/config"
	"github.com/gridpoint/facilitymap-core/internal/infrastructure/database"
	"github.com/gridpoint/facilitymap-core/internal/infrastructure/logging"
	"github.com/gridpoint/facilitymap-core/internal/mapview"
	"github.com/gridpoint/facilitymap-core/internal/socket"
	"github.com/gridpoint/facilitymap-core/internal/sync"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting FacilityMap Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the local preferences database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	favoritesRepo, err := favorites.NewSQLiteRepository(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("initialising favorites store: %w", err)
	}
	log.Info("favorites store initialised", "saved", len(favoritesRepo.All()))

	// REST backend client
	backendClient := backend.NewClient(cfg.Backend, log.With("component", "backend"))
	log.Info("backend client ready", "base_url", cfg.Backend.BaseURL)

	// Map engine, layers and adapter. The headless engine retains render
	// state in memory; the state API serves it to external view layers.
	mapEngine := mapview.NewHeadlessEngine(cfg.Map.DefaultStyle)
	assetLayer := mapview.NewAssetLayer(mapview.LayerAssets, "Assets")
	layers := []mapview.Layer{
		mapview.NewIndoorLayer(mapview.LayerTemperature, "Temperature"),
		mapview.NewIndoorLayer(mapview.LayerOccupancy, "Occupancy"),
		mapview.NewMarkersLayer(mapview.LayerSecurity, "Security"),
		mapview.NewWarningsLayer(mapview.LayerWarnings, "Warnings"),
		assetLayer,
	}
	adapter := mapview.NewAdapter(mapEngine, mapview.Options{
		Geography:    cfg.Map.Geography,
		DefaultStyle: cfg.Map.DefaultStyle,
		Logger:       log.With("component", "mapview"),
	}, layers...)
	adapter.Initialize()
	log.Info("map adapter initialised", "layers", len(layers))

	// Realtime socket
	conn := socket.NewConnection(cfg.Socket, log.With("component", "socket"))
	conn.Connect(ctx)
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("error closing socket", "error", closeErr)
		}
	}()
	log.Info("socket connecting", "url", cfg.Socket.URL, "client_id", conn.ClientID())

	// Sync engine ties everything together
	store := asset.NewStore()
	store.SetLogger(log.With("component", "asset"))
	engine := sync.NewEngine(sync.Options{
		Backend:     backendClient,
		Socket:      conn,
		Favorites:   favoritesRepo,
		Adapter:     adapter,
		AssetLayer:  assetLayer,
		Store:       store,
		InitialPath: cfg.Map.InitialPath,
		Logger:      log.With("component", "sync"),
	})
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("starting sync engine: %w", err)
	}
	log.Info("sync engine started", "path", engine.Current().Path)

	// Read-only state API
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log.With("component", "api"),
		State:   engine,
		Store:   store,
		Adapter: adapter,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("shutting down API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("FacilityMap Core running")
	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FACILITYMAP_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FACILITYMAP_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
