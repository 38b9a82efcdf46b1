// Package api exposes the synchronized facility-map state over a
// read-only HTTP surface. External view layers poll or fetch these
// endpoints to render what the sync engine holds; nothing here mutates
// state.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/backend"
	"github.com/gridpoint/facilitymap-core/internal/favorites"
	"github.com/gridpoint/facilitymap-core/internal/infrastructure/config"
	"github.com/gridpoint/facilitymap-core/internal/infrastructure/logging"
	"github.com/gridpoint/facilitymap-core/internal/mapview"
	"github.com/gridpoint/facilitymap-core/internal/sync"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// StateSource is the engine surface the API reads from. *sync.Engine
// satisfies it.
type StateSource interface {
	Current() sync.Current
	States() sync.LoadStates
	Rooms() mapview.RoomsByFloor
	Warnings() mapview.WarningsByLocation
	Sidebar() []backend.SidebarGroup
	Favorites() []favorites.Item
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	State   StateSource
	Store   *asset.Store
	Adapter *mapview.Adapter
	Version string
}

// Server is the read-only state HTTP server.
//
// It manages the HTTP listener, routes and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	state   StateSource
	store   *asset.Store
	adapter *mapview.Adapter
	version string
	server  *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("state source is required")
	}

	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		state:   deps.State,
		store:   deps.Store,
		adapter: deps.Adapter,
		version: deps.Version,
	}, nil
}

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/state", func(r chi.Router) {
			r.Get("/location", s.handleLocation)
			r.Get("/assets", s.handleAssets)
			r.Get("/layers", s.handleLayers)
			r.Get("/rooms", s.handleRooms)
			r.Get("/warnings", s.handleWarnings)
			r.Get("/sidebar", s.handleSidebar)
			r.Get("/favorites", s.handleFavorites)
		})
	})

	return r
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
