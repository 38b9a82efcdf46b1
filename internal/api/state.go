package api

import (
	"net/http"
	"time"

	"github.com/gridpoint/facilitymap-core/internal/favorites"
	"github.com/gridpoint/facilitymap-core/internal/location"
)

// segmentView is the slim breadcrumb representation of a path segment.
type segmentView struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Type location.Type `json:"type"`
}

// locationView is the response body for /state/location.
type locationView struct {
	Path     string         `json:"path"`
	Node     *location.Node `json:"node,omitempty"`
	Segments []segmentView  `json:"segments,omitempty"`
}

// dataView wraps a data set with its loading state, so clients can tell
// "empty" apart from "failed" and "still loading".
type dataView struct {
	State string `json:"state"`
	Data  any    `json:"data,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	cur := s.state.Current()
	if cur.Node == nil {
		writeNotFound(w, "no location loaded")
		return
	}

	view := locationView{Path: cur.Path, Node: cur.Node}
	for _, seg := range cur.Segments {
		view.Segments = append(view.Segments, segmentView{
			ID:   seg.ID,
			Name: seg.Name,
			Type: seg.Type,
		})
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s.store.All())
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	if s.adapter == nil {
		writeJSON(w, http.StatusOK, map[string]bool{})
		return
	}
	writeJSON(w, http.StatusOK, s.adapter.VisibilityState())
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataView{
		State: s.state.States().Rooms.String(),
		Data:  s.state.Rooms(),
	})
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataView{
		State: s.state.States().Warnings.String(),
		Data:  s.state.Warnings(),
	})
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataView{
		State: s.state.States().Sidebar.String(),
		Data:  s.state.Sidebar(),
	})
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	items := s.state.Favorites()
	if items == nil {
		items = []favorites.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}
